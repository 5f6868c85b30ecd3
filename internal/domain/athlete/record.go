package athlete

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/fantasyops/espn-extractor/internal/domain/statmap"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidatedRecord is the schema-checked, serialization-ready snapshot
// of an athlete, created exactly once at the end of the pipeline.
// Optional upstream booleans that arrived absent are already
// normalized to false; stats keys are semantic block names only.
type ValidatedRecord struct {
	ID        int    `json:"id" validate:"required,gt=0"`
	Name      string `json:"name" validate:"required"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`

	DisplayName string `json:"display_name,omitempty"`
	ShortName   string `json:"short_name,omitempty"`
	Nickname    string `json:"nickname,omitempty"`
	Slug        string `json:"slug,omitempty"`

	PrimaryPosition string   `json:"primary_position,omitempty"`
	EligibleSlots   []string `json:"eligible_slots"`
	PositionName    string   `json:"position_name,omitempty"`
	Pos             string   `json:"pos,omitempty"`

	ProTeam string `json:"pro_team,omitempty"`

	InjuryStatus string `json:"injury_status,omitempty"`
	Status       string `json:"status,omitempty"`
	Injured      bool   `json:"injured"`
	Active       bool   `json:"active"`

	PercentOwned float64 `json:"percent_owned"`

	Weight        float64 `json:"weight,omitempty"`
	DisplayWeight string  `json:"display_weight,omitempty"`
	Height        float64 `json:"height,omitempty"`
	DisplayHeight string  `json:"display_height,omitempty"`

	Bats   string `json:"bats,omitempty"`
	Throws string `json:"throws,omitempty"`

	DateOfBirth string     `json:"date_of_birth,omitempty"`
	BirthPlace  BirthPlace `json:"birth_place"`
	DebutYear   int        `json:"debut_year,omitempty"`

	Jersey   string `json:"jersey"`
	Headshot string `json:"headshot,omitempty"`

	SeasonOutlook         string           `json:"season_outlook,omitempty"`
	DraftAuctionValue     int              `json:"draft_auction_value,omitempty"`
	OnTeamID              int              `json:"on_team_id,omitempty"`
	DraftRanks            map[string]any   `json:"draft_ranks,omitempty"`
	GamesPlayedByPosition map[string]int   `json:"games_played_by_position,omitempty"`
	AuctionValueAverage   float64          `json:"auction_value_average,omitempty"`
	Transactions          []map[string]any `json:"transactions,omitempty"`

	Stats map[string]map[string]float64 `json:"stats"`
}

// NewValidatedRecord snapshots an athlete into an immutable record.
// Construction fails when a stats key is not a semantic block name or
// a declared field is missing or type-incorrect.
func NewValidatedRecord(a *Athlete) (ValidatedRecord, error) {
	if a == nil {
		return ValidatedRecord{}, fmt.Errorf("nil athlete")
	}

	stats := make(map[string]map[string]float64, len(a.Stats))
	for name, values := range a.Stats {
		if !statmap.IsSemanticBlock(name) {
			return ValidatedRecord{}, fmt.Errorf("athlete %d: non-semantic stats key %q", a.ID, name)
		}
		block := make(map[string]float64, len(values))
		for k, v := range values {
			block[k] = v
		}
		stats[name] = block
	}

	slots := make([]string, len(a.EligibleSlots))
	copy(slots, a.EligibleSlots)

	rec := ValidatedRecord{
		ID:                    a.ID,
		Name:                  a.Name,
		FirstName:             a.FirstName,
		LastName:              a.LastName,
		DisplayName:           a.DisplayName,
		ShortName:             a.ShortName,
		Nickname:              a.Nickname,
		Slug:                  a.Slug,
		PrimaryPosition:       a.PrimaryPosition,
		EligibleSlots:         slots,
		PositionName:          a.PositionName,
		Pos:                   a.Pos,
		ProTeam:               a.ProTeam,
		InjuryStatus:          a.InjuryStatus,
		Status:                a.Status,
		Injured:               a.Injured,
		Active:                a.Active,
		PercentOwned:          a.PercentOwned,
		Weight:                a.Weight,
		DisplayWeight:         a.DisplayWeight,
		Height:                a.Height,
		DisplayHeight:         a.DisplayHeight,
		Bats:                  a.Bats,
		Throws:                a.Throws,
		DateOfBirth:           a.DateOfBirth,
		BirthPlace:            a.BirthPlace,
		DebutYear:             a.DebutYear,
		Jersey:                a.Jersey,
		Headshot:              a.Headshot,
		SeasonOutlook:         a.SeasonOutlook,
		DraftAuctionValue:     a.DraftAuctionValue,
		OnTeamID:              a.OnTeamID,
		DraftRanks:            a.DraftRanks,
		GamesPlayedByPosition: a.GamesPlayedByPosition,
		AuctionValueAverage:   a.AuctionValueAverage,
		Transactions:          a.Transactions,
		Stats:                 stats,
	}

	if err := validate.Struct(rec); err != nil {
		return ValidatedRecord{}, fmt.Errorf("athlete %d: %w", a.ID, err)
	}

	return rec, nil
}

// WithPitcherPositions returns a copy with the pitcher position
// override applied. Used for the pitcher-file copy of two-way players.
func (r ValidatedRecord) WithPitcherPositions() ValidatedRecord {
	r.PrimaryPosition = "SP"
	r.Pos = "SP"
	r.PositionName = "Starting Pitcher"
	return r
}
