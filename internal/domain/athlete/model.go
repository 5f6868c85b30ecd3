package athlete

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIDMismatch is returned when a hydration stage carries data for a
// different athlete id than the one it is applied to.
var ErrIDMismatch = errors.New("athlete id mismatch")

// BirthPlace is the biographical birth location.
type BirthPlace struct {
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
}

// Athlete accumulates state across hydration stages. The id is
// assigned at construction and is the sole join key: every later stage
// must present the same id or the transition is rejected. A failed
// stage leaves earlier-stage data intact.
type Athlete struct {
	ID        int
	Name      string
	FirstName string
	LastName  string

	DisplayName string
	ShortName   string
	Nickname    string
	Slug        string

	PrimaryPosition string
	EligibleSlots   []string
	PositionName    string
	Pos             string

	ProTeam string

	InjuryStatus string
	Status       string
	Injured      bool
	Active       bool

	PercentOwned float64

	Weight        float64
	DisplayWeight string
	Height        float64
	DisplayHeight string

	Bats   string
	Throws string

	DateOfBirth string
	BirthPlace  BirthPlace
	DebutYear   int

	Jersey   string
	Headshot string

	SeasonOutlook         string
	DraftAuctionValue     int
	OnTeamID              int
	DraftRanks            map[string]any
	GamesPlayedByPosition map[string]int
	AuctionValueAverage   float64
	Transactions          []map[string]any

	// Stats maps semantic block names to canonical stat values.
	// Absent blocks are missing keys, never nil placeholders.
	Stats map[string]map[string]float64
}

// Summary is the coarse identity payload from the bulk population
// fetch.
type Summary struct {
	ID                int
	Name              string
	FirstName         string
	LastName          string
	DefaultPositionID int
	EligibleSlotIDs   []int
	ProTeamID         int
	InjuryStatus      string
	Status            string
	PercentOwned      float64
}

// NewFromSummary creates an athlete from the bulk population payload
// with identity and coarse fields only.
func NewFromSummary(s Summary) *Athlete {
	percentOwned := s.PercentOwned
	if percentOwned <= 0 {
		percentOwned = -1
	}

	return &Athlete{
		ID:              s.ID,
		Name:            s.Name,
		FirstName:       s.FirstName,
		LastName:        s.LastName,
		PrimaryPosition: NominalPositionName(s.DefaultPositionID),
		EligibleSlots:   EligibleSlotNames(s.EligibleSlotIDs),
		ProTeam:         ProTeamName(s.ProTeamID),
		InjuryStatus:    s.InjuryStatus,
		Status:          s.Status,
		PercentOwned:    percentOwned,
	}
}

// CardUpdate carries the batched card payload fields: ownership,
// narrative, draft valuation, and normalized stat blocks.
type CardUpdate struct {
	ID                    int
	Name                  string
	DefaultPositionID     int
	EligibleSlotIDs       []int
	ProTeamID             int
	InjuryStatus          string
	Injured               *bool
	PercentOwned          float64
	SeasonOutlook         string
	DraftAuctionValue     int
	OnTeamID              int
	DraftRanks            map[string]any
	GamesPlayedByPosition map[string]int
	AuctionValueAverage   float64
	Transactions          []map[string]any
	Stats                 map[string]map[string]float64
}

// ApplyCard enriches the athlete with card data. Absent optional
// booleans normalize to false.
func (a *Athlete) ApplyCard(u CardUpdate) error {
	if u.ID != a.ID {
		return fmt.Errorf("%w: card for %d applied to %d", ErrIDMismatch, u.ID, a.ID)
	}

	if u.Name != "" {
		a.Name = u.Name
	}
	if pos := NominalPositionName(u.DefaultPositionID); pos != "" {
		a.PrimaryPosition = pos
	}
	if len(u.EligibleSlotIDs) > 0 {
		a.EligibleSlots = EligibleSlotNames(u.EligibleSlotIDs)
	}
	if team := ProTeamName(u.ProTeamID); team != "" {
		a.ProTeam = team
	}
	if u.InjuryStatus != "" {
		a.InjuryStatus = u.InjuryStatus
	}
	a.Injured = u.Injured != nil && *u.Injured
	if u.PercentOwned > 0 {
		a.PercentOwned = u.PercentOwned
	}
	if u.SeasonOutlook != "" {
		a.SeasonOutlook = u.SeasonOutlook
	}
	if u.DraftAuctionValue != 0 {
		a.DraftAuctionValue = u.DraftAuctionValue
	}
	if u.OnTeamID != 0 {
		a.OnTeamID = u.OnTeamID
	}
	if len(u.DraftRanks) > 0 {
		a.DraftRanks = u.DraftRanks
	}
	if len(u.GamesPlayedByPosition) > 0 {
		a.GamesPlayedByPosition = u.GamesPlayedByPosition
	}
	if u.AuctionValueAverage != 0 {
		a.AuctionValueAverage = u.AuctionValueAverage
	}
	if len(u.Transactions) > 0 {
		a.Transactions = u.Transactions
	}

	for name, values := range u.Stats {
		a.setStatBlock(name, values)
	}

	return nil
}

// Biography carries per-athlete detail from the core API.
type Biography struct {
	ID            int
	DisplayName   string
	ShortName     string
	Nickname      string
	Slug          string
	Weight        float64
	DisplayWeight string
	Height        float64
	DisplayHeight string
	DateOfBirth   string
	BirthPlace    BirthPlace
	DebutYear     int
	Jersey        string
	PositionName  string
	Pos           string
	Bats          string
	Throws        string
	Active        bool
	Status        string
	Headshot      string
}

// ApplyBiography enriches the athlete with biographical detail.
// Date of birth is truncated to the date part of an ISO timestamp.
func (a *Athlete) ApplyBiography(b Biography) error {
	if b.ID != a.ID {
		return fmt.Errorf("%w: biography for %d applied to %d", ErrIDMismatch, b.ID, a.ID)
	}

	a.DisplayName = b.DisplayName
	a.ShortName = b.ShortName
	a.Nickname = b.Nickname
	a.Slug = b.Slug
	a.Weight = b.Weight
	a.DisplayWeight = b.DisplayWeight
	a.Height = b.Height
	a.DisplayHeight = b.DisplayHeight

	if dob, _, found := strings.Cut(b.DateOfBirth, "T"); found {
		a.DateOfBirth = dob
	} else {
		a.DateOfBirth = b.DateOfBirth
	}

	a.BirthPlace = b.BirthPlace
	a.DebutYear = b.DebutYear
	a.Jersey = b.Jersey
	if b.PositionName != "" {
		a.PositionName = b.PositionName
	}
	if b.Pos != "" {
		a.Pos = b.Pos
	}
	a.Bats = b.Bats
	a.Throws = b.Throws
	a.Active = b.Active
	if b.Status != "" {
		a.Status = b.Status
	}
	if b.Headshot != "" {
		a.Headshot = b.Headshot
	}

	return nil
}

// ApplySeasonStats merges detailed season statistics blocks into the
// stats mapping.
func (a *Athlete) ApplySeasonStats(id int, blocks map[string]map[string]float64) error {
	if id != a.ID {
		return fmt.Errorf("%w: season stats for %d applied to %d", ErrIDMismatch, id, a.ID)
	}
	for name, values := range blocks {
		a.setStatBlock(name, values)
	}
	return nil
}

func (a *Athlete) setStatBlock(name string, values map[string]float64) {
	if a.Stats == nil {
		a.Stats = make(map[string]map[string]float64)
	}
	if values == nil {
		values = map[string]float64{}
	}
	a.Stats[name] = values
}

// HasPitcherSlot reports whether any eligible slot is a pitcher slot.
func (a *Athlete) HasPitcherSlot() bool {
	for _, slot := range a.EligibleSlots {
		if strings.Contains(slot, "P") {
			return true
		}
	}
	return false
}

// HasBatterSlot reports whether any eligible slot is a non-pitcher
// slot.
func (a *Athlete) HasBatterSlot() bool {
	for _, slot := range a.EligibleSlots {
		if !strings.Contains(slot, "P") {
			return true
		}
	}
	return false
}

// IsTwoWay reports whether the athlete is eligible at both pitcher and
// non-pitcher slots.
func (a *Athlete) IsTwoWay() bool {
	return a.HasPitcherSlot() && a.HasBatterSlot()
}
