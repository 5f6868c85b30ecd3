package espn

import "strconv"

// PlayerSummary is one entry of the bulk players_wl population
// payload.
type PlayerSummary struct {
	ID                int       `json:"id"`
	FullName          string    `json:"fullName"`
	FirstName         string    `json:"firstName"`
	LastName          string    `json:"lastName"`
	DefaultPositionID int       `json:"defaultPositionId"`
	EligibleSlots     []int     `json:"eligibleSlots"`
	ProTeamID         int       `json:"proTeamId"`
	InjuryStatus      string    `json:"injuryStatus"`
	Status            string    `json:"status"`
	Ownership         Ownership `json:"ownership"`
}

type Ownership struct {
	PercentOwned float64 `json:"percentOwned"`
}

// PlayerCard is one entry of the batched kona_playercard payload.
type PlayerCard struct {
	ID                int        `json:"id"`
	OnTeamID          int        `json:"onTeamId"`
	DraftAuctionValue int        `json:"draftAuctionValue"`
	Player            CardPlayer `json:"player"`
}

type CardPlayer struct {
	ID                    int                        `json:"id"`
	FullName              string                     `json:"fullName"`
	DefaultPositionID     int                        `json:"defaultPositionId"`
	EligibleSlots         []int                      `json:"eligibleSlots"`
	ProTeamID             int                        `json:"proTeamId"`
	InjuryStatus          string                     `json:"injuryStatus"`
	Injured               *bool                      `json:"injured"`
	Active                bool                       `json:"active"`
	SeasonOutlook         string                     `json:"seasonOutlook"`
	DraftRanksByRankType  map[string]any             `json:"draftRanksByRankType"`
	GamesPlayedByPosition map[string]int             `json:"gamesPlayedByPosition"`
	AuctionValueAverage   float64                    `json:"auctionValueAverage"`
	Transactions          []map[string]any           `json:"transactions"`
	Ownership             Ownership                  `json:"ownership"`
	Stats                 []StatBlock                `json:"stats"`
}

// StatBlock is one coded statistics block inside a card payload. The
// block id carries the period code (e.g. "002025"); statSourceId
// distinguishes actual from projected values.
type StatBlock struct {
	ID              string             `json:"id"`
	SeasonID        int                `json:"seasonId"`
	StatSourceID    int                `json:"statSourceId"`
	StatSplitTypeID int                `json:"statSplitTypeId"`
	ScoringPeriodID int                `json:"scoringPeriodId"`
	AppliedTotal    float64            `json:"appliedTotal"`
	Stats           map[string]float64 `json:"stats"`
	AppliedStats    map[string]float64 `json:"appliedStats"`
}

// Values returns the block's stat mapping, preferring the raw stats
// over applied (scored) values.
func (b StatBlock) Values() map[string]float64 {
	if len(b.Stats) > 0 {
		return b.Stats
	}
	return b.AppliedStats
}

type cardResponse struct {
	Players []PlayerCard `json:"players"`
}

// AthleteBiography is the per-athlete detail payload from the core
// API. The core API delivers the id as a string.
type AthleteBiography struct {
	ID            string       `json:"id"`
	FirstName     string       `json:"firstName"`
	LastName      string       `json:"lastName"`
	FullName      string       `json:"fullName"`
	DisplayName   string       `json:"displayName"`
	ShortName     string       `json:"shortName"`
	Nickname      string       `json:"nickname"`
	Slug          string       `json:"slug"`
	Weight        float64      `json:"weight"`
	DisplayWeight string       `json:"displayWeight"`
	Height        float64      `json:"height"`
	DisplayHeight string       `json:"displayHeight"`
	DateOfBirth   string       `json:"dateOfBirth"`
	BirthPlace    BirthPlace   `json:"birthPlace"`
	DebutYear     int          `json:"debutYear"`
	Jersey        string       `json:"jersey"`
	Position      NamedValue   `json:"position"`
	Bats          DisplayValue `json:"bats"`
	Throws        DisplayValue `json:"throws"`
	Active        bool         `json:"active"`
	Status        StatusValue  `json:"status"`
	Headshot      LinkValue    `json:"headshot"`
}

// AthleteID parses the string id; zero when absent or malformed.
func (b *AthleteBiography) AthleteID() int {
	id, err := strconv.Atoi(b.ID)
	if err != nil {
		return 0
	}
	return id
}

type BirthPlace struct {
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

type NamedValue struct {
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

type DisplayValue struct {
	DisplayValue string `json:"displayValue"`
}

type StatusValue struct {
	Type string `json:"type"`
}

type LinkValue struct {
	Href string `json:"href"`
}

// AthleteStatistics is the per-athlete season detail payload from the
// core API.
type AthleteStatistics struct {
	Splits StatisticsSplits `json:"splits"`
}

type StatisticsSplits struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Abbreviation string         `json:"abbreviation"`
	Categories   []StatCategory `json:"categories"`
}

type StatCategory struct {
	Name  string      `json:"name"`
	Stats []NamedStat `json:"stats"`
}

type NamedStat struct {
	Name         string  `json:"name"`
	Abbreviation string  `json:"abbreviation"`
	Value        float64 `json:"value"`
}
