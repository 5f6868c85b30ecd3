package athlete

import (
	"errors"
	"reflect"
	"testing"
)

func TestNewFromSummary(t *testing.T) {
	a := NewFromSummary(Summary{
		ID:                12345,
		Name:              "Test Slugger",
		DefaultPositionID: 7,
		EligibleSlotIDs:   []int{5, 8, 12, 16, 17},
		ProTeamID:         10,
		InjuryStatus:      "ACTIVE",
		PercentOwned:      87.4,
	})

	if a.ID != 12345 {
		t.Fatalf("unexpected id %d", a.ID)
	}
	if a.PrimaryPosition != "LF" {
		t.Fatalf("unexpected primary position %q", a.PrimaryPosition)
	}
	if a.ProTeam != "NYY" {
		t.Fatalf("unexpected pro team %q", a.ProTeam)
	}
	// Bench and injured-list slots are dropped.
	want := []string{"OF", "LF", "UTIL"}
	if !reflect.DeepEqual(a.EligibleSlots, want) {
		t.Fatalf("eligible slots = %v, want %v", a.EligibleSlots, want)
	}
}

func TestNewFromSummary_MissingOwnershipDefaultsToSentinel(t *testing.T) {
	a := NewFromSummary(Summary{ID: 1, Name: "Fringe Guy"})
	if a.PercentOwned != -1 {
		t.Fatalf("expected -1 ownership sentinel, got %v", a.PercentOwned)
	}
}

func TestApplyCard_RejectsMismatchedID(t *testing.T) {
	a := NewFromSummary(Summary{ID: 1, Name: "One"})

	err := a.ApplyCard(CardUpdate{ID: 2})
	if !errors.Is(err, ErrIDMismatch) {
		t.Fatalf("expected ErrIDMismatch, got %v", err)
	}
}

func TestApplyCard_EnrichesWithoutRollback(t *testing.T) {
	a := NewFromSummary(Summary{ID: 7, Name: "Two Way", PercentOwned: 50})

	injured := true
	err := a.ApplyCard(CardUpdate{
		ID:            7,
		Injured:       &injured,
		PercentOwned:  99.1,
		SeasonOutlook: "breakout candidate",
		Stats: map[string]map[string]float64{
			"projections": {"HR": 30},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !a.Injured {
		t.Fatal("expected injured flag set")
	}
	if a.PercentOwned != 99.1 {
		t.Fatalf("unexpected ownership %v", a.PercentOwned)
	}
	if a.Stats["projections"]["HR"] != 30 {
		t.Fatalf("unexpected projections block %v", a.Stats["projections"])
	}
	// Summary-stage data survives.
	if a.Name != "Two Way" {
		t.Fatalf("summary name lost: %q", a.Name)
	}
}

func TestApplyCard_AbsentInjuredNormalizesFalse(t *testing.T) {
	a := NewFromSummary(Summary{ID: 3, Name: "Healthy"})
	if err := a.ApplyCard(CardUpdate{ID: 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Injured {
		t.Fatal("absent injured flag must normalize to false")
	}
}

func TestApplyBiography_TruncatesBirthTimestamp(t *testing.T) {
	a := NewFromSummary(Summary{ID: 9, Name: "Rookie"})

	err := a.ApplyBiography(Biography{
		ID:          9,
		DisplayName: "Rookie Nine",
		DateOfBirth: "1999-04-12T07:00Z",
		Bats:        "Right",
		Throws:      "Left",
		Active:      true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.DateOfBirth != "1999-04-12" {
		t.Fatalf("unexpected date of birth %q", a.DateOfBirth)
	}
	if !a.Active || a.Bats != "Right" || a.Throws != "Left" {
		t.Fatalf("biography fields not applied: %+v", a)
	}
}

func TestApplyBiography_RejectsMismatchedID(t *testing.T) {
	a := NewFromSummary(Summary{ID: 9, Name: "Rookie"})
	if err := a.ApplyBiography(Biography{ID: 10}); !errors.Is(err, ErrIDMismatch) {
		t.Fatalf("expected ErrIDMismatch, got %v", err)
	}
}

func TestApplySeasonStats_MergesBlocks(t *testing.T) {
	a := NewFromSummary(Summary{ID: 4, Name: "Vet"})
	if err := a.ApplyCard(CardUpdate{ID: 4, Stats: map[string]map[string]float64{
		"current_season": {"HR": 12},
	}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := a.ApplySeasonStats(4, map[string]map[string]float64{
		"season_batting": {"AVG": 0.301},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.Stats["current_season"]["HR"] != 12 {
		t.Fatal("card block lost after season stats merge")
	}
	if a.Stats["season_batting"]["AVG"] != 0.301 {
		t.Fatal("season block not merged")
	}
}

func TestSlotClassification(t *testing.T) {
	pitcher := &Athlete{EligibleSlots: []string{"SP", "P"}}
	batter := &Athlete{EligibleSlots: []string{"1B", "UTIL"}}
	twoWay := &Athlete{EligibleSlots: []string{"SP", "DH", "UTIL"}}

	if !pitcher.HasPitcherSlot() || pitcher.HasBatterSlot() {
		t.Fatal("pitcher misclassified")
	}
	if batter.HasPitcherSlot() || !batter.HasBatterSlot() {
		t.Fatal("batter misclassified")
	}
	if !twoWay.IsTwoWay() {
		t.Fatal("two-way player not detected")
	}
}
