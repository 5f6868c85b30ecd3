package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/fantasyops/espn-extractor/external/espn"
	"github.com/fantasyops/espn-extractor/internal/domain/athlete"
	"github.com/fantasyops/espn-extractor/internal/domain/statmap"
	"github.com/fantasyops/espn-extractor/internal/platform/logging"
)

type stubFantasy struct {
	summaries []espn.PlayerSummary
	cards     map[int]espn.PlayerCard

	populationCalls int
	cardRequests    [][]int
}

func (f *stubFantasy) FetchPopulation(ctx context.Context) ([]espn.PlayerSummary, error) {
	f.populationCalls++
	return f.summaries, nil
}

func (f *stubFantasy) FetchCards(ctx context.Context, ids []int, blockCodes []string) (map[int]espn.PlayerCard, error) {
	f.cardRequests = append(f.cardRequests, ids)
	out := make(map[int]espn.PlayerCard, len(ids))
	for _, id := range ids {
		if card, ok := f.cards[id]; ok {
			out[id] = card
		}
	}
	return out, nil
}

type stubWriter struct {
	pitchers []athlete.ValidatedRecord
	batters  []athlete.ValidatedRecord
	failures []HydrationFailure
}

func (w *stubWriter) WriteAthletes(ctx context.Context, year int, pitchers, batters []athlete.ValidatedRecord) ([]string, error) {
	w.pitchers, w.batters = pitchers, batters
	return []string{"pitchers.json", "batters.json"}, nil
}

func (w *stubWriter) WriteFailures(ctx context.Context, year int, failures []HydrationFailure) (string, error) {
	w.failures = failures
	return "failures.json", nil
}

type fixedIDs struct{}

func (fixedIDs) NewID() string { return "run-test" }

const (
	slotCatcher = 0
	slotSP      = 14
)

func summaryFixture(id int, name string, slots ...int) espn.PlayerSummary {
	return espn.PlayerSummary{
		ID:            id,
		FullName:      name,
		EligibleSlots: slots,
		ProTeamID:     2,
		Ownership:     espn.Ownership{PercentOwned: 50},
	}
}

func cardFixture(id int) espn.PlayerCard {
	return espn.PlayerCard{
		ID: id,
		Player: espn.CardPlayer{
			ID: id,
			Stats: []espn.StatBlock{
				{ID: "002025", StatSourceID: 0, Stats: map[string]float64{"5": 10}},
			},
		},
	}
}

type extractHarness struct {
	fantasy *stubFantasy
	fetcher *stubDetailFetcher
	writer  *stubWriter
	svc     *ExtractService
}

func newExtractHarness(source PopulationSource, fantasy *stubFantasy) *extractHarness {
	normalizer := statmap.NewNormalizer(2025, logging.NewNop())
	fetcher := &stubDetailFetcher{}
	writer := &stubWriter{}
	svc := NewExtractService(
		fantasy,
		NewUniverseService(source, logging.NewNop()),
		NewHydrationService(fetcher, normalizer, logging.NewNop()),
		writer,
		normalizer,
		fixedIDs{},
		logging.NewNop(),
	)
	return &extractHarness{fantasy: fantasy, fetcher: fetcher, writer: writer, svc: svc}
}

func TestRun_FullPipeline(t *testing.T) {
	fantasy := &stubFantasy{
		summaries: []espn.PlayerSummary{
			summaryFixture(1, "New Pitcher", slotSP),
			summaryFixture(2, "Known Batter", slotCatcher),
			summaryFixture(3, "Two Way", slotCatcher, slotSP),
		},
		cards: map[int]espn.PlayerCard{
			1: cardFixture(1),
			2: cardFixture(2),
			3: cardFixture(3),
		},
	}
	source := &stubPopulationSource{ids: map[int]struct{}{2: {}}}
	h := newExtractHarness(source, fantasy)

	result, err := h.svc.Run(context.Background(), ExtractParams{
		Year:        2025,
		Concurrency: 2,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if result.New != 2 || result.Existing != 1 {
		t.Fatalf("partition counts wrong: new=%d existing=%d", result.New, result.Existing)
	}
	if len(result.Failures) != 0 {
		t.Fatalf("unexpected failures: %+v", result.Failures)
	}
	if result.RunID != "run-test" {
		t.Fatalf("run id = %q", result.RunID)
	}

	// Two-way athlete lands in both files, pitcher copy overridden.
	if len(h.writer.pitchers) != 2 || len(h.writer.batters) != 2 {
		t.Fatalf("split wrong: %d pitchers, %d batters", len(h.writer.pitchers), len(h.writer.batters))
	}
	var twoWayPitcher *athlete.ValidatedRecord
	for i := range h.writer.pitchers {
		if h.writer.pitchers[i].ID == 3 {
			twoWayPitcher = &h.writer.pitchers[i]
		}
	}
	if twoWayPitcher == nil {
		t.Fatal("two-way athlete missing from pitcher file")
	}
	if twoWayPitcher.PrimaryPosition != "SP" || twoWayPitcher.PositionName != "Starting Pitcher" {
		t.Fatalf("pitcher override not applied: %+v", twoWayPitcher)
	}

	// Only new athletes go through per-athlete hydration.
	if calls := h.fetcher.bioCalls.Load(); calls != 2 {
		t.Fatalf("biography fetched %d times, want 2", calls)
	}

	// Card stats were normalized into semantic blocks on every record.
	for _, rec := range h.writer.batters {
		if rec.Stats["current_season"]["HR"] != 10 {
			t.Fatalf("athlete %d missing normalized card stats: %v", rec.ID, rec.Stats)
		}
	}
}

func TestRun_SampleCapsNewAndSkipsExisting(t *testing.T) {
	fantasy := &stubFantasy{
		summaries: []espn.PlayerSummary{
			summaryFixture(1, "First New", slotSP),
			summaryFixture(2, "Known", slotCatcher),
			summaryFixture(3, "Second New", slotCatcher),
		},
		cards: map[int]espn.PlayerCard{1: cardFixture(1)},
	}
	source := &stubPopulationSource{ids: map[int]struct{}{2: {}}}
	h := newExtractHarness(source, fantasy)

	result, err := h.svc.Run(context.Background(), ExtractParams{
		Year:        2025,
		SampleSize:  1,
		Concurrency: 1,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if result.New != 1 || result.Existing != 0 {
		t.Fatalf("sample scope wrong: new=%d existing=%d", result.New, result.Existing)
	}
	if len(fantasy.cardRequests) != 1 || !equalInts(fantasy.cardRequests[0], []int{1}) {
		t.Fatalf("card scope = %v, want [[1]]", fantasy.cardRequests)
	}
}

func TestRun_PopulationUnavailableAbortsBeforeHydration(t *testing.T) {
	fantasy := &stubFantasy{
		summaries: []espn.PlayerSummary{summaryFixture(1, "Someone", slotSP)},
	}
	source := &stubPopulationSource{err: errors.New("graphql endpoint down")}
	h := newExtractHarness(source, fantasy)

	_, err := h.svc.Run(context.Background(), ExtractParams{Year: 2025, Availability: DecisionAbort})
	if !errors.Is(err, ErrRunAborted) {
		t.Fatalf("expected ErrRunAborted, got %v", err)
	}
	if !errors.Is(err, ErrPopulationUnavailable) {
		t.Fatalf("expected ErrPopulationUnavailable, got %v", err)
	}
	if calls := h.fetcher.bioCalls.Load(); calls != 0 {
		t.Fatalf("hydration ran %d fetches after abort", calls)
	}
	if len(fantasy.cardRequests) != 0 {
		t.Fatalf("cards fetched after abort: %v", fantasy.cardRequests)
	}
}

func TestRun_ForceFullBypassesSource(t *testing.T) {
	fantasy := &stubFantasy{
		summaries: []espn.PlayerSummary{
			summaryFixture(1, "One", slotSP),
			summaryFixture(2, "Two", slotCatcher),
		},
		cards: map[int]espn.PlayerCard{1: cardFixture(1), 2: cardFixture(2)},
	}
	source := &stubPopulationSource{ids: map[int]struct{}{2: {}}}
	h := newExtractHarness(source, fantasy)

	result, err := h.svc.Run(context.Background(), ExtractParams{
		Year:        2025,
		ForceFull:   true,
		Concurrency: 2,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.New != 2 || result.Existing != 0 {
		t.Fatalf("force-full scope wrong: new=%d existing=%d", result.New, result.Existing)
	}
	if source.calls != 0 {
		t.Fatalf("known-population source consulted %d times during forced run", source.calls)
	}
	if calls := h.fetcher.bioCalls.Load(); calls != 2 {
		t.Fatalf("biography fetched %d times, want 2", calls)
	}
}

func TestRun_MissingDownstreamRecordedAsFailures(t *testing.T) {
	fantasy := &stubFantasy{
		summaries: []espn.PlayerSummary{
			summaryFixture(1, "One", slotSP),
			summaryFixture(2, "Two", slotCatcher),
		},
		cards: map[int]espn.PlayerCard{1: cardFixture(1), 2: cardFixture(2)},
	}
	source := &stubPopulationSource{ids: map[int]struct{}{2: {}, 99: {}}}
	h := newExtractHarness(source, fantasy)

	result, err := h.svc.Run(context.Background(), ExtractParams{Year: 2025, Concurrency: 1})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	var missing *HydrationFailure
	for i := range result.Failures {
		if result.Failures[i].ID == 99 {
			missing = &result.Failures[i]
		}
	}
	if missing == nil {
		t.Fatalf("id 99 not recorded as failure: %+v", result.Failures)
	}
	if missing.Stage != StagePopulation {
		t.Fatalf("failure stage = %q, want %q", missing.Stage, StagePopulation)
	}
	if len(h.writer.failures) != len(result.Failures) {
		t.Fatalf("failure manifest not written: %+v", h.writer.failures)
	}
	if result.FailurePath != "failures.json" {
		t.Fatalf("failure path = %q", result.FailurePath)
	}
}

func TestRun_ExistingWithoutCardBecomesFailure(t *testing.T) {
	fantasy := &stubFantasy{
		summaries: []espn.PlayerSummary{
			summaryFixture(1, "Known No Card", slotCatcher),
		},
		cards: map[int]espn.PlayerCard{},
	}
	source := &stubPopulationSource{ids: map[int]struct{}{1: {}}}
	h := newExtractHarness(source, fantasy)

	result, err := h.svc.Run(context.Background(), ExtractParams{Year: 2025, Concurrency: 1})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(result.Failures) != 1 || result.Failures[0].Stage != StageCard {
		t.Fatalf("expected one card-stage failure, got %+v", result.Failures)
	}
	if result.Batters != 0 || result.Pitchers != 0 {
		t.Fatalf("no records expected, got pitchers=%d batters=%d", result.Pitchers, result.Batters)
	}
}
