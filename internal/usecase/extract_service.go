package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/fantasyops/espn-extractor/external/espn"
	"github.com/fantasyops/espn-extractor/internal/domain/athlete"
	"github.com/fantasyops/espn-extractor/internal/domain/statmap"
	"github.com/fantasyops/espn-extractor/internal/platform/id"
	"github.com/fantasyops/espn-extractor/internal/platform/logging"
)

// PopulationFetcher is the fantasy API surface the extraction run
// drives: the bulk population fetch plus the batched card fetch.
type PopulationFetcher interface {
	FetchPopulation(ctx context.Context) ([]espn.PlayerSummary, error)
	FetchCards(ctx context.Context, ids []int, blockCodes []string) (map[int]espn.PlayerCard, error)
}

// ResultWriter persists the finished run: one pitcher file, one batter
// file, and a failure manifest when anything failed.
type ResultWriter interface {
	WriteAthletes(ctx context.Context, year int, pitchers, batters []athlete.ValidatedRecord) ([]string, error)
	WriteFailures(ctx context.Context, year int, failures []HydrationFailure) (string, error)
}

type ExtractParams struct {
	Year         int
	SampleSize   int
	IncludeStats bool
	Concurrency  int
	BatchSize    int
	ForceFull    bool
	Availability AvailabilityDecision
	BlockCodes   []string
}

// ExtractResult summarizes a completed run.
type ExtractResult struct {
	RunID           string
	Year            int
	Upstream        int
	New             int
	Existing        int
	Pitchers        int
	Batters         int
	Failures        []HydrationFailure
	DroppedStatKeys int64
	OutputPaths     []string
	FailurePath     string
}

// ExtractService orchestrates a full extraction run: bulk population
// fetch, universe resolution against the known population, card
// enrichment, per-athlete hydration, validation, and file output.
type ExtractService struct {
	fantasy    PopulationFetcher
	universe   *UniverseService
	hydration  *HydrationService
	writer     ResultWriter
	normalizer *statmap.Normalizer
	ids        id.Generator
	logger     *logging.Logger
}

func NewExtractService(
	fantasy PopulationFetcher,
	universe *UniverseService,
	hydration *HydrationService,
	writer ResultWriter,
	normalizer *statmap.Normalizer,
	ids id.Generator,
	logger *logging.Logger,
) *ExtractService {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ExtractService{
		fantasy:    fantasy,
		universe:   universe,
		hydration:  hydration,
		writer:     writer,
		normalizer: normalizer,
		ids:        ids,
		logger:     logger,
	}
}

// Run executes one extraction. New athletes go through the full
// hydration pipeline; athletes already known downstream get a
// card-only refresh without per-athlete core calls. Every scoped id
// ends up in exactly one output record or one failure entry.
func (s *ExtractService) Run(ctx context.Context, params ExtractParams) (*ExtractResult, error) {
	ctx, span := startRunSpan(ctx, "usecase.ExtractService.Run")
	defer span.End()

	runID := s.ids.NewID()
	logger := s.logger.With("run_id", runID, "year", params.Year)
	logger.InfoContext(ctx, "extraction run starting",
		"include_stats", params.IncludeStats,
		"sample_size", params.SampleSize,
		"force_full", params.ForceFull,
	)

	summaries, err := s.fantasy.FetchPopulation(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch upstream population: %w", err)
	}

	byID := make(map[int]espn.PlayerSummary, len(summaries))
	upstream := make([]int, 0, len(summaries))
	for _, summary := range summaries {
		if summary.ID <= 0 {
			continue
		}
		if _, ok := byID[summary.ID]; ok {
			continue
		}
		byID[summary.ID] = summary
		upstream = append(upstream, summary.ID)
	}

	var part Partition
	if params.ForceFull {
		part, err = s.universe.ResolveFull(ctx, upstream)
	} else {
		part, err = s.universe.Resolve(ctx, upstream, params.Availability)
	}
	if err != nil {
		if errors.Is(err, ErrPopulationUnavailable) {
			return nil, fmt.Errorf("%w: %w", ErrRunAborted, err)
		}
		return nil, err
	}

	// A sample run caps the new-athlete list and skips refreshing
	// athletes the downstream system already has.
	if params.SampleSize > 0 {
		if len(part.New) > params.SampleSize {
			part.New = part.New[:params.SampleSize]
		}
		if len(part.Existing) > 0 {
			logger.InfoContext(ctx, "sample run, skipping existing-athlete refresh",
				"skipped", len(part.Existing),
			)
			part.Existing = nil
		}
	}

	scope := make([]int, 0, len(part.New)+len(part.Existing))
	scope = append(scope, part.New...)
	scope = append(scope, part.Existing...)

	cards, err := s.fantasy.FetchCards(ctx, scope, params.BlockCodes)
	if err != nil {
		return nil, fmt.Errorf("fetch player cards: %w", err)
	}

	failures := make([]HydrationFailure, 0)

	newAthletes := make([]*athlete.Athlete, 0, len(part.New))
	for _, athleteID := range part.New {
		entity := athlete.NewFromSummary(espn.ToSummary(byID[athleteID]))
		if card, ok := cards[athleteID]; ok {
			if err := entity.ApplyCard(espn.ToCardUpdate(card, s.normalizer)); err != nil {
				failures = append(failures, HydrationFailure{ID: athleteID, Stage: StageCard, Reason: err.Error()})
				continue
			}
		}
		newAthletes = append(newAthletes, entity)
	}

	hydrated, hydrationFailures, err := s.hydration.Hydrate(ctx, newAthletes, HydrationParams{
		IncludeStats: params.IncludeStats,
		Concurrency:  params.Concurrency,
		BatchSize:    params.BatchSize,
	})
	if err != nil {
		return nil, fmt.Errorf("hydrate new athletes: %w", err)
	}
	failures = append(failures, hydrationFailures...)

	// Existing athletes refresh from the card payload alone.
	refreshed := make([]*athlete.Athlete, 0, len(part.Existing))
	for _, athleteID := range part.Existing {
		card, ok := cards[athleteID]
		if !ok {
			failures = append(failures, HydrationFailure{
				ID:     athleteID,
				Stage:  StageCard,
				Reason: "card payload absent",
			})
			continue
		}
		entity := athlete.NewFromSummary(espn.ToSummary(byID[athleteID]))
		if err := entity.ApplyCard(espn.ToCardUpdate(card, s.normalizer)); err != nil {
			failures = append(failures, HydrationFailure{ID: athleteID, Stage: StageCard, Reason: err.Error()})
			continue
		}
		refreshed = append(refreshed, entity)
	}

	for _, athleteID := range part.MissingDownstream {
		failures = append(failures, HydrationFailure{
			ID:     athleteID,
			Stage:  StagePopulation,
			Reason: "known downstream but absent from upstream population",
		})
	}

	pitchers, batters, validationFailures := s.collectRecords(ctx, append(hydrated, refreshed...))
	failures = append(failures, validationFailures...)

	result := &ExtractResult{
		RunID:           runID,
		Year:            params.Year,
		Upstream:        len(upstream),
		New:             len(part.New),
		Existing:        len(part.Existing),
		Pitchers:        len(pitchers),
		Batters:         len(batters),
		Failures:        failures,
		DroppedStatKeys: s.normalizer.DroppedKeys(),
	}

	if s.writer != nil {
		paths, err := s.writer.WriteAthletes(ctx, params.Year, pitchers, batters)
		if err != nil {
			return nil, fmt.Errorf("write athlete files: %w", err)
		}
		result.OutputPaths = paths

		if len(failures) > 0 {
			failurePath, err := s.writer.WriteFailures(ctx, params.Year, failures)
			if err != nil {
				return nil, fmt.Errorf("write failure manifest: %w", err)
			}
			result.FailurePath = failurePath
		}
	}

	logger.InfoContext(ctx, "extraction run finished",
		"upstream", result.Upstream,
		"new", result.New,
		"existing", result.Existing,
		"pitchers", result.Pitchers,
		"batters", result.Batters,
		"failures", len(result.Failures),
		"dropped_stat_keys", result.DroppedStatKeys,
	)

	return result, nil
}

// collectRecords validates every hydrated athlete and routes it to the
// pitcher or batter file. Two-way athletes appear in both, with the
// pitcher copy carrying the starting-pitcher position override.
func (s *ExtractService) collectRecords(ctx context.Context, entities []*athlete.Athlete) (pitchers, batters []athlete.ValidatedRecord, failures []HydrationFailure) {
	for _, entity := range entities {
		rec, err := athlete.NewValidatedRecord(entity)
		if err != nil {
			s.logger.WarnContext(ctx, "athlete failed validation", "athlete_id", entity.ID, "error", err)
			failures = append(failures, HydrationFailure{ID: entity.ID, Stage: StageValidation, Reason: err.Error()})
			continue
		}

		switch {
		case entity.IsTwoWay():
			batters = append(batters, rec)
			pitchers = append(pitchers, rec.WithPitcherPositions())
		case entity.HasPitcherSlot():
			pitchers = append(pitchers, rec)
		default:
			batters = append(batters, rec)
		}
	}
	return pitchers, batters, failures
}
