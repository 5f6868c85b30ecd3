package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/fantasyops/espn-extractor/external/espn"
	"github.com/fantasyops/espn-extractor/internal/domain/athlete"
	"github.com/fantasyops/espn-extractor/internal/domain/statmap"
	"github.com/fantasyops/espn-extractor/internal/platform/logging"
	"github.com/fantasyops/espn-extractor/internal/platform/progress"
)

// HydrationStage names the pipeline step an athlete was in when it
// succeeded or failed.
type HydrationStage string

const (
	StagePending    HydrationStage = "pending"
	StageCard       HydrationStage = "card"
	StageBiography  HydrationStage = "biography"
	StageStatistics HydrationStage = "statistics"
	StageValidation HydrationStage = "validation"
	StagePopulation HydrationStage = "population"
)

// HydrationFailure describes one athlete that could not be hydrated,
// with enough detail to retry it individually.
type HydrationFailure struct {
	ID     int            `json:"id"`
	Stage  HydrationStage `json:"stage"`
	Reason string         `json:"reason"`
}

// DetailFetcher is the per-athlete core API surface the engine drives.
type DetailFetcher interface {
	FetchBiography(ctx context.Context, id int) (*espn.AthleteBiography, error)
	FetchStatistics(ctx context.Context, id int) (*espn.AthleteStatistics, error)
}

type HydrationParams struct {
	IncludeStats bool
	Concurrency  int
	BatchSize    int
}

// HydrationService drives per-athlete detail fetching across a bounded
// worker pool. A failure at any step records the failing stage. The
// batch always drains: every submitted athlete lands in exactly one of
// the two result sets.
type HydrationService struct {
	fetcher    DetailFetcher
	normalizer *statmap.Normalizer
	logger     *logging.Logger
}

func NewHydrationService(fetcher DetailFetcher, normalizer *statmap.Normalizer, logger *logging.Logger) *HydrationService {
	if logger == nil {
		logger = logging.Default()
	}
	return &HydrationService{fetcher: fetcher, normalizer: normalizer, logger: logger}
}

// Hydrate fans the input out across exactly params.Concurrency
// workers. Output order is not input order; consumers join by id.
func (s *HydrationService) Hydrate(ctx context.Context, entities []*athlete.Athlete, params HydrationParams) ([]*athlete.Athlete, []HydrationFailure, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.HydrationService.Hydrate")
	defer span.End()

	if len(entities) == 0 {
		return nil, nil, nil
	}
	if s.fetcher == nil {
		return nil, nil, fmt.Errorf("%w: detail fetcher is not configured", ErrInvalidInput)
	}

	concurrency := params.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	batchSize := params.BatchSize
	if batchSize < 1 {
		batchSize = 100
	}

	pool, err := ants.NewPool(concurrency)
	if err != nil {
		return nil, nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	tracker := progress.NewTracker(len(entities), batchSize, s.logger)

	var mu sync.Mutex
	hydrated := make([]*athlete.Athlete, 0, len(entities))
	failures := make([]HydrationFailure, 0)

	var workers sync.WaitGroup
	for _, entity := range entities {
		entity := entity
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			defer tracker.Increment()

			if failure := s.hydrateOne(ctx, entity, params.IncludeStats); failure != nil {
				mu.Lock()
				failures = append(failures, *failure)
				mu.Unlock()
				return
			}
			mu.Lock()
			hydrated = append(hydrated, entity)
			mu.Unlock()
		}); err != nil {
			workers.Done()
			mu.Lock()
			failures = append(failures, HydrationFailure{
				ID:     entity.ID,
				Stage:  StagePending,
				Reason: fmt.Sprintf("submit to worker pool: %v", err),
			})
			mu.Unlock()
			tracker.Increment()
		}
	}
	workers.Wait()

	s.logger.InfoContext(ctx, "hydration batch drained",
		"input", len(entities),
		"hydrated", len(hydrated),
		"failed", len(failures),
		"concurrency", concurrency,
	)

	return hydrated, failures, nil
}

// hydrateOne fetches and applies biography, then statistics. A
// statistics not-found is benign and the athlete still counts as
// hydrated; only the biography fetch is mandatory.
func (s *HydrationService) hydrateOne(ctx context.Context, entity *athlete.Athlete, includeStats bool) *HydrationFailure {
	bio, err := s.fetcher.FetchBiography(ctx, entity.ID)
	if err != nil {
		return &HydrationFailure{ID: entity.ID, Stage: StageBiography, Reason: err.Error()}
	}
	if err := entity.ApplyBiography(espn.ToBiography(bio)); err != nil {
		return &HydrationFailure{ID: entity.ID, Stage: StageBiography, Reason: err.Error()}
	}

	if !includeStats {
		return nil
	}

	stats, err := s.fetcher.FetchStatistics(ctx, entity.ID)
	if err != nil {
		if espn.IsNotFound(err) {
			return nil
		}
		return &HydrationFailure{ID: entity.ID, Stage: StageStatistics, Reason: err.Error()}
	}
	if err := entity.ApplySeasonStats(entity.ID, espn.ToSeasonBlocks(stats, s.normalizer)); err != nil {
		return &HydrationFailure{ID: entity.ID, Stage: StageStatistics, Reason: err.Error()}
	}

	return nil
}
