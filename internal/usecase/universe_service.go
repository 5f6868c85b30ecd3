package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/fantasyops/espn-extractor/internal/platform/logging"
)

// PopulationSource reads the set of athlete ids already known to the
// downstream system. Implementations return an error (not an empty
// set) when the source is unreachable.
type PopulationSource interface {
	ExistingIDs(ctx context.Context) (map[int]struct{}, error)
}

// AvailabilityDecision is the caller's pre-declared policy for an
// unreachable known-population source. The zero value aborts: an
// unattended run never silently falls back to full extraction.
type AvailabilityDecision string

const (
	DecisionAbort       AvailabilityDecision = "abort"
	DecisionProceedFull AvailabilityDecision = "proceed-full"
)

// Partition splits the upstream population by what the downstream
// system already knows. New and Existing are disjoint;
// MissingDownstream lists ids known downstream but gone upstream.
type Partition struct {
	New               []int
	Existing          []int
	MissingDownstream []int
}

// UniverseService classifies each upstream id as new or already known.
type UniverseService struct {
	source PopulationSource
	logger *logging.Logger
}

func NewUniverseService(source PopulationSource, logger *logging.Logger) *UniverseService {
	if logger == nil {
		logger = logging.Default()
	}
	return &UniverseService{source: source, logger: logger}
}

// Resolve partitions upstreamIDs against the known population. A nil
// source means full extraction was requested explicitly and every id
// is new. When the source errors, the decision parameter controls the
// outcome: proceed-full treats every id as new, anything else aborts
// with ErrPopulationUnavailable.
func (s *UniverseService) Resolve(ctx context.Context, upstreamIDs []int, decision AvailabilityDecision) (Partition, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UniverseService.Resolve")
	defer span.End()

	if len(upstreamIDs) == 0 {
		return Partition{}, fmt.Errorf("%w: upstream population is empty", ErrInvalidInput)
	}

	if s.source == nil {
		s.logger.InfoContext(ctx, "no known-population source configured, full extraction",
			"upstream", len(upstreamIDs),
		)
		return Partition{New: dedupeIDs(upstreamIDs)}, nil
	}

	known, err := s.source.ExistingIDs(ctx)
	if err != nil {
		if decision == DecisionProceedFull {
			s.logger.WarnContext(ctx, "known population unavailable, proceeding with full extraction",
				"upstream", len(upstreamIDs),
				"error", err,
			)
			return Partition{New: dedupeIDs(upstreamIDs)}, nil
		}
		return Partition{}, fmt.Errorf("%w: %v", ErrPopulationUnavailable, err)
	}

	part := partitionIDs(upstreamIDs, known)

	fractionNew := 0.0
	total := len(part.New) + len(part.Existing)
	if total > 0 {
		fractionNew = float64(len(part.New)) / float64(total)
	}
	s.logger.InfoContext(ctx, "resolved extraction universe",
		"upstream", total,
		"known", len(known),
		"new", len(part.New),
		"existing", len(part.Existing),
		"missing_downstream", len(part.MissingDownstream),
		"fraction_new", fractionNew,
	)

	return part, nil
}

func partitionIDs(upstreamIDs []int, known map[int]struct{}) Partition {
	upstream := make(map[int]struct{}, len(upstreamIDs))
	part := Partition{}

	for _, id := range dedupeIDs(upstreamIDs) {
		upstream[id] = struct{}{}
		if _, ok := known[id]; ok {
			part.Existing = append(part.Existing, id)
		} else {
			part.New = append(part.New, id)
		}
	}

	for id := range known {
		if _, ok := upstream[id]; !ok {
			part.MissingDownstream = append(part.MissingDownstream, id)
		}
	}
	sort.Ints(part.MissingDownstream)

	return part
}

// ResolveFull treats every upstream id as new without consulting the
// known-population source. Used when a full re-extraction is forced.
func (s *UniverseService) ResolveFull(ctx context.Context, upstreamIDs []int) (Partition, error) {
	if len(upstreamIDs) == 0 {
		return Partition{}, fmt.Errorf("%w: upstream population is empty", ErrInvalidInput)
	}
	s.logger.InfoContext(ctx, "forced full extraction", "upstream", len(upstreamIDs))
	return Partition{New: dedupeIDs(upstreamIDs)}, nil
}

// dedupeIDs drops duplicates while preserving the upstream order, so a
// sample-size cap keeps the upstream ranking.
func dedupeIDs(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
