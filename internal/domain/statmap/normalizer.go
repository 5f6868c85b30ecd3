package statmap

import (
	"strconv"
	"sync/atomic"

	"github.com/fantasyops/espn-extractor/internal/platform/logging"
)

// Semantic block names produced by block classification. Season detail
// blocks carry a season_ prefix per statistics category.
const (
	BlockProjections    = "projections"
	BlockCurrentSeason  = "current_season"
	BlockPreviousSeason = "previous_season"
	BlockLast7Games     = "last_7_games"
	BlockLast15Games    = "last_15_games"
	BlockLast30Games    = "last_30_games"
	BlockPreseason      = "preseason"

	seasonBlockPrefix = "season_"
)

var semanticBlocks = map[string]struct{}{
	BlockProjections:    {},
	BlockCurrentSeason:  {},
	BlockPreviousSeason: {},
	BlockLast7Games:     {},
	BlockLast15Games:    {},
	BlockLast30Games:    {},
	BlockPreseason:      {},
}

// IsSemanticBlock reports whether a stats mapping key is a recognized
// semantic block name.
func IsSemanticBlock(name string) bool {
	if _, ok := semanticBlocks[name]; ok {
		return true
	}
	return len(name) > len(seasonBlockPrefix) && name[:len(seasonBlockPrefix)] == seasonBlockPrefix
}

// SeasonBlockName builds the semantic name for a per-category season
// detail block, e.g. "season_batting".
func SeasonBlockName(category string) string {
	return seasonBlockPrefix + category
}

const (
	SourceActual    = 0
	SourceProjected = 1
)

// RawBlock is one coded statistics block as delivered upstream: a
// period code (e.g. "002025"), a source code, and code-keyed values.
type RawBlock struct {
	PeriodCode string
	SourceCode int
	Values     map[string]float64
}

// Normalizer reshapes code-keyed statistics payloads into semantic
// blocks with canonical stat names. Unknown stat codes are dropped and
// counted, never stored under their raw key. Safe for concurrent use.
type Normalizer struct {
	seasonYear int
	logger     *logging.Logger
	dropped    atomic.Int64
}

func NewNormalizer(seasonYear int, logger *logging.Logger) *Normalizer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Normalizer{seasonYear: seasonYear, logger: logger}
}

// BlockName classifies a (period code, source code) pair into a
// semantic block name. Period codes encode a split prefix and season
// year: 00 season actual, 10 season projected, 01/02/03 trailing
// 7/15/30 day windows, 01000 preseason.
func (n *Normalizer) BlockName(periodCode string, sourceCode int) (string, bool) {
	year := strconv.Itoa(n.seasonYear)
	prevYear := strconv.Itoa(n.seasonYear - 1)

	switch {
	case periodCode == "10"+year:
		return BlockProjections, true
	case periodCode == "00"+year && sourceCode == SourceProjected:
		return BlockProjections, true
	case periodCode == "00"+year && sourceCode == SourceActual:
		return BlockCurrentSeason, true
	case periodCode == "00"+prevYear:
		return BlockPreviousSeason, true
	case periodCode == "01000"+year:
		return BlockPreseason, true
	case periodCode == "01"+year:
		return BlockLast7Games, true
	case periodCode == "02"+year:
		return BlockLast15Games, true
	case periodCode == "03"+year:
		return BlockLast30Games, true
	}

	return "", false
}

// Normalize converts raw coded blocks into the semantic stats mapping.
// Blocks with unrecognized period codes are skipped; blocks whose keys
// all drop are retained as empty maps so "fetched but empty" stays
// distinguishable from "never fetched". When two raw blocks resolve to
// the same semantic name the later one wins and a data-quality warning
// is logged.
func (n *Normalizer) Normalize(blocks []RawBlock) map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(blocks))

	for _, block := range blocks {
		name, ok := n.BlockName(block.PeriodCode, block.SourceCode)
		if !ok {
			n.logger.Debug("skipping unclassified stat block",
				"period_code", block.PeriodCode,
				"source_code", block.SourceCode,
			)
			continue
		}

		if _, exists := out[name]; exists {
			n.logger.Warn("duplicate semantic stat block, later block overwrites",
				"block", name,
				"period_code", block.PeriodCode,
			)
		}

		values, dropped := n.NormalizeKeys(block.Values)
		if dropped > 0 {
			n.dropped.Add(int64(dropped))
		}
		out[name] = values
	}

	return out
}

// NormalizeKeys maps code-keyed stat values to canonical names.
// Already-canonical keys pass through, which makes re-application a
// no-op. Returns the normalized map and the dropped unknown-key count.
func (n *Normalizer) NormalizeKeys(values map[string]float64) (map[string]float64, int) {
	out := make(map[string]float64, len(values))
	dropped := 0

	for key, value := range values {
		if IsCanonicalName(key) {
			out[key] = value
			continue
		}
		code, err := strconv.Atoi(key)
		if err != nil {
			dropped++
			continue
		}
		name, ok := CanonicalName(code)
		if !ok {
			dropped++
			continue
		}
		out[name] = value
	}

	return out, dropped
}

// CountDropped adds externally-observed drops (e.g. season detail
// filtering) to the run total.
func (n *Normalizer) CountDropped(count int) {
	if count > 0 {
		n.dropped.Add(int64(count))
	}
}

// DroppedKeys reports the total unknown stat codes dropped since the
// normalizer was created.
func (n *Normalizer) DroppedKeys() int64 {
	return n.dropped.Load()
}
