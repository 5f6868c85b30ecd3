package progress

import (
	"sync"
	"time"

	"github.com/fantasyops/espn-extractor/internal/platform/logging"
)

// Tracker counts completed units of a fixed-size batch and emits a log
// line every interval completions plus one at the end. Safe for
// concurrent use.
type Tracker struct {
	mu        sync.Mutex
	total     int
	interval  int
	completed int
	startedAt time.Time
	logger    *logging.Logger
}

func NewTracker(total, interval int, logger *logging.Logger) *Tracker {
	if interval < 1 {
		interval = 1
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Tracker{
		total:     total,
		interval:  interval,
		startedAt: time.Now(),
		logger:    logger,
	}
}

// Increment records one completed unit and reports progress when the
// interval boundary or the final unit is reached.
func (t *Tracker) Increment() {
	t.mu.Lock()
	t.completed++
	completed := t.completed
	report := completed%t.interval == 0 || completed == t.total
	elapsed := time.Since(t.startedAt)
	t.mu.Unlock()

	if report {
		t.logger.Info("batch progress",
			"completed", completed,
			"total", t.total,
			"elapsed_ms", elapsed.Milliseconds(),
		)
	}
}

func (t *Tracker) Completed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completed
}
