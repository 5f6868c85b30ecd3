package progress

import (
	"sync"
	"testing"

	"github.com/fantasyops/espn-extractor/internal/platform/logging"
)

func TestTracker_ConcurrentIncrements(t *testing.T) {
	tracker := NewTracker(100, 25, logging.NewNop())

	var wg sync.WaitGroup
	wg.Add(100)
	for i := 0; i < 100; i++ {
		go func() {
			defer wg.Done()
			tracker.Increment()
		}()
	}
	wg.Wait()

	if got := tracker.Completed(); got != 100 {
		t.Fatalf("expected 100 completed, got %d", got)
	}
}

func TestTracker_InvalidIntervalDefaultsToOne(t *testing.T) {
	tracker := NewTracker(3, 0, logging.NewNop())
	tracker.Increment()

	if got := tracker.Completed(); got != 1 {
		t.Fatalf("expected 1 completed, got %d", got)
	}
}
