package resilience

import (
	"errors"
	"testing"
	"time"
)

func frozenBreaker(threshold int, timeout time.Duration, trialMax int) (*CircuitBreaker, *time.Time) {
	b := NewCircuitBreaker(threshold, timeout, trialMax)
	now := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }
	return b, &now
}

func TestCircuitBreaker_OpensAtFailureThreshold(t *testing.T) {
	b, _ := frozenBreaker(3, 10*time.Second, 1)

	for i := 0; i < 2; i++ {
		b.RecordFailure()
	}
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("breaker tripped below threshold, state %s", state)
	}

	b.RecordFailure()
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open at threshold, got %s", state)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("open breaker admitted a request: %v", err)
	}
}

func TestCircuitBreaker_SuccessResetsFailureStreak(t *testing.T) {
	b, _ := frozenBreaker(2, 10*time.Second, 1)

	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()

	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("non-consecutive failures tripped the breaker, state %s", state)
	}
}

func TestCircuitBreaker_TrialFailureReopens(t *testing.T) {
	b, clock := frozenBreaker(1, 10*time.Second, 1)

	b.RecordFailure()
	*clock = clock.Add(11 * time.Second)

	if err := b.Allow(); err != nil {
		t.Fatalf("trial request rejected after open timeout: %v", err)
	}
	b.RecordFailure()

	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("breaker stayed permissive after failed trial: %v", err)
	}
}

func TestCircuitBreaker_TrialRequestsCapped(t *testing.T) {
	b, clock := frozenBreaker(1, 10*time.Second, 2)

	b.RecordFailure()
	*clock = clock.Add(11 * time.Second)

	for i := 0; i < 2; i++ {
		if err := b.Allow(); err != nil {
			t.Fatalf("trial request %d rejected: %v", i+1, err)
		}
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("breaker admitted requests past the trial cap: %v", err)
	}
}

func TestCircuitBreaker_ClosesAfterTrialSuccesses(t *testing.T) {
	b, clock := frozenBreaker(1, 10*time.Second, 2)

	b.RecordFailure()
	*clock = clock.Add(11 * time.Second)

	for i := 0; i < 2; i++ {
		if err := b.Allow(); err != nil {
			t.Fatalf("trial request %d rejected: %v", i+1, err)
		}
	}
	b.RecordSuccess()
	if state := b.State(); state != CircuitStateHalfOpen {
		t.Fatalf("breaker closed with trials still outstanding, state %s", state)
	}
	b.RecordSuccess()

	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after trial successes, got %s", state)
	}
	if err := b.Allow(); err != nil {
		t.Fatalf("closed breaker rejected a request: %v", err)
	}
}
