package resilience

import (
	"context"
	"testing"
	"time"
)

func TestBackoff_DelayGrowsAndCaps(t *testing.T) {
	b := NewBackoff(100*time.Millisecond, 800*time.Millisecond)

	for attempt := 0; attempt < 8; attempt++ {
		d := b.Delay(attempt)
		if d <= 0 {
			t.Fatalf("attempt %d: expected positive delay, got %v", attempt, d)
		}
		if d > 800*time.Millisecond {
			t.Fatalf("attempt %d: delay %v exceeds cap", attempt, d)
		}
	}

	// Deep attempts must saturate at the cap window, not overflow.
	if d := b.Delay(60); d > 800*time.Millisecond {
		t.Fatalf("saturated delay %v exceeds cap", d)
	}
}

func TestBackoff_WaitHonorsContext(t *testing.T) {
	b := NewBackoff(5*time.Second, 10*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := b.Wait(ctx, 3); err == nil {
		t.Fatal("expected context error from cancelled wait")
	}
}
