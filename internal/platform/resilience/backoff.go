package resilience

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Backoff computes capped exponential retry delays with jitter.
// Attempt numbering starts at zero for the first retry.
type Backoff struct {
	BaseDelay time.Duration
	MaxDelay  time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

func NewBackoff(base, max time.Duration) *Backoff {
	if base <= 0 {
		base = 200 * time.Millisecond
	}
	if max <= 0 || max < base {
		max = 5 * time.Second
	}
	return &Backoff{
		BaseDelay: base,
		MaxDelay:  max,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Delay returns the sleep duration for the given retry attempt.
// The exponential curve is capped at MaxDelay, then jittered into
// the upper half of the window so delays never collapse to zero.
func (b *Backoff) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	delay := b.BaseDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= b.MaxDelay {
			delay = b.MaxDelay
			break
		}
	}

	b.mu.Lock()
	jitter := time.Duration(b.rng.Int63n(int64(delay)/2 + 1))
	b.mu.Unlock()

	return delay/2 + jitter
}

// Wait sleeps for the attempt's delay or returns early when the
// context is done.
func (b *Backoff) Wait(ctx context.Context, attempt int) error {
	timer := time.NewTimer(b.Delay(attempt))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
