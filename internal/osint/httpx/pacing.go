package httpx

import (
	"context"
	"math/rand"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Semaphore bounds the number of concurrent sub-requests a single probe may
// have in flight.
type Semaphore struct {
	sem *semaphore.Weighted
}

// NewSemaphore returns a Semaphore admitting at most n concurrent holders.
func NewSemaphore(n int64) *Semaphore {
	if n <= 0 {
		n = 1
	}
	return &Semaphore{sem: semaphore.NewWeighted(n)}
}

// Acquire blocks until a slot is free or ctx is done.
func (s *Semaphore) Acquire(ctx context.Context) error {
	return s.sem.Acquire(ctx, 1)
}

// Release frees a slot acquired with Acquire.
func (s *Semaphore) Release() { s.sem.Release(1) }

// Pacer enforces the polite inter-request delay to a single service,
// drawn uniformly from [min, max] so a probe's own sub-requests don't
// hammer a target in lockstep, backed by a token-bucket rate.Limiter the
// way the rest of the pack rate-limits outbound calls.
type Pacer struct {
	limiter *rate.Limiter
	min, max time.Duration
}

// NewPacer returns a Pacer that waits between min and max between calls.
func NewPacer(min, max time.Duration) *Pacer {
	if max < min {
		max = min
	}
	// One token every `min` duration caps the floor; jitter covers the rest.
	every := min
	if every <= 0 {
		every = 300 * time.Millisecond
	}
	return &Pacer{
		limiter: rate.NewLimiter(rate.Every(every), 1),
		min:     min,
		max:     max,
	}
}

// Wait blocks for the limiter to admit a token, then adds jitter up to the
// configured max, or returns early if ctx is cancelled.
func (p *Pacer) Wait(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}
	jitterRange := p.max - p.min
	if jitterRange <= 0 {
		return nil
	}
	jitter := time.Duration(rand.Int63n(int64(jitterRange)))
	select {
	case <-time.After(jitter):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
