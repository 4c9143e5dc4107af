// Package throttle provides rate limiting primitives for pacing producers.
package throttle

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Allower is a rate limiter that allows a certain number of tokens to be consumed.
type Allower interface {
	// Allow blocks until n tokens are available or ctx is done.
	Allow(ctx context.Context, n int64) error
}

// NewIntervalAllower creates an Allower that charges a fixed wait per token.
// Every Allow(ctx, n) suspends for n*interval before returning, which makes
// it suitable for enforcing a fixed delay between individual sends.
// A non-positive interval allows immediately.
func NewIntervalAllower(interval time.Duration) Allower {
	return &intervalAllower{interval: interval}
}

type intervalAllower struct {
	interval time.Duration
}

func (a *intervalAllower) Allow(ctx context.Context, n int64) error {
	if a.interval <= 0 || n <= 0 {
		return nil
	}
	return wait(ctx, a.interval*time.Duration(n))
}

// NewLeakyBucketAllower creates a leaky bucket rate limiter with the given
// refill rate (tokens per second) and capacity. The bucket starts full, so
// bursts up to capacity are allowed immediately.
func NewLeakyBucketAllower(rate float64, capacity int64) Allower {
	return &leakyBucketAllower{
		rate:     rate,
		capacity: capacity,
		tokens:   float64(capacity),
		last:     time.Now(),
	}
}

type leakyBucketAllower struct {
	rate     float64 // tokens per second
	capacity int64   // bucket size

	mu     sync.Mutex
	tokens float64
	last   time.Time
}

func (a *leakyBucketAllower) Allow(ctx context.Context, n int64) error {
	if n <= 0 {
		n = 1
	}
	if n > a.capacity {
		return fmt.Errorf("throttle: requested %d tokens, but capacity is %d", n, a.capacity)
	}
	for {
		a.mu.Lock()
		now := time.Now()
		a.tokens += now.Sub(a.last).Seconds() * a.rate
		if a.tokens > float64(a.capacity) {
			a.tokens = float64(a.capacity)
		}
		a.last = now

		if a.tokens >= float64(n) {
			a.tokens -= float64(n)
			a.mu.Unlock()
			return nil
		}
		missing := float64(n) - a.tokens
		a.mu.Unlock()

		retry := time.Duration(missing / a.rate * float64(time.Second))
		if err := wait(ctx, retry); err != nil {
			return err
		}
	}
}

// wait suspends for d without occupying a timer past cancellation.
func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
