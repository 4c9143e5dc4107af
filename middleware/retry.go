package middleware

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

var (
	// ErrRetry is the base error for retry operations.
	ErrRetry = errors.New("chanflow retry")

	// ErrRetryMaxAttempts is returned when all retry attempts fail.
	ErrRetryMaxAttempts = fmt.Errorf("%w: max attempts reached", ErrRetry)

	// ErrRetryTimeout is returned when the overall retry operation times out.
	ErrRetryTimeout = fmt.Errorf("%w: timeout reached", ErrRetry)
)

// BackoffFunc returns the wait duration for a retry attempt.
// The attempt parameter is one-based (1 for first retry, 2 for second, etc.).
type BackoffFunc func(attempt int) time.Duration

// ConstantBackoff creates a backoff function that returns a constant duration with optional jitter.
// The jitter parameter controls randomization: 0.0 = no jitter, 0.2 = ±20% variation.
func ConstantBackoff(delay time.Duration, jitter float64) BackoffFunc {
	applyJitter := newApplyJitterFunc(jitter)
	return func(attempt int) time.Duration {
		return applyJitter(delay)
	}
}

// ExponentialBackoff creates a backoff function with exponential growth and jitter.
// Each retry attempt uses initialDelay * factor^(attempt-1); maxDelay caps the
// result (0 = no limit).
func ExponentialBackoff(initialDelay time.Duration, factor float64, maxDelay time.Duration, jitter float64) BackoffFunc {
	applyJitter := newApplyJitterFunc(jitter)
	return func(attempt int) time.Duration {
		backoff := time.Duration(float64(initialDelay) * math.Pow(factor, float64(attempt-1)))
		if maxDelay > 0 && backoff > maxDelay {
			backoff = maxDelay
		}
		return applyJitter(backoff)
	}
}

func newApplyJitterFunc(jitter float64) func(time.Duration) time.Duration {
	if jitter <= 0 {
		return func(d time.Duration) time.Duration { return d }
	}
	return func(d time.Duration) time.Duration {
		spread := (rand.Float64()*2 - 1) * jitter
		return time.Duration(float64(d) * (1 + spread))
	}
}

// ShouldRetryFunc determines whether an error should trigger a retry attempt.
type ShouldRetryFunc func(error) bool

// ShouldRetry creates a function that retries on specific errors.
// If no errors are specified, all errors trigger retries.
func ShouldRetry(errs ...error) ShouldRetryFunc {
	if len(errs) == 0 {
		return func(err error) bool { return true }
	}
	return func(err error) bool {
		for _, e := range errs {
			if errors.Is(err, e) {
				return true
			}
		}
		return false
	}
}

// RetryConfig configures retry behavior for failed deliveries.
type RetryConfig struct {
	// ShouldRetry determines which errors trigger retry attempts.
	// If nil, defaults to retrying all errors.
	ShouldRetry ShouldRetryFunc

	// Backoff produces the wait duration between retry attempts.
	// If nil, defaults to 1 second constant backoff with jitter ±20%.
	Backoff BackoffFunc

	// MaxAttempts limits the total number of processing attempts, including
	// the initial attempt. Default is 3. Negative values allow unlimited retries.
	MaxAttempts int

	// Timeout sets the overall time limit for all attempts combined.
	// Zero or negative means no timeout. Default is 1 minute.
	Timeout time.Duration
}

var defaultRetryConfig = RetryConfig{
	ShouldRetry: ShouldRetry(),
	Backoff:     ConstantBackoff(1*time.Second, 0.2),
	MaxAttempts: 3,
	Timeout:     1 * time.Minute,
}

func (c RetryConfig) parse() RetryConfig {
	if c.ShouldRetry == nil {
		c.ShouldRetry = defaultRetryConfig.ShouldRetry
	}
	if c.Backoff == nil {
		c.Backoff = defaultRetryConfig.Backoff
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = defaultRetryConfig.MaxAttempts
	}
	if c.Timeout == 0 {
		c.Timeout = defaultRetryConfig.Timeout
	}
	return c
}

// Retry wraps a HandlerFunc with retry logic. Retrying a failed delivery is
// strictly a handler-level concern; the channel machinery never retries.
func Retry[T any](cfg RetryConfig) Middleware[T] {
	cfg = cfg.parse()
	return func(next HandlerFunc[T]) HandlerFunc[T] {
		return func(ctx context.Context, msg T) error {
			if cfg.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
				defer cancel()
			}

			for attempt := 1; ; attempt++ {
				err := next(ctx, msg)
				if err == nil {
					return nil
				}
				if !cfg.ShouldRetry(err) {
					return err
				}
				if cfg.MaxAttempts > 0 && attempt >= cfg.MaxAttempts {
					return fmt.Errorf("%w: %w", ErrRetryMaxAttempts, err)
				}

				timer := time.NewTimer(cfg.Backoff(attempt))
				select {
				case <-timer.C:
				case <-ctx.Done():
					timer.Stop()
					if errors.Is(ctx.Err(), context.DeadlineExceeded) {
						return fmt.Errorf("%w: %w", ErrRetryTimeout, err)
					}
					return fmt.Errorf("%w: %w", ctx.Err(), err)
				}
			}
		}
	}
}
