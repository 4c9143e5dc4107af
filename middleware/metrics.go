package middleware

import (
	"context"
	"sync/atomic"
	"time"
)

// Metrics holds processing metrics for a single delivery.
type Metrics struct {
	Start    time.Time
	Duration time.Duration
	InFlight int

	DeliveryID string

	Error error
}

// Success returns a numeric indicator of success (1 for success, 0 otherwise).
func (m *Metrics) Success() int {
	if m.Error == nil {
		return 1
	}
	return 0
}

// Failure returns a numeric indicator of failure (1 for failure, 0 otherwise).
func (m *Metrics) Failure() int {
	if m.Error != nil {
		return 1
	}
	return 0
}

// Collector receives the metrics of each processed delivery.
type Collector func(*Metrics)

// UseMetrics wraps a HandlerFunc with per-delivery metrics collection.
// The collector is called after each delivery, successful or not.
func UseMetrics[T any](collect Collector) Middleware[T] {
	inFlight := atomic.Int32{}
	return func(next HandlerFunc[T]) HandlerFunc[T] {
		return func(ctx context.Context, msg T) error {
			m := &Metrics{
				Start:    time.Now(),
				InFlight: int(inFlight.Add(1)),
			}
			if id, ok := DeliveryIDFromContext(ctx); ok {
				m.DeliveryID = id
			}

			err := next(ctx, msg)

			inFlight.Add(-1)
			m.Duration = time.Since(m.Start)
			m.Error = err
			collect(m)

			return err
		}
	}
}
