package test

import (
	"sync"
	"time"
)

// Recorder collects values delivered to a consumer and lets tests await a
// target count without busy waiting.
type Recorder[T any] struct {
	mu      sync.Mutex
	got     []T
	updated chan struct{}
}

// NewRecorder creates an empty Recorder.
func NewRecorder[T any]() *Recorder[T] {
	return &Recorder[T]{updated: make(chan struct{}, 1)}
}

// Record appends v. Safe for concurrent use.
func (r *Recorder[T]) Record(v T) {
	r.mu.Lock()
	r.got = append(r.got, v)
	r.mu.Unlock()
	select {
	case r.updated <- struct{}{}:
	default:
	}
}

// Len returns the number of recorded values.
func (r *Recorder[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.got)
}

// Values returns a copy of everything recorded so far.
func (r *Recorder[T]) Values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.got...)
}

// AwaitLen blocks until at least n values are recorded or timeout elapses,
// reporting whether the target was reached.
func (r *Recorder[T]) AwaitLen(n int, timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		if r.Len() >= n {
			return true
		}
		select {
		case <-r.updated:
		case <-deadline:
			return r.Len() >= n
		}
	}
}
