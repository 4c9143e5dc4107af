package chanflow

import (
	"context"
	"sync"
)

// Handle tracks a running producer or consumer task.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

func newHandle(cancel context.CancelFunc) *Handle {
	return &Handle{
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// complete records the terminal error and releases waiters. Called exactly
// once by the task goroutine.
func (h *Handle) complete(err error) {
	h.mu.Lock()
	h.err = err
	h.mu.Unlock()
	close(h.done)
}

// Done returns a channel that is closed once the task has terminated.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Err returns the terminal error of the task.
// It is meaningful only after Done is closed.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Cancel requests the task to stop. It is idempotent and returns without
// waiting for termination; use Wait or Done to observe it.
func (h *Handle) Cancel() {
	h.cancel()
}

// Wait blocks until the task terminates and returns its terminal error,
// or returns ctx.Err() if ctx is canceled first. The task keeps running
// in the latter case.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run blocks until the task terminates. If ctx is canceled first, the task
// is canceled and Run waits for it to finish. This makes handles suitable
// for supervision by an errgroup.Group.
func (h *Handle) Run(ctx context.Context) error {
	select {
	case <-h.done:
		return h.Err()
	case <-ctx.Done():
		h.cancel()
		<-h.done
		return h.Err()
	}
}
