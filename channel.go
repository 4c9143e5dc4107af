package chanflow

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// ChannelConfig configures behavior of a Channel.
type ChannelConfig[T any] struct {
	// Capacity is the maximum number of buffered messages.
	// Zero is permitted only with the Blocking policy and produces a
	// rendezvous channel where every Put waits for a matching Take.
	Capacity int `env:"CAPACITY"`

	// Policy selects the overflow behavior. Default is Blocking.
	Policy Policy `env:"POLICY"`

	// OnDrop is called with each message discarded by the Sliding or
	// Dropping policy. Called outside the channel lock. Optional.
	OnDrop func(T)
}

// ChannelStats is a point-in-time snapshot of channel counters.
type ChannelStats struct {
	// Puts is the number of messages accepted into the channel,
	// including direct handoffs to waiting takers.
	Puts int64
	// Takes is the number of messages handed to takers.
	Takes int64
	// DroppedOldest is the number of buffered messages evicted by the
	// Sliding policy.
	DroppedOldest int64
	// DroppedNewest is the number of incoming messages discarded by the
	// Dropping policy.
	DroppedNewest int64
	// Rejected is the number of puts refused because the channel was closed.
	Rejected int64
	// Buffered is the current buffer length.
	Buffered int
}

// Channel is a bounded FIFO hand-off point between producers and consumers.
//
// A full channel resolves the overflowing Put according to its Policy.
// Closing a channel is idempotent, wakes all suspended callers, and leaves
// already-buffered messages takeable until drained.
//
// All methods are safe for concurrent use.
type Channel[T any] struct {
	capacity int
	policy   Policy
	onDrop   func(T)

	mu      sync.Mutex
	buf     []T
	closed  bool
	takers  []chan T        // each waits for one handed-off message; closed on Close
	putters []chan struct{} // each waits for a freed slot; closed on wake and on Close

	puts          atomic.Int64
	takes         atomic.Int64
	droppedOldest atomic.Int64
	droppedNewest atomic.Int64
	rejected      atomic.Int64
}

// NewChannel creates a bounded channel from the given configuration.
// Returns ErrInvalidCapacity for a negative capacity or for a zero capacity
// combined with a non-blocking policy, which would discard every message.
func NewChannel[T any](cfg ChannelConfig[T]) (*Channel[T], error) {
	if cfg.Capacity < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, cfg.Capacity)
	}
	switch cfg.Policy {
	case Blocking, Sliding, Dropping:
	default:
		return nil, fmt.Errorf("chanflow: unknown policy %v", cfg.Policy)
	}
	if cfg.Capacity == 0 && cfg.Policy != Blocking {
		return nil, fmt.Errorf("%w: capacity 0 requires the blocking policy, got %s",
			ErrInvalidCapacity, cfg.Policy)
	}
	c := &Channel[T]{
		capacity: cfg.Capacity,
		policy:   cfg.Policy,
		onDrop:   cfg.OnDrop,
	}
	if cfg.Capacity > 0 {
		c.buf = make([]T, 0, cfg.Capacity)
	}
	return c, nil
}

// Cap returns the configured capacity.
func (c *Channel[T]) Cap() int { return c.capacity }

// Policy returns the configured overflow policy.
func (c *Channel[T]) Policy() Policy { return c.policy }

// Len returns the current number of buffered messages.
func (c *Channel[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buf)
}

// Stats returns a snapshot of the channel counters. Counters are updated
// together with the buffer under the channel lock, so every snapshot
// satisfies Puts - Takes - DroppedOldest == Buffered.
func (c *Channel[T]) Stats() ChannelStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ChannelStats{
		Puts:          c.puts.Load(),
		Takes:         c.takes.Load(),
		DroppedOldest: c.droppedOldest.Load(),
		DroppedNewest: c.droppedNewest.Load(),
		Rejected:      c.rejected.Load(),
		Buffered:      len(c.buf),
	}
}

// Put inserts msg according to the channel policy.
//
// Sliding and Dropping never suspend: on overflow they evict the oldest
// buffered message or discard msg, respectively, and return nil. Blocking
// suspends until a slot frees up, a taker is waiting, or the channel closes.
//
// Returns ErrClosed if the channel is closed before the message is accepted,
// or ctx.Err() if ctx is canceled while waiting.
func (c *Channel[T]) Put(ctx context.Context, msg T) error {
	c.mu.Lock()
	for {
		if c.closed {
			c.rejected.Add(1)
			c.mu.Unlock()
			return ErrClosed
		}

		// A waiting taker implies an empty buffer; hand off directly.
		// The handoff is committed here, so both counters move together.
		if len(c.takers) > 0 {
			w := c.takers[0]
			c.takers = c.takers[1:]
			c.puts.Add(1)
			c.takes.Add(1)
			c.mu.Unlock()
			w <- msg
			return nil
		}

		if len(c.buf) < c.capacity {
			c.buf = append(c.buf, msg)
			c.puts.Add(1)
			c.mu.Unlock()
			return nil
		}

		switch c.policy {
		case Sliding:
			dropped := c.buf[0]
			c.buf = append(c.buf[1:], msg)
			c.puts.Add(1)
			c.droppedOldest.Add(1)
			c.mu.Unlock()
			if c.onDrop != nil {
				c.onDrop(dropped)
			}
			return nil

		case Dropping:
			c.droppedNewest.Add(1)
			c.mu.Unlock()
			if c.onDrop != nil {
				c.onDrop(msg)
			}
			return nil

		default: // Blocking
			w := make(chan struct{})
			c.putters = append(c.putters, w)
			c.mu.Unlock()

			select {
			case <-w:
				// Woken by a take or by close; re-check under lock.
			case <-ctx.Done():
				c.mu.Lock()
				if !c.removePutter(w) {
					// A wake token was already committed to this waiter;
					// relay it so another blocked putter is not stranded.
					c.wakePutter()
				}
				c.mu.Unlock()
				return ctx.Err()
			}
			c.mu.Lock()
		}
	}
}

// TryPut attempts to insert msg without suspending.
//
// For Sliding and Dropping it is identical to Put. For Blocking it reports
// ok=false when the channel is full instead of waiting.
// Returns ErrClosed if the channel is closed.
func (c *Channel[T]) TryPut(msg T) (ok bool, err error) {
	c.mu.Lock()
	if c.closed {
		c.rejected.Add(1)
		c.mu.Unlock()
		return false, ErrClosed
	}
	if len(c.takers) > 0 {
		w := c.takers[0]
		c.takers = c.takers[1:]
		c.puts.Add(1)
		c.takes.Add(1)
		c.mu.Unlock()
		w <- msg
		return true, nil
	}
	if len(c.buf) < c.capacity {
		c.buf = append(c.buf, msg)
		c.puts.Add(1)
		c.mu.Unlock()
		return true, nil
	}
	switch c.policy {
	case Sliding:
		dropped := c.buf[0]
		c.buf = append(c.buf[1:], msg)
		c.puts.Add(1)
		c.droppedOldest.Add(1)
		c.mu.Unlock()
		if c.onDrop != nil {
			c.onDrop(dropped)
		}
		return true, nil
	case Dropping:
		c.droppedNewest.Add(1)
		c.mu.Unlock()
		if c.onDrop != nil {
			c.onDrop(msg)
		}
		return true, nil
	default:
		c.mu.Unlock()
		return false, nil
	}
}

// Take removes and returns the oldest buffered message.
//
// When the buffer is empty and the channel is open, Take suspends until a
// message arrives or the channel closes. A closed, drained channel yields
// ok=false as the end-of-stream signal; this is not an error.
// A non-nil error is returned only when ctx is canceled while waiting.
func (c *Channel[T]) Take(ctx context.Context) (msg T, ok bool, err error) {
	c.mu.Lock()
	for {
		if len(c.buf) > 0 {
			msg = c.buf[0]
			c.buf = c.buf[1:]
			c.takes.Add(1)
			c.wakePutter()
			c.mu.Unlock()
			return msg, true, nil
		}
		if c.closed {
			c.mu.Unlock()
			var zero T
			return zero, false, nil
		}

		w := make(chan T, 1)
		c.takers = append(c.takers, w)
		// A blocked putter on a rendezvous channel is waiting for exactly
		// this: a taker ready to receive.
		c.wakePutter()
		c.mu.Unlock()

		select {
		case msg, open := <-w:
			if !open {
				// Closed while waiting. Takers only wait on an empty
				// buffer, so this is end-of-stream.
				var zero T
				return zero, false, nil
			}
			// Counted on the putter side when the handoff was committed.
			return msg, true, nil
		case <-ctx.Done():
			c.mu.Lock()
			removed := c.removeTaker(w)
			c.mu.Unlock()
			if !removed {
				// A putter already committed a message to this waiter;
				// claim it rather than lose it.
				if msg, open := <-w; open {
					return msg, true, nil
				}
				var zero T
				return zero, false, nil
			}
			var zero T
			return zero, false, ctx.Err()
		}
	}
}

// Close marks the channel closed. It is idempotent.
//
// All suspended takers are woken and observe end-of-stream once the buffer
// is drained; all suspended putters are woken and receive ErrClosed.
// Already-buffered messages remain takeable.
func (c *Channel[T]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	takers := c.takers
	putters := c.putters
	c.takers = nil
	c.putters = nil
	c.mu.Unlock()

	for _, w := range takers {
		close(w)
	}
	for _, w := range putters {
		close(w)
	}
}

// wakePutter wakes the longest-waiting blocked putter, if any.
// Callers must hold c.mu.
func (c *Channel[T]) wakePutter() {
	if len(c.putters) == 0 {
		return
	}
	w := c.putters[0]
	c.putters = c.putters[1:]
	close(w)
}

// removePutter unregisters a waiter after context cancellation. It reports
// false when the waiter was already woken by a take or by Close.
// Callers must hold c.mu.
func (c *Channel[T]) removePutter(w chan struct{}) bool {
	for i, p := range c.putters {
		if p == w {
			c.putters = append(c.putters[:i], c.putters[i+1:]...)
			return true
		}
	}
	return false
}

// removeTaker unregisters a waiter after context cancellation. It reports
// false when the waiter was already handed a message or woken by Close.
// Callers must hold c.mu.
func (c *Channel[T]) removeTaker(w chan T) bool {
	for i, t := range c.takers {
		if t == w {
			c.takers = append(c.takers[:i], c.takers[i+1:]...)
			return true
		}
	}
	return false
}
