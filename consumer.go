package chanflow

import (
	"context"
	"sync"

	"github.com/fxsml/chanflow/middleware"
)

// HandlerFunc processes a single message delivered to a consumer.
type HandlerFunc[T any] func(ctx context.Context, msg T) error

// ConsumerConfig configures behavior of a Consumer.
type ConsumerConfig struct {
	// ErrorHandler is called for recoverable processing failures.
	// Default logs via the package logger; the loop continues.
	ErrorHandler func(msg any, err error)

	// Fatal classifies processing errors. When it returns true the consumer
	// stops and its handle reports the error; remaining input stays untaken.
	// Default classifies no error as fatal.
	Fatal func(error) bool
}

func (c ConsumerConfig) parse() ConsumerConfig {
	if c.ErrorHandler == nil {
		c.ErrorHandler = func(msg any, err error) {
			logger.Error("CHANFLOW: Processing failed", "input", msg, "error", err)
		}
	}
	if c.Fatal == nil {
		c.Fatal = func(error) bool { return false }
	}
	return c
}

// Consumer drains a single channel in a loop, processing each message with
// its handler until the channel is closed and empty.
type Consumer[T any] struct {
	handle HandlerFunc[T]
	cfg    ConsumerConfig
	mw     []middleware.Middleware[T]

	mu      sync.Mutex
	started bool
}

// NewConsumer creates a Consumer with the given handler and configuration.
// Use ApplyMiddleware on the returned *Consumer to add middleware.
func NewConsumer[T any](handle HandlerFunc[T], cfg ConsumerConfig) *Consumer[T] {
	return &Consumer[T]{
		handle: handle,
		cfg:    cfg.parse(),
	}
}

// ApplyMiddleware adds middleware to the processing chain.
// Middleware is applied in the order it is added.
// Returns ErrAlreadyStarted if the consumer has already been started.
func (c *Consumer[T]) ApplyMiddleware(mw ...middleware.Middleware[T]) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return ErrAlreadyStarted
	}
	c.mw = append(c.mw, mw...)
	return nil
}

// Consume begins draining ch and returns a handle for the running loop.
//
// The loop terminates with a nil error once ch is closed and drained, or
// with ctx.Err() on cancellation. A handler error classified as fatal stops
// the loop and becomes the handle's error; any other handler error is passed
// to ErrorHandler and the loop continues with the next take.
//
// Returns ErrAlreadyStarted if the consumer has already been started.
func (c *Consumer[T]) Consume(ctx context.Context, ch *Channel[T]) (*Handle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return nil, ErrAlreadyStarted
	}
	c.started = true

	fn := applyMiddleware(c.handle, c.mw)
	ctx, cancel := context.WithCancel(ctx)
	h := newHandle(cancel)
	go func() {
		err := c.run(ctx, ch, fn)
		cancel()
		h.complete(err)
	}()
	return h, nil
}

func (c *Consumer[T]) run(ctx context.Context, ch *Channel[T], fn HandlerFunc[T]) error {
	for {
		msg, ok, err := ch.Take(ctx)
		if err != nil {
			return err
		}
		if !ok {
			// End of stream.
			return nil
		}
		if perr := fn(ctx, msg); perr != nil {
			if c.cfg.Fatal(perr) {
				return perr
			}
			c.cfg.ErrorHandler(msg, perr)
		}
	}
}

// SpawnConsumer wires a default-configured consumer to ch and starts it.
// It is shorthand for NewConsumer(handle, ConsumerConfig{}).Consume(ctx, ch).
func SpawnConsumer[T any](ctx context.Context, ch *Channel[T], handle HandlerFunc[T]) *Handle {
	h, _ := NewConsumer(handle, ConsumerConfig{}).Consume(ctx, ch)
	return h
}

func applyMiddleware[T any](fn HandlerFunc[T], mw []middleware.Middleware[T]) HandlerFunc[T] {
	h := middleware.HandlerFunc[T](fn)
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return HandlerFunc[T](h)
}
