package chanflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fxsml/chanflow/throttle"
)

// ProducerConfig configures behavior of a Producer.
type ProducerConfig struct {
	// Pace is the cooperative delay applied before each individual send.
	// It decouples the production rate from consumer speed explicitly
	// instead of relying on backpressure alone. Default is 0 (no pacing).
	Pace time.Duration `env:"PACE"`

	// CloseOutputs closes every output channel the producer wrote to at
	// least once after the source is exhausted. Enable only when the
	// producer is the sole writer to its outputs.
	CloseOutputs bool `env:"CLOSE_OUTPUTS"`

	// Allower overrides the pacing strategy. When nil, a fixed-interval
	// allower derived from Pace is used.
	Allower throttle.Allower

	// ErrorHandler is called when a send is refused by a closed output.
	// Default logs a warning via the package logger.
	ErrorHandler func(msg any, err error)
}

func (c ProducerConfig) parse() ProducerConfig {
	if c.Allower == nil {
		c.Allower = throttle.NewIntervalAllower(c.Pace)
	}
	if c.ErrorHandler == nil {
		c.ErrorHandler = func(msg any, err error) {
			logger.Warn("CHANFLOW: Output closed", "input", msg, "error", err)
		}
	}
	return c
}

// Producer distributes a finite source sequence across one or more channels,
// pacing each send.
type Producer[T any] struct {
	cfg ProducerConfig

	mu      sync.Mutex
	started bool
}

// NewProducer creates a Producer with the given configuration.
func NewProducer[T any](cfg ProducerConfig) *Producer[T] {
	return &Producer[T]{cfg: cfg.parse()}
}

// Produce begins distributing messages from source to outputs and returns a
// handle for the running task.
//
// Each message is sent to every output in the order given, waiting Pace
// before each send. An output that refuses a send with ErrClosed is skipped
// for the remainder of the run; the other outputs keep receiving. The task
// terminates once source is closed, or with ctx.Err() on cancellation.
//
// Returns ErrAlreadyStarted if the producer has already been started.
func (p *Producer[T]) Produce(ctx context.Context, source <-chan T, outputs ...*Channel[T]) (*Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return nil, ErrAlreadyStarted
	}
	p.started = true

	ctx, cancel := context.WithCancel(ctx)
	h := newHandle(cancel)
	go func() {
		err := p.run(ctx, source, outputs)
		cancel()
		h.complete(err)
	}()
	return h, nil
}

func (p *Producer[T]) run(ctx context.Context, source <-chan T, outputs []*Channel[T]) error {
	alive := make([]bool, len(outputs))
	wrote := make([]bool, len(outputs))
	for i := range alive {
		alive[i] = true
	}
	defer func() {
		if !p.cfg.CloseOutputs {
			return
		}
		for i, out := range outputs {
			if wrote[i] {
				out.Close()
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-source:
			if !ok {
				return nil
			}
			for i, out := range outputs {
				if !alive[i] {
					continue
				}
				if err := p.cfg.Allower.Allow(ctx, 1); err != nil {
					return err
				}
				if err := out.Put(ctx, msg); err != nil {
					if errors.Is(err, ErrClosed) {
						alive[i] = false
						p.cfg.ErrorHandler(msg, err)
						continue
					}
					return err
				}
				wrote[i] = true
			}
		}
	}
}
