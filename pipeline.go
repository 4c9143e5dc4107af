package chanflow

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/fxsml/chanflow/middleware"
)

// PipelineConfig configures behavior of a Pipeline.
type PipelineConfig[T any] struct {
	// Channel configures the input channel created for each consumer.
	Channel ChannelConfig[T]
	// Producer configures the pipeline's producer. CloseOutputs is implied:
	// the pipeline's producer is the sole writer to its channels.
	Producer ProducerConfig
	// Consumer configures each consumer added to the pipeline.
	Consumer ConsumerConfig
}

// Pipeline wires one producer to a set of consumers, each draining its own
// bounded channel. Channels are independent: a slow or failing consumer
// never interferes with the others beyond its own channel's policy.
type Pipeline[T any] struct {
	cfg PipelineConfig[T]

	mu        sync.Mutex
	started   bool
	channels  []*Channel[T]
	consumers []*Consumer[T]
}

// NewPipeline creates an empty Pipeline. Add consumers with AddConsumer,
// then call Run exactly once.
func NewPipeline[T any](cfg PipelineConfig[T]) *Pipeline[T] {
	return &Pipeline[T]{cfg: cfg}
}

// AddConsumer registers a consumer with a dedicated channel built from the
// pipeline's channel configuration, and returns that channel.
// Returns ErrAlreadyStarted after Run has been called.
func (p *Pipeline[T]) AddConsumer(handle HandlerFunc[T], mw ...middleware.Middleware[T]) (*Channel[T], error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return nil, ErrAlreadyStarted
	}
	ch, err := NewChannel(p.cfg.Channel)
	if err != nil {
		return nil, err
	}
	c := NewConsumer(handle, p.cfg.Consumer)
	if len(mw) > 0 {
		if err := c.ApplyMiddleware(mw...); err != nil {
			return nil, err
		}
	}
	p.channels = append(p.channels, ch)
	p.consumers = append(p.consumers, c)
	return ch, nil
}

// Run starts the producer and every consumer, then blocks until the source
// is exhausted and all channels are drained, or until the first fatal error,
// which cancels the remaining tasks.
// Returns ErrAlreadyStarted if called more than once.
func (p *Pipeline[T]) Run(ctx context.Context, source <-chan T) error {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return ErrAlreadyStarted
	}
	p.started = true
	channels := p.channels
	consumers := p.consumers
	p.mu.Unlock()

	cfg := p.cfg.Producer
	cfg.CloseOutputs = true
	producer := NewProducer[T](cfg)

	g, ctx := errgroup.WithContext(ctx)

	ph, err := producer.Produce(ctx, source, channels...)
	if err != nil {
		return err
	}
	g.Go(func() error {
		err := ph.Run(ctx)
		// The producer is the sole writer; even channels it never wrote to
		// must close so their consumers observe end-of-stream.
		for _, ch := range channels {
			ch.Close()
		}
		return err
	})

	for i, c := range consumers {
		h, err := c.Consume(ctx, channels[i])
		if err != nil {
			return err
		}
		g.Go(func() error { return h.Run(ctx) })
	}

	return g.Wait()
}
