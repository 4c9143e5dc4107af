package chanflow

import "context"

// Drain consumes and discards messages from ch until end-of-stream or
// context cancellation. The returned channel is closed once draining stops.
func Drain[T any](ctx context.Context, ch *Channel[T]) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			_, ok, err := ch.Take(ctx)
			if !ok || err != nil {
				return
			}
		}
	}()

	return done
}
