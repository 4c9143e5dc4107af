// Package chanflow decouples producers and consumers with bounded,
// policy-governed channels.
//
// A [Channel] is an in-process FIFO hand-off point with an explicit capacity
// and an overflow [Policy] deciding what a full channel does with an incoming
// put: evict the oldest message ([Sliding]), discard the newest ([Dropping]),
// or suspend the producer until space frees up ([Blocking]). Closing a
// channel is the sole cancellation primitive: it wakes every suspended caller
// and leaves buffered messages takeable until drained.
//
// A [Producer] distributes a finite source sequence across one or more
// channels with cooperative pacing between sends; a [Consumer] drains its
// channel in a loop until end-of-stream. Both run as goroutines tracked by a
// [Handle].
//
// # Quick Start
//
//	ch, _ := chanflow.NewChannel(chanflow.ChannelConfig[int]{
//		Capacity: 64,
//		Policy:   chanflow.Sliding,
//	})
//	consumer := chanflow.SpawnConsumer(ctx, ch, func(ctx context.Context, v int) error {
//		fmt.Println(v)
//		return nil
//	})
//
//	producer := chanflow.NewProducer[int](chanflow.ProducerConfig{
//		Pace:         10 * time.Millisecond,
//		CloseOutputs: true,
//	})
//	handle, _ := producer.Produce(ctx, chanflow.FromRange(4), ch)
//	_ = handle.Wait(ctx)
//	_ = consumer.Wait(ctx)
//
// # Components
//
// Channels: [NewChannel], [Channel.Put], [Channel.TryPut], [Channel.Take],
// [Channel.Close], [Channel.Stats]
//
// Tasks: [NewProducer], [NewConsumer], [SpawnConsumer], [Handle]
//
// Wiring: [Pipeline], [FromSlice], [FromValues], [FromRange], [Drain]
//
// Handler middleware lives in the middleware package; environment-based
// configuration in the config package; pacing primitives in throttle.
package chanflow
