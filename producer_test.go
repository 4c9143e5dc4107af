package chanflow

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fxsml/chanflow/internal/test"
)

func TestProducer_SingleConsumer(t *testing.T) {
	ctx := context.Background()
	ch := mustChannel(t, ChannelConfig[int]{Capacity: 64, Policy: Sliding})

	rec := test.NewRecorder[int]()
	consumer := SpawnConsumer(ctx, ch, func(_ context.Context, v int) error {
		rec.Record(v)
		return nil
	})

	producer := NewProducer[int](ProducerConfig{CloseOutputs: true})
	h, err := producer.Produce(ctx, FromRange(4), ch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := h.Wait(waitCtx); err != nil {
		t.Fatalf("producer failed: %v", err)
	}
	if err := consumer.Wait(waitCtx); err != nil {
		t.Fatalf("consumer failed: %v", err)
	}

	got := rec.Values()
	want := []int{0, 1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestProducer_TwoConsumers(t *testing.T) {
	ctx := context.Background()
	chA := mustChannel(t, ChannelConfig[int]{Capacity: 8, Policy: Blocking})
	chB := mustChannel(t, ChannelConfig[int]{Capacity: 8, Policy: Blocking})

	recA := test.NewRecorder[int]()
	recB := test.NewRecorder[int]()
	consumerA := SpawnConsumer(ctx, chA, func(_ context.Context, v int) error {
		recA.Record(v)
		return nil
	})
	consumerB := SpawnConsumer(ctx, chB, func(_ context.Context, v int) error {
		recB.Record(v)
		return nil
	})

	producer := NewProducer[int](ProducerConfig{CloseOutputs: true})
	h, err := producer.Produce(ctx, FromRange(4), chA, chB)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := h.Wait(waitCtx); err != nil {
		t.Fatalf("producer failed: %v", err)
	}
	if err := consumerA.Wait(waitCtx); err != nil {
		t.Fatalf("consumer A failed: %v", err)
	}
	if err := consumerB.Wait(waitCtx); err != nil {
		t.Fatalf("consumer B failed: %v", err)
	}

	for name, got := range map[string][]int{"A": recA.Values(), "B": recB.Values()} {
		if len(got) != 4 {
			t.Fatalf("consumer %s: expected 4 values, got %v", name, got)
		}
		for i := range got {
			if got[i] != i {
				t.Fatalf("consumer %s: expected [0 1 2 3], got %v", name, got)
			}
		}
	}
}

func TestProducer_ClosedOutputIsolation(t *testing.T) {
	ctx := context.Background()
	closed := mustChannel(t, ChannelConfig[int]{Capacity: 4})
	open := mustChannel(t, ChannelConfig[int]{Capacity: 4})
	closed.Close()

	var refused atomic.Int32
	producer := NewProducer[int](ProducerConfig{
		CloseOutputs: true,
		ErrorHandler: func(any, error) { refused.Add(1) },
	})
	h, err := producer.Produce(ctx, FromRange(3), closed, open)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := h.Wait(waitCtx); err != nil {
		t.Fatalf("producer failed: %v", err)
	}

	got := drainAll(t, open)
	if len(got) != 3 {
		t.Fatalf("expected the open output to receive all 3 messages, got %v", got)
	}
	// The dead output is reported once and skipped thereafter.
	if n := refused.Load(); n != 1 {
		t.Fatalf("expected 1 refused send, got %d", n)
	}
}

func TestProducer_Pacing(t *testing.T) {
	ctx := context.Background()
	ch := mustChannel(t, ChannelConfig[int]{Capacity: 8})

	producer := NewProducer[int](ProducerConfig{
		Pace:         30 * time.Millisecond,
		CloseOutputs: true,
	})
	start := time.Now()
	h, err := producer.Produce(ctx, FromRange(3), ch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := h.Wait(waitCtx); err != nil {
		t.Fatalf("producer failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Fatalf("expected at least 90ms of pacing, took %v", elapsed)
	}

	if got := drainAll(t, ch); len(got) != 3 {
		t.Fatalf("expected 3 messages, got %v", got)
	}
}

func TestProducer_CancelDuringPace(t *testing.T) {
	ctx := context.Background()
	ch := mustChannel(t, ChannelConfig[int]{Capacity: 8})

	producer := NewProducer[int](ProducerConfig{Pace: time.Minute})
	h, err := producer.Produce(ctx, FromRange(3), ch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	time.Sleep(20 * time.Millisecond)
	h.Cancel()

	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := h.Wait(waitCtx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestProducer_EmptySourceLeavesOutputsOpen(t *testing.T) {
	ctx := context.Background()
	ch := mustChannel(t, ChannelConfig[int]{Capacity: 4})

	producer := NewProducer[int](ProducerConfig{CloseOutputs: true})
	h, err := producer.Produce(ctx, FromValues[int](), ch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := h.Wait(waitCtx); err != nil {
		t.Fatalf("producer failed: %v", err)
	}

	// Never written to, so never closed: other writers may still use it.
	if err := ch.Put(ctx, 1); err != nil {
		t.Fatalf("expected channel to remain open, got %v", err)
	}
}

func TestProducer_AlreadyStarted(t *testing.T) {
	ctx := context.Background()
	ch := mustChannel(t, ChannelConfig[int]{Capacity: 4})

	producer := NewProducer[int](ProducerConfig{})
	if _, err := producer.Produce(ctx, FromValues(1), ch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := producer.Produce(ctx, FromValues(2), ch); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("expected ErrAlreadyStarted, got %v", err)
	}
}
