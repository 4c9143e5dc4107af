package middleware

import (
	"context"
	"errors"
	"testing"
)

func TestUseMetrics_CollectsOutcomes(t *testing.T) {
	errFail := errors.New("failing")
	var collected []*Metrics
	handler := UseMetrics[int](func(m *Metrics) {
		collected = append(collected, m)
	})(func(_ context.Context, v int) error {
		if v < 0 {
			return errFail
		}
		return nil
	})

	if err := handler(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := handler(context.Background(), -1); !errors.Is(err, errFail) {
		t.Fatalf("expected handler error, got %v", err)
	}

	if len(collected) != 2 {
		t.Fatalf("expected 2 metrics, got %d", len(collected))
	}
	if collected[0].Success() != 1 || collected[0].Failure() != 0 {
		t.Fatalf("expected first delivery to be a success, got %+v", collected[0])
	}
	if collected[1].Success() != 0 || collected[1].Failure() != 1 {
		t.Fatalf("expected second delivery to be a failure, got %+v", collected[1])
	}
	if collected[0].InFlight != 1 {
		t.Fatalf("expected in-flight count of 1, got %d", collected[0].InFlight)
	}
}

func TestUseMetrics_IncludesDeliveryID(t *testing.T) {
	var got string
	chain := Correlation[int]()(
		UseMetrics[int](func(m *Metrics) { got = m.DeliveryID })(
			func(_ context.Context, _ int) error { return nil },
		),
	)

	if err := chain(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == "" {
		t.Fatal("expected metrics to carry the delivery ID")
	}
}
