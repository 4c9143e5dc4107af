package middleware

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	errTransient := errors.New("transient")
	attempts := 0
	handler := Retry[int](RetryConfig{
		Backoff:     ConstantBackoff(time.Millisecond, 0),
		MaxAttempts: 5,
	})(func(_ context.Context, _ int) error {
		attempts++
		if attempts < 3 {
			return errTransient
		}
		return nil
	})

	if err := handler(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetry_MaxAttempts(t *testing.T) {
	errAlways := errors.New("always failing")
	attempts := 0
	handler := Retry[int](RetryConfig{
		Backoff:     ConstantBackoff(time.Millisecond, 0),
		MaxAttempts: 3,
	})(func(_ context.Context, _ int) error {
		attempts++
		return errAlways
	})

	err := handler(context.Background(), 1)
	if !errors.Is(err, ErrRetryMaxAttempts) {
		t.Fatalf("expected ErrRetryMaxAttempts, got %v", err)
	}
	if !errors.Is(err, ErrRetry) {
		t.Fatalf("expected error to wrap ErrRetry, got %v", err)
	}
	if !errors.Is(err, errAlways) {
		t.Fatalf("expected error to wrap the cause, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetry_NotRetryable(t *testing.T) {
	errFatal := errors.New("fatal")
	errTransient := errors.New("transient")
	attempts := 0
	handler := Retry[int](RetryConfig{
		ShouldRetry: ShouldRetry(errTransient),
		Backoff:     ConstantBackoff(time.Millisecond, 0),
		MaxAttempts: 5,
	})(func(_ context.Context, _ int) error {
		attempts++
		return errFatal
	})

	if err := handler(context.Background(), 1); !errors.Is(err, errFatal) {
		t.Fatalf("expected the original error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected a single attempt for a non-retryable error, got %d", attempts)
	}
}

func TestRetry_Timeout(t *testing.T) {
	errAlways := errors.New("always failing")
	handler := Retry[int](RetryConfig{
		Backoff:     ConstantBackoff(50*time.Millisecond, 0),
		MaxAttempts: -1,
		Timeout:     80 * time.Millisecond,
	})(func(_ context.Context, _ int) error {
		return errAlways
	})

	err := handler(context.Background(), 1)
	if !errors.Is(err, ErrRetryTimeout) {
		t.Fatalf("expected ErrRetryTimeout, got %v", err)
	}
	if !errors.Is(err, errAlways) {
		t.Fatalf("expected error to wrap the cause, got %v", err)
	}
}
