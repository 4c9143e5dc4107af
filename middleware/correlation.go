package middleware

import (
	"context"

	"github.com/google/uuid"
)

type deliveryIDKey struct{}

// Correlation assigns a unique delivery ID to the context of each message,
// enabling log correlation across the handler chain. IDs are RFC 4122
// UUID v4 strings.
func Correlation[T any]() Middleware[T] {
	return func(next HandlerFunc[T]) HandlerFunc[T] {
		return func(ctx context.Context, msg T) error {
			return next(context.WithValue(ctx, deliveryIDKey{}, uuid.NewString()), msg)
		}
	}
}

// DeliveryIDFromContext returns the delivery ID assigned by Correlation.
// ok is false when no Correlation middleware is in the chain.
func DeliveryIDFromContext(ctx context.Context) (id string, ok bool) {
	id, ok = ctx.Value(deliveryIDKey{}).(string)
	return id, ok
}
