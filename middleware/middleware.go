// Package middleware provides composable middleware for consumer handlers.
//
// Middleware wraps a HandlerFunc with additional behavior such as panic
// recovery, retry logic, logging, delivery IDs, and metrics collection.
// The channel and producer machinery never inspects message content; any
// per-message policy belongs here, on the handler.
package middleware

import "context"

// HandlerFunc is the consumer processing signature.
// It receives a context and a single delivered message.
type HandlerFunc[T any] func(context.Context, T) error

// Middleware wraps a HandlerFunc with additional behavior.
type Middleware[T any] func(HandlerFunc[T]) HandlerFunc[T]
