package middleware

import (
	"context"
	"log/slog"
	"time"
)

// LoggingConfig configures the logging middleware.
type LoggingConfig struct {
	// Args are additional arguments to include in all log messages.
	Args []any

	// MessageSuccess is the message logged on successful processing.
	// Defaults to "CHANFLOW: Processed".
	MessageSuccess string
	// MessageFailure is the message logged when processing fails.
	// Defaults to "CHANFLOW: Processing failed".
	MessageFailure string
}

func (c LoggingConfig) parse() LoggingConfig {
	if c.MessageSuccess == "" {
		c.MessageSuccess = "CHANFLOW: Processed"
	}
	if c.MessageFailure == "" {
		c.MessageFailure = "CHANFLOW: Processing failed"
	}
	return c
}

// Logging wraps a HandlerFunc with outcome logging. Successful deliveries are
// logged at debug level, failures at error level. A nil log uses slog.Default().
func Logging[T any](log *slog.Logger, cfg LoggingConfig) Middleware[T] {
	cfg = cfg.parse()
	return func(next HandlerFunc[T]) HandlerFunc[T] {
		return func(ctx context.Context, msg T) error {
			l := log
			if l == nil {
				l = slog.Default()
			}
			start := time.Now()
			err := next(ctx, msg)
			args := append([]any{}, cfg.Args...)
			if id, ok := DeliveryIDFromContext(ctx); ok {
				args = append(args, "delivery_id", id)
			}
			args = append(args, "duration", time.Since(start))
			if err != nil {
				l.Error(cfg.MessageFailure, append(args, "error", err)...)
				return err
			}
			l.Debug(cfg.MessageSuccess, args...)
			return nil
		}
	}
}
