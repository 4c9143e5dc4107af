// Package config provides type-safe environment variable loading for
// chanflow configuration structs.
//
// A .env file in the working directory is loaded once, on first use.
// Variables follow the pattern {PREFIX}{FIELD}, with "CHANFLOW_" as the
// default prefix:
//
//	CHANFLOW_CAPACITY=128
//	CHANFLOW_POLICY=sliding
//	CHANFLOW_PACE=50ms
//
// Example:
//
//	var cfg chanflow.ChannelConfig[string]
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
// Only fields with set environment variables are modified; all other fields
// retain their current values, so Load overlays environment overrides on top
// of programmatic defaults.
package config

import (
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultPrefix is prepended to every variable name unless overridden
// with WithPrefix.
const DefaultPrefix = "CHANFLOW_"

var dotenvOnce sync.Once

// Option customizes Load behavior.
type Option func(*options)

type options struct {
	prefix string
}

// WithPrefix replaces the default environment variable prefix.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// Load populates cfg from environment variables.
// Fields are matched via `env` struct tags; types implementing
// encoding.TextUnmarshaler (such as chanflow.Policy) parse their text form.
func Load(cfg any, opts ...Option) error {
	o := options{prefix: DefaultPrefix}
	for _, opt := range opts {
		opt(&o)
	}

	dotenvOnce.Do(func() {
		// Missing .env files are not an error; the environment rules.
		_ = godotenv.Load()
	})

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: o.prefix}); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// MustLoad is like Load but panics on failure. Useful during startup when
// a missing or malformed configuration should halt the process.
func MustLoad(cfg any, opts ...Option) {
	if err := Load(cfg, opts...); err != nil {
		panic(err)
	}
}
