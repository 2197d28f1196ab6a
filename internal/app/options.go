package engine

import (
	"time"

	"github.com/scoregraph/scoregraph/internal/adapters/graphstore"
	"github.com/scoregraph/scoregraph/pkg/logger"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithRunner sets the traversal runner. Required for serving queries.
func WithRunner(r graphstore.Runner) Option {
	return func(e *Engine) {
		if r != nil {
			e.runner = r
		}
	}
}

// WithVerifier sets the store reachability probe used by health checks.
func WithVerifier(v graphstore.Verifier) Option {
	return func(e *Engine) {
		if v != nil {
			e.verifier = v
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithQueryTimeout bounds each invocation end to end.
func WithQueryTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithTopLimit caps ranked-list result sets.
func WithTopLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.topLimit = n
		}
	}
}

// WithTeamFanout caps how many ranked students feed team formation.
func WithTeamFanout(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.teamFanout = n
		}
	}
}
