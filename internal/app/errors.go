package engine

import "errors"

var (
	// ErrTopicNotFound marks a query whose topics do not exist at the
	// requested grade. Raised by the existence check, before any student
	// traversal runs.
	ErrTopicNotFound = errors.New("topic not found")
	// ErrTimeout marks an invocation that exceeded the engine's query budget.
	ErrTimeout = errors.New("query timeout")
	// ErrNotReady marks an engine asked to serve without a configured runner.
	ErrNotReady = errors.New("engine not ready")
)
