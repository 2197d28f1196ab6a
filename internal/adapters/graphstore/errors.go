package graphstore

import "errors"

var (
	// ErrMissingConfig marks an executor built without a complete set of
	// connection parameters.
	ErrMissingConfig = errors.New("missing graph store config")
	// ErrConnection wraps driver and traversal failures so callers can map
	// them to an upstream-error response without knowing the driver.
	ErrConnection = errors.New("graph store connection")
)
