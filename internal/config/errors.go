package config

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")

	// ErrMissingStoreConfig marks a config that would dial the graph store
	// with empty credentials. Callers must fail fast on it instead of
	// attempting a connection.
	ErrMissingStoreConfig = errors.New("missing graph store configuration")
)
