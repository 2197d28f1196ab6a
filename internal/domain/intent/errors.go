package intent

import "errors"

// Sentinel kinds for validation errors.
var (
	ErrUnsupportedIntent = errors.New("unsupported intent")
	ErrMissingParameter  = errors.New("missing parameter")
)
