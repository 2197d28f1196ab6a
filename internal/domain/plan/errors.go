package plan

import "errors"

// Sentinel kinds for planning errors.
var (
	// ErrUnplannable marks an intent the planner has no traversal for.
	// Reaching it means validation and planning disagree on the intent set.
	ErrUnplannable = errors.New("no traversal for intent")
)
