package result

import "errors"

// ErrNoData marks a traversal that matched the topic but found no scores to
// report. Callers map it to a not-found response, distinct from a topic that
// does not exist at all.
var ErrNoData = errors.New("no data")
