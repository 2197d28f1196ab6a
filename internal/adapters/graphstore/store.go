// Package graphstore runs read-only Cypher traversals against the student
// performance graph.
package graphstore

import "context"

// Row is one traversal record keyed by its RETURN aliases. Node values are
// flattened to their property maps before a Row leaves this package.
type Row = map[string]any

// Runner executes one parameterized Cypher traversal and returns all of its
// rows, fully buffered. The engine depends on this interface, not on the
// driver, so tests can substitute a Memstore.
type Runner interface {
	Run(ctx context.Context, cypher string, params map[string]any) ([]Row, error)
}

// Verifier reports whether the backing store is reachable.
type Verifier interface {
	Verify(ctx context.Context) error
}
