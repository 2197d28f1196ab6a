package graphstore

import (
	"context"
	"sync"
)

// Memstore is an in-memory Runner for tests and smoke runs. Responses are
// stubbed per Cypher text, and every call is logged in order so tests can
// assert on traversal sequencing.
type Memstore struct {
	mu    sync.Mutex
	stubs map[string]stub
	calls []Call
}

type stub struct {
	rows []Row
	err  error
}

// Call is one recorded Run invocation.
type Call struct {
	Cypher string
	Params map[string]any
}

// NewMemstore returns an empty Memstore; unstubbed queries return no rows.
func NewMemstore() *Memstore {
	return &Memstore{stubs: make(map[string]stub)}
}

// Stub registers the rows returned for an exact Cypher text.
func (m *Memstore) Stub(cypher string, rows []Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stubs[cypher] = stub{rows: rows}
}

// StubErr makes an exact Cypher text fail.
func (m *Memstore) StubErr(cypher string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stubs[cypher] = stub{err: err}
}

// Run returns the stubbed response for cypher, honoring context
// cancellation first so timeout paths stay testable.
func (m *Memstore) Run(ctx context.Context, cypher string, params map[string]any) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Cypher: cypher, Params: params})

	s, ok := m.stubs[cypher]
	if !ok {
		return nil, nil
	}
	if s.err != nil {
		return nil, s.err
	}
	out := make([]Row, len(s.rows))
	copy(out, s.rows)
	return out, nil
}

// Verify always succeeds; the store is the process itself.
func (m *Memstore) Verify(ctx context.Context) error {
	return ctx.Err()
}

// Calls returns a copy of the recorded invocations in order.
func (m *Memstore) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// Reset clears stubs and the call log.
func (m *Memstore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stubs = make(map[string]stub)
	m.calls = nil
}
