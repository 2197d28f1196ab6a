package graphstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Executor is the Neo4j-backed Runner. It uses the driver's managed
// ExecuteQuery path, so sessions and transactions are handled per call and
// the Executor is safe for concurrent use.
type Executor struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewExecutor connects to Neo4j at uri with basic auth. The connection is
// lazy; call Verify to confirm reachability before serving traffic.
func NewExecutor(uri, username, password, database string) (*Executor, error) {
	var missing []string
	if uri == "" {
		missing = append(missing, "uri")
	}
	if username == "" {
		missing = append(missing, "username")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	if database == "" {
		missing = append(missing, "database")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return &Executor{driver: driver, database: database}, nil
}

// Run executes one read traversal and buffers all records. Every traversal
// this engine plans is a pure read, so the call is routed to readers.
func (e *Executor) Run(ctx context.Context, cypher string, params map[string]any) ([]Row, error) {
	result, err := neo4j.ExecuteQuery(
		ctx,
		e.driver,
		cypher,
		params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(e.database),
		neo4j.ExecuteQueryWithReadersRouting(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	rows := make([]Row, 0, len(result.Records))
	for _, record := range result.Records {
		row := make(Row, len(record.Keys))
		for i, key := range record.Keys {
			row[key] = flatten(record.Values[i])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Verify confirms the store is reachable.
func (e *Executor) Verify(ctx context.Context) error {
	if err := e.driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return nil
}

// Close releases the driver's connection pool.
func (e *Executor) Close(ctx context.Context) error {
	return e.driver.Close(ctx)
}

// flatten reduces driver entity types to plain values. Traversals that
// return whole nodes yield their property maps; scalars pass through.
func flatten(v any) any {
	switch n := v.(type) {
	case neo4j.Node:
		return n.Props
	case neo4j.Relationship:
		return n.Props
	default:
		return v
	}
}
