// Package config defines engine configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Layer defaults -> optional YAML file -> env vars in Load.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Neo4jURI is the bolt/neo4j connection URI, e.g. "neo4j://localhost:7687".
	Neo4jURI string `koanf:"neo4j_uri"`

	// Neo4jUsername and Neo4jPassword authenticate against the graph store.
	Neo4jUsername string `koanf:"neo4j_username"`
	Neo4jPassword string `koanf:"neo4j_password"`

	// Neo4jDatabase selects the target database for all traversals.
	Neo4jDatabase string `koanf:"neo4j_database"`

	// QueryTimeoutMS bounds a single engine invocation end to end.
	QueryTimeoutMS int `koanf:"query_timeout_ms"`

	// TopLimit caps the find_top_students result set.
	TopLimit int `koanf:"top_limit"`

	// TeamFanout caps how many ranked students feed team formation.
	TeamFanout int `koanf:"team_fanout"`
}

// New creates a Config populated with defaults. Store credentials have no
// defaults on purpose; Load rejects a config that leaves them empty.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		Addr:           ":9080",
		Neo4jURI:       "",
		Neo4jUsername:  "",
		Neo4jPassword:  "",
		Neo4jDatabase:  "neo4j",
		QueryTimeoutMS: 10_000,
		TopLimit:       5,
		TeamFanout:     8,
	}
}
