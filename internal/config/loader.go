package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if SCOREGRAPH_CONFIG is set
//  3. env (prefix SCOREGRAPH_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("SCOREGRAPH_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: SCOREGRAPH_NEO4J_URI, SCOREGRAPH_QUERY_TIMEOUT_MS, ...
	// Map env keys like SCOREGRAPH_NEO4J_URI -> neo4j_uri (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("SCOREGRAPH_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "scoregraph_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects configurations the engine must not start with. Store
// settings are checked here so a misconfigured process fails before any dial.
func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.QueryTimeoutMS <= 0 {
		return fmt.Errorf("%w: query_timeout_ms must be positive", ErrInvalidConfig)
	}
	if c.TopLimit <= 0 {
		return fmt.Errorf("%w: top_limit must be positive", ErrInvalidConfig)
	}
	if c.TeamFanout <= 0 {
		return fmt.Errorf("%w: team_fanout must be positive", ErrInvalidConfig)
	}
	var missing []string
	if c.Neo4jURI == "" {
		missing = append(missing, "neo4j_uri")
	}
	if c.Neo4jUsername == "" {
		missing = append(missing, "neo4j_username")
	}
	if c.Neo4jPassword == "" {
		missing = append(missing, "neo4j_password")
	}
	if c.Neo4jDatabase == "" {
		missing = append(missing, "neo4j_database")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingStoreConfig, strings.Join(missing, ", "))
	}
	return nil
}
