// Package smoketest drives a running engine through every supported intent
// and verifies the answer envelopes.
package smoketest

import "time"

// Default configuration constants.
const (
	DefaultBaseURL = "http://localhost:9080"
	DefaultTimeout = 10 * time.Second
)

// Config controls one smoke run.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// Topics and grade the seeded graph is expected to hold.
	TopicA  string
	TopicB  string
	Grade   string
	Verbose bool
}

// Normalize fills unset fields with defaults.
func (c *Config) Normalize() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.TopicA == "" {
		c.TopicA = "Light"
	}
	if c.TopicB == "" {
		c.TopicB = "Human Body"
	}
	if c.Grade == "" {
		c.Grade = "6"
	}
}
