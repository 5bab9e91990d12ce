package config

import (
	"fmt"
)

// LoggingConfig defines settings for the run result log (core/resultlog).
type LoggingConfig struct {
	// Backend selects the result store type. Only "jsonl" is implemented.
	Backend string `json:"backend"`
	// Path is the file location of the result log.
	Path string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" {
		c.Path = "runs.jsonl"
	}
}

// Validate checks mandatory fields.
func (c LoggingConfig) Validate() error {
	if c.Backend != "jsonl" {
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
	if c.Path == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}
