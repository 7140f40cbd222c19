// Package config loads and validates sessioncontext's runtime configuration:
// a YAML file overlaid on built-in defaults, with environment variable
// expansion and database settings supplied separately via DB_* variables.
package config

import "github.com/kodiak-labs/sessioncontext/pkg/pattern"

// Config is the fully resolved, validated runtime configuration.
type Config struct {
	configDir string

	Queue        QueueConfig
	Label        LabelConfig
	Context      ContextConfig
	PatternRules []pattern.PatternRule
}

// ConfigDir returns the directory Config was loaded from.
func (c *Config) ConfigDir() string {
	return c.configDir
}

// Patterns builds a ready-to-use pattern engine from the loaded rule set.
func (c *Config) Patterns() *pattern.Engine {
	return pattern.NewEngine(c.PatternRules)
}

// Stats summarizes the loaded configuration for a startup log line.
func (c *Config) Stats() map[string]any {
	return map[string]any{
		"queue_batch_size":       c.Queue.BatchSize,
		"queue_max_concurrency":  c.Queue.MaxConcurrency,
		"label_max_length":       c.Label.MaxLength,
		"custom_event_templates": len(c.Label.CustomEventTemplates),
		"pattern_rules":          len(c.PatternRules),
	}
}
