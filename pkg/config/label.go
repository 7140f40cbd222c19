package config

import "github.com/kodiak-labs/sessioncontext/pkg/semantic"

// LabelConfig tunes the semantic label builder.
type LabelConfig struct {
	MaxLength              int               `yaml:"max_length"`
	CustomEventTemplates   map[string]string `yaml:"custom_event_templates"`
	ElementEnrichmentRules map[string]string `yaml:"element_enrichment_rules"`
}

// DefaultLabelConfig returns the built-in label settings.
func DefaultLabelConfig() LabelConfig {
	return LabelConfig{
		MaxLength:              semantic.DefaultMaxLength,
		CustomEventTemplates:   semantic.DefaultCustomEventTemplates,
		ElementEnrichmentRules: semantic.DefaultElementEnrichmentRules,
	}
}

// ContextConfig tunes the context assembler and session summary generator.
type ContextConfig struct {
	ExcludedKeys        []string `yaml:"excluded_keys"`
	PagesInSummaryLimit int      `yaml:"pages_in_summary_limit"`
}

// DefaultContextConfig returns the built-in context settings.
func DefaultContextConfig() ContextConfig {
	return ContextConfig{
		ExcludedKeys:        []string{"token", "distinct_id"},
		PagesInSummaryLimit: 3,
	}
}
