package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/kodiak-labs/sessioncontext/pkg/pattern"
)

// yamlConfig is the top-level shape of sessioncontext.yaml. Every section is
// optional; an absent section falls back to its built-in default.
type yamlConfig struct {
	Queue        *QueueConfig        `yaml:"queue"`
	Label        *LabelConfig        `yaml:"label"`
	Context      *ContextConfig      `yaml:"context"`
	PatternRules []PatternRuleConfig `yaml:"pattern_rules"`
}

// Initialize loads, merges, and validates the configuration rooted at
// configDir/sessioncontext.yaml, logging a summary on success.
func Initialize(ctx context.Context, configDir string) (*Config, error) {
	cfg, err := load(configDir)
	if err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "configuration loaded", "config_dir", configDir, "stats", cfg.Stats())
	return cfg, nil
}

func load(configDir string) (*Config, error) {
	loader := &configLoader{dir: configDir}

	var raw yamlConfig
	if err := loader.loadYAML("sessioncontext.yaml", &raw); err != nil {
		return nil, err
	}

	queue := BuiltinQueueConfig()
	if raw.Queue != nil {
		if err := mergo.Merge(&queue, *raw.Queue, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merging queue config: %w", err)
		}
	}

	label := resolveLabelConfig(raw.Label)
	contextCfg := resolveContextConfig(raw.Context)

	var rules []pattern.PatternRule
	if len(raw.PatternRules) > 0 {
		converted, err := ToPatternRules(raw.PatternRules)
		if err != nil {
			return nil, NewLoadError("sessioncontext.yaml", err)
		}
		rules = converted
	} else {
		rules = pattern.BuiltinRules()
	}

	return &Config{
		configDir:    configDir,
		Queue:        queue,
		Label:        label,
		Context:      contextCfg,
		PatternRules: rules,
	}, nil
}

func resolveLabelConfig(sys *LabelConfig) LabelConfig {
	resolved := BuiltinLabelConfig()
	if sys == nil {
		return resolved
	}
	if sys.MaxLength > 0 {
		resolved.MaxLength = sys.MaxLength
	}
	if sys.CustomEventTemplates != nil {
		resolved.CustomEventTemplates = sys.CustomEventTemplates
	}
	if sys.ElementEnrichmentRules != nil {
		resolved.ElementEnrichmentRules = sys.ElementEnrichmentRules
	}
	return resolved
}

func resolveContextConfig(sys *ContextConfig) ContextConfig {
	resolved := BuiltinContextConfig()
	if sys == nil {
		return resolved
	}
	if sys.ExcludedKeys != nil {
		resolved.ExcludedKeys = sys.ExcludedKeys
	}
	if sys.PagesInSummaryLimit > 0 {
		resolved.PagesInSummaryLimit = sys.PagesInSummaryLimit
	}
	return resolved
}

// configLoader reads and unmarshals YAML files from a single config
// directory, applying environment variable expansion first.
type configLoader struct {
	dir string
}

func (l *configLoader) loadYAML(filename string, target any) error {
	path := filepath.Join(l.dir, filename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Every section is optional, so a missing file just means
			// "use every built-in default" rather than a load failure.
			return nil
		}
		return NewLoadError(filename, err)
	}

	data = ExpandEnv(data)
	if err := yaml.Unmarshal(data, target); err != nil {
		return NewLoadError(filename, fmt.Errorf("%w: %v", ErrInvalidYAML, err))
	}
	return nil
}
