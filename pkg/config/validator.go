package config

import "fmt"

// validate rejects a Config that would produce nonsensical runtime
// behavior: non-positive batch/concurrency settings, and duplicate or
// incomplete pattern rule codes.
func validate(cfg *Config) error {
	if cfg.Queue.BatchSize <= 0 {
		return NewValidationError("queue", "default", "batch_size", fmt.Errorf("must be positive, got %d", cfg.Queue.BatchSize))
	}
	if cfg.Queue.MaxConcurrency <= 0 {
		return NewValidationError("queue", "default", "max_concurrency", fmt.Errorf("must be positive, got %d", cfg.Queue.MaxConcurrency))
	}
	if cfg.Queue.WaitTime <= 0 {
		return NewValidationError("queue", "default", "wait_time", fmt.Errorf("must be positive, got %s", cfg.Queue.WaitTime))
	}

	if cfg.Label.MaxLength <= 0 {
		return NewValidationError("label", "default", "max_length", fmt.Errorf("must be positive, got %d", cfg.Label.MaxLength))
	}

	if cfg.Context.PagesInSummaryLimit < 0 {
		return NewValidationError("context", "default", "pages_in_summary_limit", fmt.Errorf("cannot be negative, got %d", cfg.Context.PagesInSummaryLimit))
	}

	seen := make(map[string]struct{}, len(cfg.PatternRules))
	for _, rule := range cfg.PatternRules {
		if rule.Code == "" {
			return NewValidationError("pattern_rule", "", "code", fmt.Errorf("rule code cannot be empty"))
		}
		if _, dup := seen[rule.Code]; dup {
			return NewValidationError("pattern_rule", rule.Code, "code", fmt.Errorf("duplicate pattern rule code"))
		}
		seen[rule.Code] = struct{}{}
	}

	return nil
}
