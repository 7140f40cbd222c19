package config

import (
	"fmt"
	"time"

	"github.com/kodiak-labs/sessioncontext/pkg/models"
	"github.com/kodiak-labs/sessioncontext/pkg/pattern"
)

// EventFilterConfig is the YAML shape of a pattern.EventFilter.
type EventFilterConfig struct {
	EventType        string `yaml:"event_type"`
	ActionType       string `yaml:"action_type"`
	PagePathPrefix   string `yaml:"page_path_prefix"`
	PagePathEquals   string `yaml:"page_path_equals"`
	SemanticContains string `yaml:"semantic_contains"`
}

func (c *EventFilterConfig) toFilter() *pattern.EventFilter {
	if c == nil {
		return nil
	}
	f := &pattern.EventFilter{}
	if c.EventType != "" {
		t := models.EventType(c.EventType)
		f.EventType = &t
	}
	if c.ActionType != "" {
		t := models.ActionType(c.ActionType)
		f.ActionType = &t
	}
	if c.PagePathPrefix != "" {
		f.PagePathPrefix = &c.PagePathPrefix
	}
	if c.PagePathEquals != "" {
		f.PagePathEquals = &c.PagePathEquals
	}
	if c.SemanticContains != "" {
		f.SemanticContains = &c.SemanticContains
	}
	return f
}

// SessionFilterConfig is the YAML shape of a pattern.SessionFilter.
type SessionFilterConfig struct {
	MinDuration  time.Duration `yaml:"min_duration"`
	MaxDuration  time.Duration `yaml:"max_duration"`
	MinEvents    int           `yaml:"min_events"`
	MaxEvents    int           `yaml:"max_events"`
	MinPageViews int           `yaml:"min_page_views"`
	MaxPageViews int           `yaml:"max_page_views"`
}

func (c *SessionFilterConfig) toFilter() *pattern.SessionFilter {
	if c == nil {
		return nil
	}
	return &pattern.SessionFilter{
		MinDuration:  c.MinDuration,
		MaxDuration:  c.MaxDuration,
		MinEvents:    c.MinEvents,
		MaxEvents:    c.MaxEvents,
		MinPageViews: c.MinPageViews,
		MaxPageViews: c.MaxPageViews,
	}
}

// PatternRuleConfig is the YAML-authorable shape of one behavioral pattern
// rule, converted to a pattern.PatternRule at load time.
type PatternRuleConfig struct {
	Code        string `yaml:"code"`
	Description string `yaml:"description"`
	Severity    string `yaml:"severity"`

	Filter             *EventFilterConfig `yaml:"filter"`
	MinCount           int                `yaml:"min_count"`
	NegativeFilter     *EventFilterConfig `yaml:"negative_filter"`
	NegativeTimeWindow time.Duration      `yaml:"negative_time_window"`
	TimeWindow         time.Duration      `yaml:"time_window"`

	SessionFilter *SessionFilterConfig `yaml:"session_filter"`
}

// ToPatternRule converts c into a pattern.PatternRule, rejecting an unknown
// severity.
func (c PatternRuleConfig) ToPatternRule() (pattern.PatternRule, error) {
	if c.Code == "" {
		return pattern.PatternRule{}, fmt.Errorf("pattern rule missing code")
	}
	severity := models.Severity(c.Severity)
	if !severity.IsValid() {
		return pattern.PatternRule{}, fmt.Errorf("pattern rule %q: invalid severity %q", c.Code, c.Severity)
	}

	rule := pattern.PatternRule{
		Code:           c.Code,
		Description:    c.Description,
		Severity:       severity,
		Filter:         c.Filter.toFilter(),
		MinCount:       c.MinCount,
		NegativeFilter: c.NegativeFilter.toFilter(),
		SessionFilter:  c.SessionFilter.toFilter(),
	}
	if c.TimeWindow > 0 {
		rule.TimeWindow = &c.TimeWindow
	}
	if c.NegativeTimeWindow > 0 {
		rule.NegativeTimeWindow = &c.NegativeTimeWindow
	}
	return rule, nil
}

// ToPatternRules converts a list of PatternRuleConfig to pattern.PatternRule,
// failing on the first invalid entry.
func ToPatternRules(configs []PatternRuleConfig) ([]pattern.PatternRule, error) {
	rules := make([]pattern.PatternRule, 0, len(configs))
	for _, c := range configs {
		rule, err := c.ToPatternRule()
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}
