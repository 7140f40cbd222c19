package config

import (
	"testing"
	"time"

	"github.com/kodiak-labs/sessioncontext/pkg/models"
)

func TestPatternRuleConfig_ToPatternRule(t *testing.T) {
	cfg := PatternRuleConfig{
		Code:        "checkout_abandoned",
		Description: "Started checkout without completing",
		Severity:    "HIGH",
		Filter:      &EventFilterConfig{SemanticContains: "checkout"},
		MinCount:    1,
		NegativeFilter: &EventFilterConfig{
			SemanticContains: "completed",
		},
		NegativeTimeWindow: 30 * time.Minute,
	}

	rule, err := cfg.ToPatternRule()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rule.Code != "checkout_abandoned" {
		t.Errorf("got code %q", rule.Code)
	}
	if rule.Severity != models.SeverityHigh {
		t.Errorf("got severity %q", rule.Severity)
	}
	if rule.Filter == nil || rule.Filter.SemanticContains == nil || *rule.Filter.SemanticContains != "checkout" {
		t.Errorf("got filter %+v", rule.Filter)
	}
	if rule.NegativeTimeWindow == nil || *rule.NegativeTimeWindow != 30*time.Minute {
		t.Errorf("got negative time window %+v", rule.NegativeTimeWindow)
	}
}

func TestPatternRuleConfig_InvalidSeverity(t *testing.T) {
	cfg := PatternRuleConfig{Code: "x", Severity: "URGENT"}
	if _, err := cfg.ToPatternRule(); err == nil {
		t.Error("expected error for invalid severity")
	}
}

func TestPatternRuleConfig_MissingCode(t *testing.T) {
	cfg := PatternRuleConfig{Severity: "LOW"}
	if _, err := cfg.ToPatternRule(); err == nil {
		t.Error("expected error for missing code")
	}
}

func TestToPatternRules_PropagatesFirstError(t *testing.T) {
	configs := []PatternRuleConfig{
		{Code: "a", Severity: "LOW"},
		{Code: "b", Severity: "NOT_A_SEVERITY"},
	}
	if _, err := ToPatternRules(configs); err == nil {
		t.Error("expected error from second config")
	}
}
