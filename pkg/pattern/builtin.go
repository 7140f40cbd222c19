package pattern

import (
	"time"

	"github.com/kodiak-labs/sessioncontext/pkg/models"
)

func str(s string) *string { return &s }
func dur(d time.Duration) *time.Duration { return &d }
func evt(t models.EventType) *models.EventType { return &t }
func act(t models.ActionType) *models.ActionType { return &t }

// BuiltinRules returns the default pattern catalogue. It is replaced
// wholesale, not merged, when a deployment supplies its own `pattern_rules`
// in YAML — the rule set is fixed at construction time.
func BuiltinRules() []PatternRule {
	return []PatternRule{
		{
			Code:               "checkout_abandoned",
			Description:        "Started checkout without completing",
			Severity:           models.SeverityHigh,
			Filter:             &EventFilter{SemanticContains: str("checkout")},
			MinCount:           1,
			NegativeFilter:     &EventFilter{SemanticContains: str("completed")},
			NegativeTimeWindow: dur(30 * time.Minute),
		},
		{
			Code:        "payment_failure_frustration",
			Description: "Rage-clicked on a billing page",
			Severity:    models.SeverityHigh,
			Filter: &EventFilter{
				ActionType:     act(models.ActionTypeRageClick),
				PagePathPrefix: str("/billing"),
			},
			MinCount: 1,
		},
		{
			Code:               "signup_abandonment",
			Description:        "Started signup without completing",
			Severity:           models.SeverityHigh,
			Filter:             &EventFilter{SemanticContains: str("sign up")},
			MinCount:           1,
			NegativeFilter:     &EventFilter{SemanticContains: str("sign up completed")},
			NegativeTimeWindow: dur(20 * time.Minute),
		},
		{
			Code:         "billing_hesitation",
			Description:  "Revisited billing pages repeatedly without upgrading",
			Severity:     models.SeverityMedium,
			Filter:       &EventFilter{PagePathPrefix: str("/billing")},
			MinCount:     3,
			TimeWindow:   dur(10 * time.Minute),
		},
		{
			Code:        "form_struggle",
			Description: "Repeated form field changes without submitting",
			Severity:    models.SeverityMedium,
			Filter: &EventFilter{
				EventType:  evt(models.EventTypeClick),
				ActionType: act(models.ActionTypeChange),
			},
			MinCount:           4,
			TimeWindow:         dur(5 * time.Minute),
			NegativeFilter:     &EventFilter{ActionType: act(models.ActionTypeSubmit)},
			NegativeTimeWindow: dur(5 * time.Minute),
		},
		{
			Code:        "price_comparison_loop",
			Description: "Bounced between pricing and product pages repeatedly",
			Severity:    models.SeverityMedium,
			Filter:      &EventFilter{PagePathPrefix: str("/pricing")},
			MinCount:    3,
			TimeWindow:  dur(15 * time.Minute),
		},
		{
			Code:          "quick_bounce",
			Description:   "Left within seconds of arriving with minimal engagement",
			Severity:      models.SeverityLow,
			SessionFilter: &SessionFilter{MaxDuration: 15 * time.Second, MaxEvents: 2},
		},
		{
			Code:          "power_user_session",
			Description:   "Long, highly active session",
			Severity:      models.SeverityLow,
			SessionFilter: &SessionFilter{MinDuration: 20 * time.Minute, MinEvents: 40},
		},
		{
			Code:        "feature_exploration",
			Description: "Explored many distinct custom-tracked features",
			Severity:    models.SeverityLow,
			Filter:      &EventFilter{EventType: evt(models.EventTypeCustom)},
			MinCount:    5,
		},
		{
			Code:        "product_comparison",
			Description: "Viewed multiple product pages back to back",
			Severity:    models.SeverityLow,
			Filter:      &EventFilter{PagePathPrefix: str("/products")},
			MinCount:    3,
			TimeWindow:  dur(10 * time.Minute),
		},
	}
}
