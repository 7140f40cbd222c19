package pattern

import (
	"testing"
	"time"

	"github.com/kodiak-labs/sessioncontext/pkg/models"
)

func mustPtr[T any](v T) *T { return &v }

func TestEventFilter_SemanticContainsIsCaseInsensitive(t *testing.T) {
	events := []models.EnrichedEvent{
		{SemanticLabel: "Started Checkout"},
		{SemanticLabel: "Viewed home page"},
	}
	f := EventFilter{SemanticContains: mustPtr("checkout")}
	got := f.Apply(events)
	if len(got) != 1 || got[0].SemanticLabel != "Started Checkout" {
		t.Errorf("got %+v", got)
	}
}

func TestSessionFilter_ActiveSessionNeverMatchesDurationBound(t *testing.T) {
	active := SessionSummary{EventCount: 5, PageViewCount: 2, Duration: nil}

	minFilter := SessionFilter{MinDuration: time.Minute}
	if minFilter.Matches(active) {
		t.Error("active session should not match a min-duration bound")
	}

	maxFilter := SessionFilter{MaxDuration: time.Hour}
	if maxFilter.Matches(active) {
		t.Error("active session should not match a max-duration bound")
	}
}

func TestSessionFilter_ZeroBoundIsUnenforced(t *testing.T) {
	f := SessionFilter{}
	if !f.Matches(SessionSummary{}) {
		t.Error("empty filter should match any session")
	}
}

func TestPatternRule_NegativeTimeWindowPass(t *testing.T) {
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []models.EnrichedEvent{
		{SequenceNumber: 1, Timestamp: base, SemanticLabel: "Started checkout"},
		{SequenceNumber: 2, Timestamp: base.Add(40 * time.Minute), SemanticLabel: "Order completed"},
	}
	rule := PatternRule{
		Code:               "checkout_abandoned",
		Filter:             &EventFilter{SemanticContains: mustPtr("checkout")},
		MinCount:           1,
		NegativeFilter:     &EventFilter{SemanticContains: mustPtr("completed")},
		NegativeTimeWindow: mustPtr(30 * time.Minute),
	}
	if !rule.Matches(events, SessionSummary{}) {
		t.Error("expected match: completion fell outside the 30-minute window")
	}
}

func TestPatternRule_NegativeTimeWindowBlock(t *testing.T) {
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []models.EnrichedEvent{
		{SequenceNumber: 1, Timestamp: base, SemanticLabel: "Started checkout"},
		{SequenceNumber: 2, Timestamp: base.Add(40 * time.Minute), SemanticLabel: "Order completed"},
	}
	rule := PatternRule{
		Code:               "checkout_abandoned",
		Filter:             &EventFilter{SemanticContains: mustPtr("checkout")},
		MinCount:           1,
		NegativeFilter:     &EventFilter{SemanticContains: mustPtr("completed")},
		NegativeTimeWindow: mustPtr(45 * time.Minute),
	}
	if rule.Matches(events, SessionSummary{}) {
		t.Error("expected no match: completion fell inside the 45-minute window")
	}
}

func TestPatternRule_TimeWindowClusteringIsOnceOnly(t *testing.T) {
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []models.EnrichedEvent{
		{SequenceNumber: 1, Timestamp: base, EventType: models.EventTypeClick},
		{SequenceNumber: 2, Timestamp: base.Add(10 * time.Second), EventType: models.EventTypeClick},
		{SequenceNumber: 3, Timestamp: base.Add(20 * time.Second), EventType: models.EventTypeClick},
	}
	clustered := clusterByTimeWindow(events, 15*time.Second)
	if len(clustered) != 3 {
		t.Fatalf("expected each event counted exactly once, got %d entries", len(clustered))
	}
}

func TestPatternRule_NoFilterReliesOnSessionFilterOnly(t *testing.T) {
	rule := PatternRule{
		Code:          "power_user_session",
		SessionFilter: &SessionFilter{MinEvents: 20},
	}
	if rule.Matches(nil, SessionSummary{EventCount: 25}) != true {
		t.Error("expected match on session-only rule")
	}
	if rule.Matches(nil, SessionSummary{EventCount: 5}) != false {
		t.Error("expected no match on session-only rule")
	}
}

func TestEngine_DetectReturnsMatchesInRuleOrder(t *testing.T) {
	rules := []PatternRule{
		{Code: "pageview_pattern", Filter: &EventFilter{EventType: mustPtr(models.EventTypePageview)}, MinCount: 1},
		{Code: "rage_click_pattern", Filter: &EventFilter{ActionType: mustPtr(models.ActionTypeRageClick)}, MinCount: 1},
		{Code: "impossible_pattern", Filter: &EventFilter{EventType: mustPtr(models.EventTypeNavigation)}, MinCount: 10},
	}
	events := []models.EnrichedEvent{
		{SequenceNumber: 1, EventType: models.EventTypePageview},
		{SequenceNumber: 2, EventType: models.EventTypeClick, ActionType: models.ActionTypeRageClick},
	}
	engine := NewEngine(rules)
	got := engine.Detect(events, SessionSummary{})
	if len(got) != 2 || got[0].Code != "pageview_pattern" || got[1].Code != "rage_click_pattern" {
		t.Errorf("got %+v", got)
	}
}
