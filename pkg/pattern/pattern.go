// Package pattern implements the behavioral pattern engine: a catalogue of
// declarative rules evaluated against a session's enriched events.
package pattern

import (
	"strings"
	"time"

	"github.com/kodiak-labs/sessioncontext/pkg/models"
)

// SessionSummary is the session-level metadata a SessionFilter evaluates
// against. Duration is nil for a still-active session (no ended_at yet) —
// pattern rules that bound duration always fail to match an active session,
// by design: an open-ended session has no settled duration to compare.
type SessionSummary struct {
	EventCount    int
	PageViewCount int
	Duration      *time.Duration
}

// NewSessionSummary derives a SessionSummary from a reconciled session.
func NewSessionSummary(s models.Session) SessionSummary {
	summary := SessionSummary{
		EventCount:    s.EventCount,
		PageViewCount: s.PageViewCount,
	}
	if !s.IsActive() {
		d := s.Duration()
		summary.Duration = &d
	}
	return summary
}

// EventFilter is a conjunctive predicate over enriched events: every
// non-nil field must hold for an event to pass.
type EventFilter struct {
	EventType        *models.EventType
	ActionType       *models.ActionType
	PagePathPrefix   *string
	PagePathEquals   *string
	SemanticContains *string
}

// Apply returns the subset of events that satisfy every condition set on f.
func (f EventFilter) Apply(events []models.EnrichedEvent) []models.EnrichedEvent {
	result := events
	if f.EventType != nil {
		result = filterEvents(result, func(e models.EnrichedEvent) bool { return e.EventType == *f.EventType })
	}
	if f.ActionType != nil {
		result = filterEvents(result, func(e models.EnrichedEvent) bool { return e.ActionType == *f.ActionType })
	}
	if f.PagePathPrefix != nil {
		result = filterEvents(result, func(e models.EnrichedEvent) bool {
			return strings.HasPrefix(e.PagePath, *f.PagePathPrefix)
		})
	}
	if f.PagePathEquals != nil {
		result = filterEvents(result, func(e models.EnrichedEvent) bool { return e.PagePath == *f.PagePathEquals })
	}
	if f.SemanticContains != nil {
		needle := strings.ToLower(*f.SemanticContains)
		result = filterEvents(result, func(e models.EnrichedEvent) bool {
			return strings.Contains(strings.ToLower(e.SemanticLabel), needle)
		})
	}
	return result
}

func filterEvents(events []models.EnrichedEvent, keep func(models.EnrichedEvent) bool) []models.EnrichedEvent {
	result := make([]models.EnrichedEvent, 0, len(events))
	for _, e := range events {
		if keep(e) {
			result = append(result, e)
		}
	}
	return result
}

// SessionFilter bounds a session's aggregate shape. A zero-valued bound
// (0 count or 0 duration) is treated as "not enforced" — mirroring the
// "explicit bound vs. absent value" distinction the rule author intends.
type SessionFilter struct {
	MinDuration   time.Duration // 0 = unbounded
	MaxDuration   time.Duration // 0 = unbounded
	MinEvents     int           // 0 = unbounded
	MaxEvents     int           // 0 = unbounded
	MinPageViews  int           // 0 = unbounded
	MaxPageViews  int           // 0 = unbounded
}

// Matches reports whether session satisfies every bound set on f.
//
// A bound compared against an active session's nil Duration always fails:
// MinDuration treats a nil duration as zero (0 < min, unless min is also
// zero), and MaxDuration treats it as unbounded (always exceeds max). An
// in-progress session therefore never matches a duration-bound rule.
func (f SessionFilter) Matches(session SessionSummary) bool {
	if f.MinDuration > 0 {
		d := time.Duration(0)
		if session.Duration != nil {
			d = *session.Duration
		}
		if d < f.MinDuration {
			return false
		}
	}
	if f.MaxDuration > 0 {
		if session.Duration == nil {
			return false
		}
		if *session.Duration > f.MaxDuration {
			return false
		}
	}
	if f.MinEvents > 0 && session.EventCount < f.MinEvents {
		return false
	}
	if f.MaxEvents > 0 && session.EventCount > f.MaxEvents {
		return false
	}
	if f.MinPageViews > 0 && session.PageViewCount < f.MinPageViews {
		return false
	}
	if f.MaxPageViews > 0 && session.PageViewCount > f.MaxPageViews {
		return false
	}
	return true
}

// PatternRule is one declarative behavioral-pattern definition.
type PatternRule struct {
	Code        string
	Description string
	Severity    models.Severity

	Filter              *EventFilter
	MinCount            int // defaults to 1 when zero
	NegativeFilter      *EventFilter
	NegativeTimeWindow  *time.Duration
	TimeWindow          *time.Duration

	SessionFilter *SessionFilter
}

// Matches checks whether the rule fires for the given events and session.
func (r PatternRule) Matches(events []models.EnrichedEvent, session SessionSummary) bool {
	if r.SessionFilter != nil && !r.SessionFilter.Matches(session) {
		return false
	}
	if r.Filter == nil {
		return true
	}

	sorted := make([]models.EnrichedEvent, len(events))
	copy(sorted, events)
	sortBySequence(sorted)

	positives := r.Filter.Apply(sorted)

	if r.TimeWindow != nil {
		positives = clusterByTimeWindow(positives, *r.TimeWindow)
	}

	minCount := r.MinCount
	if minCount == 0 {
		minCount = 1
	}
	if len(positives) < minCount {
		return false
	}

	if r.NegativeFilter == nil {
		return true
	}

	negatives := r.NegativeFilter.Apply(sorted)

	if r.NegativeTimeWindow == nil {
		return len(negatives) == 0
	}

	lastPositiveAt := positives[len(positives)-1].Timestamp
	windowEnd := lastPositiveAt.Add(*r.NegativeTimeWindow)
	for _, e := range negatives {
		if !e.Timestamp.Before(lastPositiveAt) && !e.Timestamp.After(windowEnd) {
			return false
		}
	}
	return true
}

func sortBySequence(events []models.EnrichedEvent) {
	// Small slices (one session's worth of events); insertion sort keeps this
	// dependency-free and stable.
	for i := 1; i < len(events); i++ {
		for j := i; j > 0 && events[j].SequenceNumber < events[j-1].SequenceNumber; j-- {
			events[j], events[j-1] = events[j-1], events[j]
		}
	}
}

// clusterByTimeWindow keeps events that fall within window of some event
// already accepted into the result, checking each candidate against a fixed
// snapshot of the result taken before considering it — so an event included
// because it is close to one prior event cannot then be matched again
// against itself.
func clusterByTimeWindow(events []models.EnrichedEvent, window time.Duration) []models.EnrichedEvent {
	if len(events) == 0 {
		return events
	}

	result := []models.EnrichedEvent{events[0]}
	for _, event := range events[1:] {
		snapshot := result
		for _, prev := range snapshot {
			if absDuration(event.Timestamp.Sub(prev.Timestamp)) <= window {
				result = append(result, event)
				break
			}
		}
	}
	return result
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// Engine evaluates a fixed rule set against a session's events.
type Engine struct {
	rules []PatternRule
}

// NewEngine constructs an Engine over rules, supplied once at construction
// time — the rule set is not mutated after the engine is built.
func NewEngine(rules []PatternRule) *Engine {
	return &Engine{rules: rules}
}

// Detect returns every pattern whose rule matches, in rule order.
func (e *Engine) Detect(events []models.EnrichedEvent, session SessionSummary) []models.Pattern {
	var patterns []models.Pattern
	for _, rule := range e.rules {
		if rule.Matches(events, session) {
			patterns = append(patterns, models.Pattern{
				Code:        rule.Code,
				Description: rule.Description,
				Severity:    rule.Severity,
			})
		}
	}
	return patterns
}
