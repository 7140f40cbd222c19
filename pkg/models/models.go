// Package models defines the persisted and in-memory domain types shared
// across the enrichment pipeline, pattern engine, and context service.
package models

import (
	"time"

	"github.com/google/uuid"
)

// RawEventStatus tracks a raw_event row through the ingestion queue.
type RawEventStatus string

const (
	RawEventStatusPending RawEventStatus = "PENDING"
	RawEventStatusDone    RawEventStatus = "DONE"
	RawEventStatusFailed  RawEventStatus = "FAILED"
)

// IsValid reports whether s is one of the known raw event statuses.
func (s RawEventStatus) IsValid() bool {
	switch s {
	case RawEventStatusPending, RawEventStatusDone, RawEventStatusFailed:
		return true
	default:
		return false
	}
}

// EventType is the high-level category assigned by the classifier (C2).
type EventType string

const (
	EventTypePageview   EventType = "pageview"
	EventTypeClick      EventType = "click"
	EventTypeNavigation EventType = "navigation"
	EventTypeCustom     EventType = "custom"
	EventTypeUnknown    EventType = "unknown"
)

// ActionType is the specific user action assigned by the classifier (C2).
type ActionType string

const (
	ActionTypeView      ActionType = "view"
	ActionTypeLeave     ActionType = "leave"
	ActionTypeClick     ActionType = "click"
	ActionTypeRageClick ActionType = "rage_click"
	ActionTypeSubmit    ActionType = "submit"
	ActionTypeChange    ActionType = "change"
	ActionTypeNavigate  ActionType = "navigate"
	ActionTypeUnknown   ActionType = "unknown"
)

// Severity ranks a detected pattern by how much it matters downstream.
type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// IsValid reports whether sev is one of the known severities.
func (sev Severity) IsValid() bool {
	switch sev {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	default:
		return false
	}
}

// RawEvent is one inbound PostHog-shaped event, queued for enrichment.
type RawEvent struct {
	ID            uuid.UUID
	DistinctID    string
	EventName     string
	Properties    map[string]any
	ElementsChain *string
	Timestamp     time.Time
	Status        RawEventStatus
	ProcessedAt   *time.Time
	Attempts      int
	LastError     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AttributePair is one custom element attribute captured by the tracker,
// kept in the order it was encountered in the elements chain — enrichment
// rule matching depends on that order, not just on presence.
type AttributePair struct {
	Name  string
	Value string
}

// ParsedElements is the structured result of parsing a PostHog elements_chain (C1).
type ParsedElements struct {
	ElementType string
	ElementText string
	Attributes  []AttributePair
	Hierarchy   []string
}

// EventClassification is the result of classifying a raw event (C2).
type EventClassification struct {
	EventType  EventType
	ActionType ActionType
}

// PageInfo is the page path/title pair extracted from event properties (C2).
type PageInfo struct {
	PagePath  string
	PageTitle string
}

// EnrichedEvent is the durable, queryable representation of a processed event.
type EnrichedEvent struct {
	ID             uuid.UUID
	RawEventID     uuid.UUID
	SessionID      string
	DistinctID     string
	SequenceNumber int
	EventName      string
	EventType      EventType
	ActionType     ActionType
	SemanticLabel  string
	PagePath       string
	PageTitle      string
	Context        map[string]any
	Timestamp      time.Time
	CreatedAt      time.Time
}

// Session is a reconciled burst of activity for one tracker-assigned
// $session_id (C5). Its identity is the tracker's session id, not the
// user: one distinct_id accumulates many sessions over time.
type Session struct {
	ID             string
	DistinctID     string
	StartedAt      time.Time
	LastActivityAt time.Time
	EndedAt        *time.Time
	EventCount     int
	PageViewCount  int
	ClicksCount    int
	FirstPage      *string
	LastPage       *string
	SessionSummary *string
}

// Duration returns the session's elapsed time, using the session's last
// known activity if it has not been explicitly closed.
func (s Session) Duration() time.Duration {
	end := s.LastActivityAt
	if s.EndedAt != nil {
		end = *s.EndedAt
	}
	return end.Sub(s.StartedAt)
}

// IsActive reports whether the session has not been closed.
func (s Session) IsActive() bool {
	return s.EndedAt == nil
}

// Pattern is one detected behavioral pattern within a session (C8).
type Pattern struct {
	Code        string
	Description string
	Severity    Severity
	MatchedAt   time.Time
}

// UserContext is the payload returned by the context service (C9).
type UserContext struct {
	DistinctID   string
	HasSession   bool
	Session      *Session
	RecentEvents []EnrichedEvent
	Summary      string
	Patterns     []Pattern
}
