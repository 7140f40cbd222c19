package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kodiak-labs/sessioncontext/pkg/contextdata"
	"github.com/kodiak-labs/sessioncontext/pkg/eventparse"
	"github.com/kodiak-labs/sessioncontext/pkg/models"
	"github.com/kodiak-labs/sessioncontext/pkg/semantic"
)

// EnrichmentService turns one raw event into a durable enriched event,
// reconciling its session as a side effect. One call to ProcessEvent is the
// Go analogue of the pipeline's per-event transaction: parse, classify,
// label, persist, update session counters, all-or-nothing.
type EnrichmentService struct {
	sessions     *SessionService
	labelBuilder *semantic.LabelBuilder
	excludedKeys []string
}

// NewEnrichmentService constructs an EnrichmentService. A nil excludedKeys
// falls back to contextdata.DefaultExcludedKeys.
func NewEnrichmentService(sessions *SessionService, labelBuilder *semantic.LabelBuilder, excludedKeys []string) *EnrichmentService {
	return &EnrichmentService{sessions: sessions, labelBuilder: labelBuilder, excludedKeys: excludedKeys}
}

// ProcessEvent enriches raw within tx: reconciles the event's session,
// builds the enriched_event row, persists it, and advances the session's
// counters. The caller owns the transaction's lifetime (begin/commit/rollback)
// and is responsible for updating the raw_event's terminal status afterward.
//
// A raw event with no properties.$session_id fails with ErrMissingSession
// before any session or enriched row is touched — the caller marks the raw
// row FAILED and does not retry.
func (s *EnrichmentService) ProcessEvent(ctx context.Context, tx pgx.Tx, raw models.RawEvent) (models.EnrichedEvent, error) {
	sessionID, ok := raw.Properties["$session_id"].(string)
	if !ok || sessionID == "" {
		return models.EnrichedEvent{}, fmt.Errorf("raw_event %s: %w", raw.ID, ErrMissingSession)
	}

	var elementsChain string
	if raw.ElementsChain != nil {
		elementsChain = *raw.ElementsChain
	}
	element := eventparse.ParseElementsChain(elementsChain)
	classification := eventparse.ClassifyEvent(raw.EventName, raw.Properties)
	pageInfo := eventparse.ExtractPageInfo(raw.Properties)
	label := s.labelBuilder.Build(classification, pageInfo, element, raw.EventName, raw.Properties)
	contextBlob := contextdata.Assemble(raw.EventName, raw.Properties, element, s.excludedKeys)

	session, err := s.sessions.GetOrCreateSession(ctx, tx, sessionID, raw.DistinctID, raw.Timestamp, pageInfo.PagePath)
	if err != nil {
		return models.EnrichedEvent{}, err
	}

	enriched := models.EnrichedEvent{
		ID:             uuid.New(),
		RawEventID:     raw.ID,
		SessionID:      session.ID,
		DistinctID:     raw.DistinctID,
		SequenceNumber: session.EventCount + 1,
		EventName:      raw.EventName,
		EventType:      classification.EventType,
		ActionType:     classification.ActionType,
		SemanticLabel:  label,
		PagePath:       pageInfo.PagePath,
		PageTitle:      pageInfo.PageTitle,
		Context:        contextBlob,
		Timestamp:      raw.Timestamp,
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO enriched_event (
			id, raw_event_id, session_id, distinct_id, sequence_number,
			event_name, event_type, action_type, semantic_label,
			page_path, page_title, context, timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		enriched.ID, enriched.RawEventID, enriched.SessionID, enriched.DistinctID, enriched.SequenceNumber,
		enriched.EventName, enriched.EventType, enriched.ActionType, enriched.SemanticLabel,
		enriched.PagePath, enriched.PageTitle, enriched.Context, enriched.Timestamp,
	)
	if err != nil {
		return models.EnrichedEvent{}, fmt.Errorf("persisting enriched event for raw_event %s: %w", raw.ID, err)
	}

	isPageview := classification.EventType == models.EventTypePageview
	isClick := classification.EventType == models.EventTypeClick
	if err := s.sessions.RecordActivity(ctx, tx, session.ID, isPageview, isClick, pageInfo.PagePath, raw.Timestamp); err != nil {
		return models.EnrichedEvent{}, err
	}

	return enriched, nil
}
