package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kodiak-labs/sessioncontext/pkg/contextdata"
	"github.com/kodiak-labs/sessioncontext/pkg/models"
	"github.com/kodiak-labs/sessioncontext/pkg/pattern"
)

// RecentEventLimit caps how many of a user's most recent enriched events are
// returned alongside a UserContext, regardless of session size.
const RecentEventLimit = 20

// ContextService answers "what has this user been doing" by assembling a
// session's events into a summary and running the pattern engine over them.
type ContextService struct {
	pool                *pgxpool.Pool
	sessions            *SessionService
	engine              *pattern.Engine
	pagesInSummaryLimit int
}

// NewContextService constructs a ContextService. pagesInSummaryLimit <= 0
// falls back to contextdata.DefaultPagesInSummaryLimit.
func NewContextService(pool *pgxpool.Pool, sessions *SessionService, engine *pattern.Engine, pagesInSummaryLimit int) *ContextService {
	return &ContextService{pool: pool, sessions: sessions, engine: engine, pagesInSummaryLimit: pagesInSummaryLimit}
}

// GetUserContext builds the full context payload for distinctID. A user with
// no sessions yet gets a HasSession=false payload instead of an error — an
// unknown user is a normal, expected caller state for this endpoint.
func (c *ContextService) GetUserContext(ctx context.Context, distinctID string) (models.UserContext, error) {
	recent, err := c.fetchRecentEventsForUser(ctx, distinctID, RecentEventLimit)
	if err != nil {
		return models.UserContext{}, err
	}

	session, ok, err := c.sessions.LatestSession(ctx, distinctID)
	if err != nil {
		return models.UserContext{}, err
	}
	if !ok {
		return models.UserContext{DistinctID: distinctID, HasSession: false, RecentEvents: recent}, nil
	}

	sessionEvents, err := c.fetchSessionEvents(ctx, session.ID)
	if err != nil {
		return models.UserContext{}, err
	}

	summary := contextdata.GenerateSummary(sessionEvents, c.pagesInSummaryLimit)
	patterns := c.engine.Detect(sessionEvents, pattern.NewSessionSummary(session))

	sess := session
	return models.UserContext{
		DistinctID:   distinctID,
		HasSession:   true,
		Session:      &sess,
		RecentEvents: recent,
		Summary:      summary,
		Patterns:     patterns,
	}, nil
}

// fetchRecentEventsForUser returns distinctID's most recent enriched events
// across all of their sessions, newest first — independent of which session
// is currently open, per the context service's own top-level event feed.
func (c *ContextService) fetchRecentEventsForUser(ctx context.Context, distinctID string, limit int) ([]models.EnrichedEvent, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT id, raw_event_id, session_id, distinct_id, sequence_number,
		       event_name, event_type, action_type, semantic_label,
		       page_path, page_title, context, timestamp, created_at
		FROM enriched_event
		WHERE distinct_id = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`, distinctID, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching recent events for %q: %w", distinctID, err)
	}
	defer rows.Close()

	events, err := scanEnrichedEvents(rows)
	if err != nil {
		return nil, fmt.Errorf("scanning recent events for %q: %w", distinctID, err)
	}
	return events, nil
}

// fetchSessionEvents returns sessionID's enriched events in chronological
// (sequence_number) order.
func (c *ContextService) fetchSessionEvents(ctx context.Context, sessionID string) ([]models.EnrichedEvent, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT id, raw_event_id, session_id, distinct_id, sequence_number,
		       event_name, event_type, action_type, semantic_label,
		       page_path, page_title, context, timestamp, created_at
		FROM enriched_event
		WHERE session_id = $1
		ORDER BY sequence_number ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("fetching events for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	events, err := scanEnrichedEvents(rows)
	if err != nil {
		return nil, fmt.Errorf("scanning events for session %s: %w", sessionID, err)
	}
	return events, nil
}

func scanEnrichedEvents(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]models.EnrichedEvent, error) {
	var events []models.EnrichedEvent
	for rows.Next() {
		var e models.EnrichedEvent
		if err := rows.Scan(
			&e.ID, &e.RawEventID, &e.SessionID, &e.DistinctID, &e.SequenceNumber,
			&e.EventName, &e.EventType, &e.ActionType, &e.SemanticLabel,
			&e.PagePath, &e.PageTitle, &e.Context, &e.Timestamp, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
