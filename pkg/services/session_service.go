package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kodiak-labs/sessioncontext/pkg/models"
)

// SessionService reconciles raw events into sessions: a tracker-assigned
// $session_id window of activity, updated in place as events arrive.
type SessionService struct {
	pool *pgxpool.Pool
}

// NewSessionService constructs a SessionService backed by pool.
func NewSessionService(pool *pgxpool.Pool) *SessionService {
	return &SessionService{pool: pool}
}

// GetOrCreateSession returns the session identified by sessionID, creating
// one seeded at eventTime if none exists yet. The insert uses ON CONFLICT
// DO NOTHING followed by a read-back so concurrent first-events for the same
// session race safely onto a single row. firstPage is only used when the
// session is created; it is never rewritten on an existing row.
func (s *SessionService) GetOrCreateSession(ctx context.Context, tx pgx.Tx, sessionID, distinctID string, eventTime time.Time, firstPage string) (models.Session, error) {
	_, err := tx.Exec(ctx, `
		INSERT INTO session (id, distinct_id, started_at, last_activity_at, event_count, page_view_count, clicks_count, first_page)
		VALUES ($1, $2, $3, $3, 0, 0, 0, $4)
		ON CONFLICT (id) DO NOTHING
	`, sessionID, distinctID, eventTime, firstPage)
	if err != nil {
		return models.Session{}, fmt.Errorf("reconciling session %q: %w", sessionID, err)
	}

	return s.fetchByID(ctx, tx, sessionID)
}

func (s *SessionService) fetchByID(ctx context.Context, tx pgx.Tx, sessionID string) (models.Session, error) {
	row := tx.QueryRow(ctx, `
		SELECT id, distinct_id, started_at, last_activity_at, ended_at,
		       event_count, page_view_count, clicks_count, first_page, last_page, session_summary
		FROM session
		WHERE id = $1
	`, sessionID)

	var sess models.Session
	if err := row.Scan(
		&sess.ID, &sess.DistinctID, &sess.StartedAt, &sess.LastActivityAt, &sess.EndedAt,
		&sess.EventCount, &sess.PageViewCount, &sess.ClicksCount, &sess.FirstPage, &sess.LastPage, &sess.SessionSummary,
	); err != nil {
		return models.Session{}, fmt.Errorf("fetching session %q: %w", sessionID, err)
	}
	return sess, nil
}

// RecordActivity advances a session's counters after one event has been
// enriched: last_activity_at moves forward, event_count always increments;
// page_view_count increments and last_page is overwritten only when the
// event is a pageview, otherwise clicks_count increments only when the
// event classified as a click. The two counters are mutually exclusive per
// event, mirroring the "page_path set, else click" branch the original
// scoring uses, adapted to key off the event's classification rather than
// page_path presence (which defaults to "/" for every event and would
// otherwise fire on almost everything — see DESIGN.md).
// Counters are updated via relative SQL arithmetic so concurrent writers to
// the same session compose instead of clobbering each other.
func (s *SessionService) RecordActivity(ctx context.Context, tx pgx.Tx, sessionID string, isPageview, isClick bool, pagePath string, eventTime time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE session
		SET last_activity_at = $2,
		    event_count = event_count + 1,
		    page_view_count = page_view_count + CASE WHEN $3 THEN 1 ELSE 0 END,
		    clicks_count = clicks_count + CASE WHEN $3 = false AND $4 THEN 1 ELSE 0 END,
		    last_page = CASE WHEN $3 THEN $5 ELSE last_page END
		WHERE id = $1
	`, sessionID, eventTime, isPageview, isClick, pagePath)
	if err != nil {
		return fmt.Errorf("recording session activity for %q: %w", sessionID, err)
	}
	return nil
}

// LatestSession returns the most recently started session for distinctID,
// regardless of whether it is still open, or false if the user has none.
func (s *SessionService) LatestSession(ctx context.Context, distinctID string) (models.Session, bool, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, distinct_id, started_at, last_activity_at, ended_at,
		       event_count, page_view_count, clicks_count, first_page, last_page, session_summary
		FROM session
		WHERE distinct_id = $1
		ORDER BY started_at DESC
		LIMIT 1
	`, distinctID)

	var sess models.Session
	if err := row.Scan(
		&sess.ID, &sess.DistinctID, &sess.StartedAt, &sess.LastActivityAt, &sess.EndedAt,
		&sess.EventCount, &sess.PageViewCount, &sess.ClicksCount, &sess.FirstPage, &sess.LastPage, &sess.SessionSummary,
	); err != nil {
		if err == pgx.ErrNoRows {
			return models.Session{}, false, nil
		}
		return models.Session{}, false, fmt.Errorf("fetching latest session for %q: %w", distinctID, err)
	}
	return sess, true, nil
}
