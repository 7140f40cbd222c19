package queue

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/kodiak-labs/sessioncontext/pkg/models"
	"github.com/kodiak-labs/sessioncontext/pkg/services"
)

// Config tunes the batch worker's claim size, fan-out width, and idle
// backoff.
type Config struct {
	BatchSize      int           // raw events claimed per batch
	MaxConcurrency int           // events enriched concurrently within a batch
	WaitTime       time.Duration // sleep between polls when a batch comes back empty
}

// DefaultConfig mirrors the original ingestion worker's tuning.
func DefaultConfig() Config {
	return Config{BatchSize: 200, MaxConcurrency: 10, WaitTime: time.Second}
}

// Worker repeatedly claims a batch of PENDING raw events and enriches them
// with bounded concurrency. Unlike a one-session-at-a-time worker, a batch is
// claimed and committed in one short transaction before any enrichment work
// begins — enrichment runs on its own per-event transactions afterward, so a
// slow event cannot hold the claim lock open for the rest of the batch.
type Worker struct {
	id         string
	pool       *pgxpool.Pool
	config     Config
	enrichment *services.EnrichmentService

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu              sync.RWMutex
	status          WorkerStatus
	lastBatchSize   int
	lastActivity    time.Time
	eventsProcessed atomic.Int64
	eventsFailed    atomic.Int64
}

// NewWorker constructs a Worker. A zero-valued Config field falls back to
// DefaultConfig's value for that field.
func NewWorker(id string, pool *pgxpool.Pool, cfg Config, enrichment *services.EnrichmentService) *Worker {
	defaults := DefaultConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaults.BatchSize
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = defaults.MaxConcurrency
	}
	if cfg.WaitTime <= 0 {
		cfg.WaitTime = defaults.WaitTime
	}
	return &Worker{
		id:           id,
		pool:         pool,
		config:       cfg,
		enrichment:   enrichment,
		stopCh:       make(chan struct{}),
		status:       WorkerStatusIdle,
		lastActivity: time.Now(),
	}
}

// Start begins the worker's poll loop in a goroutine.
func (w *Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.run(ctx)
}

// Stop signals the worker to finish its in-flight batch and exit. Safe to
// call more than once.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
}

// Health returns a snapshot of the worker's progress.
func (w *Worker) Health() WorkerHealth {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return WorkerHealth{
		ID:              w.id,
		Status:          w.status,
		LastBatchSize:   w.lastBatchSize,
		EventsProcessed: w.eventsProcessed.Load(),
		EventsFailed:    w.eventsFailed.Load(),
		LastActivity:    w.lastActivity,
	}
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	log := slog.With("worker_id", w.id)
	log.Info("ingestion worker started")

	for {
		select {
		case <-w.stopCh:
			log.Info("ingestion worker shutting down")
			return
		case <-ctx.Done():
			log.Info("context cancelled, ingestion worker shutting down")
			return
		default:
			processed, err := w.processBatch(ctx)
			if err != nil {
				log.Error("batch processing failed", "error", err)
				w.sleep(time.Second)
				continue
			}
			if processed == 0 {
				w.sleep(w.config.WaitTime)
			}
		}
	}
}

func (w *Worker) sleep(d time.Duration) {
	select {
	case <-w.stopCh:
	case <-time.After(d):
	}
}

// processBatch claims up to config.BatchSize pending raw events, enriches
// them with up to config.MaxConcurrency concurrent workers, and returns how
// many were claimed.
func (w *Worker) processBatch(ctx context.Context) (int, error) {
	w.setStatus(WorkerStatusProcessing)
	defer w.setStatus(WorkerStatusIdle)

	events, err := w.claimBatch(ctx)
	if err != nil {
		return 0, err
	}

	w.mu.Lock()
	w.lastBatchSize = len(events)
	w.mu.Unlock()

	if len(events) == 0 {
		return 0, nil
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(w.config.MaxConcurrency)

	for _, event := range events {
		event := event
		group.Go(func() error {
			w.processOne(groupCtx, event)
			return nil
		})
	}
	_ = group.Wait() // processOne never returns an error; failures are recorded per-event

	return len(events), nil
}

// claimBatch selects up to BatchSize pending raw events with SELECT ... FOR
// UPDATE SKIP LOCKED and commits immediately — claim-only, per the spec's
// three-state status domain (PENDING/DONE/FAILED) there is no intermediate
// "claimed" status to flip to, so the row-level lock held only for the
// duration of this short transaction is the sole coordination primitive
// between concurrent worker processes. A worker process never re-enters its
// own claim loop until every task in the current batch has finished, so a
// single process cannot double-claim a row it is still processing.
func (w *Worker) claimBatch(ctx context.Context) ([]models.RawEvent, error) {
	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `
		SELECT id, distinct_id, event_name, properties, elements_chain, timestamp,
		       status, processed_at, attempts, last_error, created_at, updated_at
		FROM raw_event
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	`, models.RawEventStatusPending, w.config.BatchSize)
	if err != nil {
		return nil, err
	}

	var claimed []models.RawEvent
	for rows.Next() {
		var e models.RawEvent
		if err := rows.Scan(
			&e.ID, &e.DistinctID, &e.EventName, &e.Properties, &e.ElementsChain, &e.Timestamp,
			&e.Status, &e.ProcessedAt, &e.Attempts, &e.LastError, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			rows.Close()
			return nil, err
		}
		claimed = append(claimed, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(claimed) == 0 {
		return nil, nil
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return claimed, nil
}

// processOne enriches a single claimed event on its own transaction,
// marking it DONE on success or FAILED (with the error recorded) on any
// failure. Errors are swallowed here by design — one bad event must not
// abort the rest of the batch.
func (w *Worker) processOne(ctx context.Context, raw models.RawEvent) {
	if err := w.enrichOne(ctx, raw); err != nil {
		slog.Warn("failed to enrich raw event", "raw_event_id", raw.ID, "error", err)
		w.eventsFailed.Add(1)
		w.markFailed(context.Background(), raw.ID, err)
		return
	}
	w.eventsProcessed.Add(1)
}

func (w *Worker) enrichOne(ctx context.Context, raw models.RawEvent) error {
	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := w.enrichment.ProcessEvent(ctx, tx, raw); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE raw_event SET status = $1, processed_at = now(), updated_at = now() WHERE id = $2
	`, models.RawEventStatusDone, raw.ID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (w *Worker) markFailed(ctx context.Context, id uuid.UUID, cause error) {
	_, err := w.pool.Exec(ctx, `
		UPDATE raw_event
		SET status = $1, attempts = attempts + 1, last_error = $2, updated_at = now()
		WHERE id = $3
	`, models.RawEventStatusFailed, cause.Error(), id)
	if err != nil {
		slog.Error("failed to record raw event failure", "raw_event_id", id, "error", err)
	}
}

func (w *Worker) setStatus(status WorkerStatus) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.status = status
	w.lastActivity = time.Now()
}
