// Package queue implements the batch ingestion worker: claim a page of
// pending raw events, enrich each one with bounded concurrency, and repeat.
package queue

import "time"

// WorkerStatus is the worker's current high-level activity.
type WorkerStatus string

const (
	WorkerStatusIdle       WorkerStatus = "idle"
	WorkerStatusProcessing WorkerStatus = "processing"
)

// WorkerHealth is a point-in-time snapshot of the worker's progress.
type WorkerHealth struct {
	ID              string       `json:"id"`
	Status          WorkerStatus `json:"status"`
	LastBatchSize   int          `json:"last_batch_size"`
	EventsProcessed int64        `json:"events_processed"`
	EventsFailed    int64        `json:"events_failed"`
	LastActivity    time.Time    `json:"last_activity"`
}
