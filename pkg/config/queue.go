package config

import "time"

// QueueConfig tunes the ingestion worker's batch claim size, fan-out width,
// and idle backoff.
type QueueConfig struct {
	BatchSize      int           `yaml:"batch_size"`
	MaxConcurrency int           `yaml:"max_concurrency"`
	WaitTime       time.Duration `yaml:"wait_time"`
}

// DefaultQueueConfig mirrors the original ingestion worker's tuning: claim
// 200 events per batch, enrich up to 10 concurrently, sleep a second
// between polls when a batch comes back empty.
func DefaultQueueConfig() QueueConfig {
	return QueueConfig{
		BatchSize:      200,
		MaxConcurrency: 10,
		WaitTime:       time.Second,
	}
}
