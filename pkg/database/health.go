package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// HealthStatus reports pool connectivity and utilization.
type HealthStatus struct {
	Status             string        `json:"status"`
	ResponseTime       time.Duration `json:"response_time_ms"`
	TotalConns         int32         `json:"total_conns"`
	AcquiredConns      int32         `json:"acquired_conns"`
	IdleConns          int32         `json:"idle_conns"`
	MaxConns           int32         `json:"max_conns"`
	NewConnsCount      int64         `json:"new_conns_count"`
	AcquireCount       int64         `json:"acquire_count"`
	EmptyAcquireCount  int64         `json:"empty_acquire_count"`
}

// Health pings pool and reports its current statistics.
func Health(ctx context.Context, pool *pgxpool.Pool) (*HealthStatus, error) {
	start := time.Now()

	if err := pool.Ping(ctx); err != nil {
		return &HealthStatus{
			Status:       "unhealthy",
			ResponseTime: time.Since(start),
		}, err
	}

	stat := pool.Stat()
	return &HealthStatus{
		Status:            "healthy",
		ResponseTime:      time.Since(start),
		TotalConns:        stat.TotalConns(),
		AcquiredConns:     stat.AcquiredConns(),
		IdleConns:         stat.IdleConns(),
		MaxConns:          stat.MaxConns(),
		NewConnsCount:     stat.NewConnsCount(),
		AcquireCount:      stat.AcquireCount(),
		EmptyAcquireCount: stat.EmptyAcquireCount(),
	}, nil
}
