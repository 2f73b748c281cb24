package database

import (
	"database/sql"
	"sync/atomic"
	"time"
)

// Health status values
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthStatus reports connectivity and pool pressure.
type HealthStatus struct {
	Status          string    `json:"status"`
	CheckedAt       time.Time `json:"checked_at"`
	OpenConnections int       `json:"open_connections"`
	InUse           int       `json:"in_use"`
	Idle            int       `json:"idle"`
	WaitCount       int64     `json:"wait_count"`
	Errors          []string  `json:"errors,omitempty"`
}

// Metrics tracks cumulative query counters.
type Metrics struct {
	queryCount     atomic.Int64
	errorCount     atomic.Int64
	slowQueryCount atomic.Int64
	totalDuration  atomic.Int64 // nanoseconds
}

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	QueryCount       int64         `json:"query_count"`
	ErrorCount       int64         `json:"error_count"`
	SlowQueryCount   int64         `json:"slow_query_count"`
	AvgQueryDuration time.Duration `json:"avg_query_duration"`
}

// NewMetrics creates an empty counter set.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordQuery accumulates one query observation.
func (m *Metrics) RecordQuery(duration time.Duration, err error, slow bool) {
	m.queryCount.Add(1)
	m.totalDuration.Add(int64(duration))
	if err != nil && err != sql.ErrNoRows {
		m.errorCount.Add(1)
	}
	if slow {
		m.slowQueryCount.Add(1)
	}
}

// Snapshot returns a consistent-enough copy for reporting.
func (m *Metrics) Snapshot() MetricsSnapshot {
	count := m.queryCount.Load()
	snap := MetricsSnapshot{
		QueryCount:     count,
		ErrorCount:     m.errorCount.Load(),
		SlowQueryCount: m.slowQueryCount.Load(),
	}
	if count > 0 {
		snap.AvgQueryDuration = time.Duration(m.totalDuration.Load() / count)
	}
	return snap
}
