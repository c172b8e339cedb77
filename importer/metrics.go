package importer

import (
	"sync"
	"time"
)

// ImportMetrics accumulates run-wide counters as concurrently finishing
// source tasks report their results. All mutation happens under the
// mutex; readers take a Snapshot.
type ImportMetrics struct {
	mu sync.Mutex

	totalSources      int
	completedSources  int
	successfulSources int
	failedSources     int
	cancelledSources  int
	durationSum       time.Duration
	startedAt         time.Time
	completedAt       time.Time
	mode              PipelineMode
}

// MetricsSnapshot is a point-in-time copy of the run counters.
type MetricsSnapshot struct {
	TotalSources      int
	CompletedSources  int
	SuccessfulSources int
	FailedSources     int
	CancelledSources  int
	AverageDuration   time.Duration
	StartedAt         time.Time
	CompletedAt       time.Time
	Mode              PipelineMode
}

// NewImportMetrics creates metrics for a run over total sources.
func NewImportMetrics(total int, mode PipelineMode) *ImportMetrics {
	return &ImportMetrics{
		totalSources: total,
		startedAt:    time.Now(),
		mode:         mode,
	}
}

// RecordResult counts one finished source. Cancellation is tracked
// separately from failure so a cancelled run does not read as broken
// sources.
func (m *ImportMetrics) RecordResult(result *ImportResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.completedSources++
	m.durationSum += result.Duration
	switch {
	case result.Cancelled:
		m.cancelledSources++
	case result.Success:
		m.successfulSources++
	default:
		m.failedSources++
	}
}

// Finish stamps the run's completion time.
func (m *ImportMetrics) Finish() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completedAt = time.Now()
}

// Snapshot returns a copy of the current counters.
func (m *ImportMetrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	var average time.Duration
	if m.completedSources > 0 {
		average = m.durationSum / time.Duration(m.completedSources)
	}
	return MetricsSnapshot{
		TotalSources:      m.totalSources,
		CompletedSources:  m.completedSources,
		SuccessfulSources: m.successfulSources,
		FailedSources:     m.failedSources,
		CancelledSources:  m.cancelledSources,
		AverageDuration:   average,
		StartedAt:         m.startedAt,
		CompletedAt:       m.completedAt,
		Mode:              m.mode,
	}
}
