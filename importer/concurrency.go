package importer

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ankitdsmb/DictionaryImporter-sub008/errors"
	"github.com/ankitdsmb/DictionaryImporter-sub008/logger"
)

// Settings bounds a run's resource usage. Supplied at construction;
// zero values fall back to defaults.
type Settings struct {
	// MaxDatabaseSlots caps concurrent operations against the store,
	// across all sources.
	MaxDatabaseSlots int

	// MaxParallelSources caps the orchestrator's fan-out.
	MaxParallelSources int

	// ParallelEnabled serializes the whole run to one source at a time
	// when false.
	ParallelEnabled bool

	// BatchSize is the engine's staging flush threshold.
	BatchSize int

	// FinalizeTimeout bounds the merge-finalization wait per source.
	FinalizeTimeout time.Duration
}

// DefaultSettings returns the defaults used by the CLI.
func DefaultSettings() Settings {
	return Settings{
		MaxDatabaseSlots:   4,
		MaxParallelSources: 4,
		ParallelEnabled:    true,
		BatchSize:          2000,
		FinalizeTimeout:    10 * time.Minute,
	}
}

// withDefaults fills unset fields.
func (s Settings) withDefaults() Settings {
	defaults := DefaultSettings()
	if s.MaxDatabaseSlots < 1 {
		s.MaxDatabaseSlots = defaults.MaxDatabaseSlots
	}
	if s.MaxParallelSources < 1 {
		s.MaxParallelSources = defaults.MaxParallelSources
	}
	if s.BatchSize < 1 {
		s.BatchSize = defaults.BatchSize
	}
	if s.FinalizeTimeout <= 0 {
		s.FinalizeTimeout = defaults.FinalizeTimeout
	}
	return s
}

// ParallelOptions is the orchestrator's fan-out bound.
type ParallelOptions struct {
	MaxConcurrency int
}

// ConcurrencyMetrics is a read-only snapshot of live concurrency state.
type ConcurrencyMetrics struct {
	MaxDatabaseSlots int
	AvailableSlots   int

	// ActiveSources lists sources currently inside the guard, sorted.
	ActiveSources []string

	// ActiveFor gives how long each active source has held its guard.
	ActiveFor map[string]time.Duration

	// GuardedDurations accumulates total guarded time per source over
	// the manager's lifetime.
	GuardedDurations map[string]time.Duration

	// Waiting counts callers queued on slot or lock acquisition.
	Waiting int

	// HighWaterConcurrency is the most operations ever active at once.
	HighWaterConcurrency int
}

// ConcurrencyManager guards store access with two levels: a global slot
// pool bounding total concurrent operations, and a lazily created
// per-source lock serializing operations within one source. Both
// acquisitions abandon promptly on cancellation; releases run in
// reverse order even when the operation fails.
type ConcurrencyManager struct {
	settings Settings
	slots    chan struct{}
	log      *zap.SugaredLogger

	mu          sync.Mutex
	sourceLocks map[string]chan struct{}
	activeSince map[string]time.Time
	durations   map[string]time.Duration
	waiting     int
	highWater   int
}

// NewConcurrencyManager creates a manager for one run's settings.
func NewConcurrencyManager(settings Settings, log *zap.SugaredLogger) *ConcurrencyManager {
	settings = settings.withDefaults()
	return &ConcurrencyManager{
		settings:    settings,
		slots:       make(chan struct{}, settings.MaxDatabaseSlots),
		log:         log.Named("importer.concurrency"),
		sourceLocks: make(map[string]chan struct{}),
		activeSince: make(map[string]time.Time),
		durations:   make(map[string]time.Duration),
	}
}

// ExecuteWithConcurrencyControl runs op under the global slot and the
// source's exclusive lock. The operation's error propagates unmodified.
func (m *ConcurrencyManager) ExecuteWithConcurrencyControl(ctx context.Context, sourceCode string, op func(context.Context) error) error {
	m.addWaiting(1)

	select {
	case m.slots <- struct{}{}:
	case <-ctx.Done():
		m.addWaiting(-1)
		return errors.Wrapf(ctx.Err(), "abandoned waiting for database slot: %s", sourceCode)
	}
	defer func() { <-m.slots }()

	lock := m.sourceLock(sourceCode)
	select {
	case lock <- struct{}{}:
	case <-ctx.Done():
		m.addWaiting(-1)
		return errors.Wrapf(ctx.Err(), "abandoned waiting for source lock: %s", sourceCode)
	}
	defer func() { <-lock }()
	m.addWaiting(-1)

	start := time.Now()
	m.markActive(sourceCode, start)
	defer m.markIdle(sourceCode, start)

	m.log.Debugw("Operation guarded",
		logger.FieldSource, sourceCode,
	)

	err := op(ctx)

	if err != nil {
		m.log.Debugw("Guarded operation failed",
			logger.FieldSource, sourceCode,
			logger.FieldDurationMS, time.Since(start).Milliseconds(),
			logger.FieldError, err,
		)
	} else {
		m.log.Debugw("Guarded operation completed",
			logger.FieldSource, sourceCode,
			logger.FieldDurationMS, time.Since(start).Milliseconds(),
		)
	}
	return err
}

// ParallelOptions returns the fan-out bound for this run.
func (m *ConcurrencyManager) ParallelOptions() ParallelOptions {
	if !m.settings.ParallelEnabled {
		return ParallelOptions{MaxConcurrency: 1}
	}
	return ParallelOptions{MaxConcurrency: m.settings.MaxParallelSources}
}

// Metrics snapshots live state. Reads only counters and map copies,
// never the operation guards, so it cannot block a running operation.
func (m *ConcurrencyManager) Metrics() ConcurrencyMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	active := make([]string, 0, len(m.activeSince))
	activeFor := make(map[string]time.Duration, len(m.activeSince))
	for code, since := range m.activeSince {
		active = append(active, code)
		activeFor[code] = now.Sub(since)
	}
	sort.Strings(active)

	durations := make(map[string]time.Duration, len(m.durations))
	for code, d := range m.durations {
		durations[code] = d
	}

	return ConcurrencyMetrics{
		MaxDatabaseSlots:     m.settings.MaxDatabaseSlots,
		AvailableSlots:       cap(m.slots) - len(m.slots),
		ActiveSources:        active,
		ActiveFor:            activeFor,
		GuardedDurations:     durations,
		Waiting:              m.waiting,
		HighWaterConcurrency: m.highWater,
	}
}

// sourceLock returns the source's lock, creating it on first use. Locks
// live for the manager's lifetime.
func (m *ConcurrencyManager) sourceLock(sourceCode string) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, ok := m.sourceLocks[sourceCode]
	if !ok {
		lock = make(chan struct{}, 1)
		m.sourceLocks[sourceCode] = lock
	}
	return lock
}

func (m *ConcurrencyManager) addWaiting(delta int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.waiting += delta
}

func (m *ConcurrencyManager) markActive(sourceCode string, start time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.activeSince[sourceCode] = start
	if n := len(m.activeSince); n > m.highWater {
		m.highWater = n
	}
}

func (m *ConcurrencyManager) markIdle(sourceCode string, start time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.durations[sourceCode] += time.Since(start)
	delete(m.activeSince, sourceCode)
}
