package importer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ankitdsmb/DictionaryImporter-sub008/errors"
)

func newTestManager(settings Settings) *ConcurrencyManager {
	return NewConcurrencyManager(settings, zap.NewNop().Sugar())
}

func TestConcurrencyManager_GlobalSlotCap(t *testing.T) {
	manager := newTestManager(Settings{
		MaxDatabaseSlots:   2,
		MaxParallelSources: 8,
		ParallelEnabled:    true,
	})

	var active, peak atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		sourceCode := fmt.Sprintf("SRC-%d", i)
		go func() {
			defer wg.Done()
			err := manager.ExecuteWithConcurrencyControl(context.Background(), sourceCode, func(context.Context) error {
				n := active.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				active.Add(-1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(2), "slot pool must bound concurrent operations")
	assert.Positive(t, peak.Load())
}

func TestConcurrencyManager_PerSourceExclusive(t *testing.T) {
	manager := newTestManager(Settings{
		MaxDatabaseSlots:   4,
		MaxParallelSources: 4,
		ParallelEnabled:    true,
	})

	var inSource atomic.Int32
	var overlapped atomic.Bool
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := manager.ExecuteWithConcurrencyControl(context.Background(), "EN-WIKT", func(context.Context) error {
				if inSource.Add(1) > 1 {
					overlapped.Store(true)
				}
				time.Sleep(5 * time.Millisecond)
				inSource.Add(-1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.False(t, overlapped.Load(), "operations on one source must serialize")
}

func TestConcurrencyManager_CancelledWaitingForSlot(t *testing.T) {
	manager := newTestManager(Settings{
		MaxDatabaseSlots:   1,
		MaxParallelSources: 2,
		ParallelEnabled:    true,
	})

	holding := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- manager.ExecuteWithConcurrencyControl(context.Background(), "EN-WIKT", func(context.Context) error {
			close(holding)
			<-release
			return nil
		})
	}()
	<-holding

	ctx, cancel := context.WithCancel(context.Background())
	waiterDone := make(chan error, 1)
	go func() {
		waiterDone <- manager.ExecuteWithConcurrencyControl(ctx, "DE-WIKT", func(context.Context) error {
			t.Error("operation must not run after cancellation")
			return nil
		})
	}()

	// Let the waiter queue on the slot before cancelling.
	require.Eventually(t, func() bool {
		return manager.Metrics().Waiting > 0
	}, time.Second, time.Millisecond)
	cancel()

	err := <-waiterDone
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Contains(t, err.Error(), "database slot")

	close(release)
	require.NoError(t, <-done)
}

func TestConcurrencyManager_CancelledWaitingForSourceLock(t *testing.T) {
	manager := newTestManager(Settings{
		MaxDatabaseSlots:   2,
		MaxParallelSources: 2,
		ParallelEnabled:    true,
	})

	holding := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- manager.ExecuteWithConcurrencyControl(context.Background(), "EN-WIKT", func(context.Context) error {
			close(holding)
			<-release
			return nil
		})
	}()
	<-holding

	ctx, cancel := context.WithCancel(context.Background())
	waiterDone := make(chan error, 1)
	go func() {
		waiterDone <- manager.ExecuteWithConcurrencyControl(ctx, "EN-WIKT", func(context.Context) error {
			t.Error("operation must not run after cancellation")
			return nil
		})
	}()

	require.Eventually(t, func() bool {
		return manager.Metrics().Waiting > 0
	}, time.Second, time.Millisecond)
	cancel()

	err := <-waiterDone
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Contains(t, err.Error(), "source lock")

	close(release)
	require.NoError(t, <-done)
}

func TestConcurrencyManager_OperationErrorUnmodified(t *testing.T) {
	manager := newTestManager(Settings{
		MaxDatabaseSlots:   1,
		MaxParallelSources: 1,
		ParallelEnabled:    true,
	})

	boom := errors.New("extractor exploded")
	err := manager.ExecuteWithConcurrencyControl(context.Background(), "EN-WIKT", func(context.Context) error {
		return boom
	})
	assert.Equal(t, boom, err, "operation error must pass through unwrapped")

	// Both guards were released despite the failure.
	err = manager.ExecuteWithConcurrencyControl(context.Background(), "EN-WIKT", func(context.Context) error {
		return nil
	})
	require.NoError(t, err)
}

func TestConcurrencyManager_Metrics(t *testing.T) {
	manager := newTestManager(Settings{
		MaxDatabaseSlots:   3,
		MaxParallelSources: 3,
		ParallelEnabled:    true,
	})

	holding := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- manager.ExecuteWithConcurrencyControl(context.Background(), "EN-WIKT", func(context.Context) error {
			close(holding)
			<-release
			return nil
		})
	}()
	<-holding

	during := manager.Metrics()
	assert.Equal(t, 3, during.MaxDatabaseSlots)
	assert.Equal(t, 2, during.AvailableSlots)
	assert.Equal(t, []string{"EN-WIKT"}, during.ActiveSources)
	assert.Contains(t, during.ActiveFor, "EN-WIKT")
	assert.Zero(t, during.Waiting)

	close(release)
	require.NoError(t, <-done)

	after := manager.Metrics()
	assert.Equal(t, 3, after.AvailableSlots)
	assert.Empty(t, after.ActiveSources)
	assert.Positive(t, after.GuardedDurations["EN-WIKT"])
	assert.Equal(t, 1, after.HighWaterConcurrency)
}

func TestConcurrencyManager_ParallelOptions(t *testing.T) {
	enabled := newTestManager(Settings{
		MaxDatabaseSlots:   4,
		MaxParallelSources: 6,
		ParallelEnabled:    true,
	})
	assert.Equal(t, 6, enabled.ParallelOptions().MaxConcurrency)

	disabled := newTestManager(Settings{
		MaxDatabaseSlots:   4,
		MaxParallelSources: 6,
		ParallelEnabled:    false,
	})
	assert.Equal(t, 1, disabled.ParallelOptions().MaxConcurrency)
}

func TestSettings_WithDefaults(t *testing.T) {
	filled := Settings{}.withDefaults()
	assert.Equal(t, DefaultSettings(), filled)

	custom := Settings{
		MaxDatabaseSlots:   2,
		MaxParallelSources: 8,
		ParallelEnabled:    true,
		BatchSize:          100,
		FinalizeTimeout:    time.Minute,
	}.withDefaults()
	assert.Equal(t, 2, custom.MaxDatabaseSlots)
	assert.Equal(t, 8, custom.MaxParallelSources)
	assert.Equal(t, 100, custom.BatchSize)
	assert.Equal(t, time.Minute, custom.FinalizeTimeout)
}
