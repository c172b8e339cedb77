package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ankitdsmb/DictionaryImporter-sub008/errors"
)

func TestImportMetrics_ClassifiesResults(t *testing.T) {
	metrics := NewImportMetrics(4, ModeFull)

	metrics.RecordResult(&ImportResult{Success: true, Duration: 100 * time.Millisecond})
	metrics.RecordResult(&ImportResult{Success: true, Duration: 300 * time.Millisecond})
	metrics.RecordResult(&ImportResult{Err: errors.New("merge failed"), Duration: 50 * time.Millisecond})
	metrics.RecordResult(&ImportResult{Cancelled: true, Err: errors.New("context canceled"), Duration: 10 * time.Millisecond})
	metrics.Finish()

	snapshot := metrics.Snapshot()
	assert.Equal(t, 4, snapshot.TotalSources)
	assert.Equal(t, 4, snapshot.CompletedSources)
	assert.Equal(t, 2, snapshot.SuccessfulSources)
	assert.Equal(t, 1, snapshot.FailedSources)
	assert.Equal(t, 1, snapshot.CancelledSources)
	assert.Equal(t, ModeFull, snapshot.Mode)
	assert.False(t, snapshot.CompletedAt.IsZero())
}

func TestImportMetrics_AverageDuration(t *testing.T) {
	metrics := NewImportMetrics(2, ModeImportOnly)
	assert.Zero(t, metrics.Snapshot().AverageDuration, "no completions yet")

	metrics.RecordResult(&ImportResult{Success: true, Duration: 100 * time.Millisecond})
	metrics.RecordResult(&ImportResult{Success: true, Duration: 300 * time.Millisecond})

	assert.Equal(t, 200*time.Millisecond, metrics.Snapshot().AverageDuration)
}
