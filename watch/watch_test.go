package watch

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ankitdsmb/DictionaryImporter-sub008/importer"
	"github.com/ankitdsmb/DictionaryImporter-sub008/sources"
)

type fakeRunner struct {
	mu   sync.Mutex
	defs []importer.SourceDefinition
	mode importer.PipelineMode
	runs chan string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{runs: make(chan string, 16)}
}

func (r *fakeRunner) Run(_ context.Context, defs []importer.SourceDefinition, mode importer.PipelineMode) (map[string]*importer.ImportResult, error) {
	results := make(map[string]*importer.ImportResult, len(defs))
	r.mu.Lock()
	r.defs = append(r.defs, defs...)
	r.mode = mode
	r.mu.Unlock()
	for _, def := range defs {
		results[def.SourceCode] = &importer.ImportResult{
			SourceCode: def.SourceCode,
			State:      importer.StateSucceeded,
			Success:    true,
		}
		r.runs <- def.SourceCode
	}
	return results, nil
}

func (r *fakeRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.defs)
}

func (r *fakeRunner) lastDef() importer.SourceDefinition {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.defs[len(r.defs)-1]
}

func waitForRun(t *testing.T, r *fakeRunner) string {
	t.Helper()
	select {
	case code := <-r.runs:
		return code
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for an import run")
		return ""
	}
}

func newTestWatcher(t *testing.T, dir string, config Config) (*Watcher, *fakeRunner) {
	t.Helper()
	config.Dir = dir
	runner := newFakeRunner()
	watcher, err := NewWatcher(config, sources.BuiltinFormats(), runner, zap.NewNop().Sugar())
	require.NoError(t, err)
	t.Cleanup(watcher.Stop)
	return watcher, runner
}

func TestWatcher_ImportsDroppedFile(t *testing.T) {
	dir := t.TempDir()
	watcher, runner := newTestWatcher(t, dir, Config{
		Mode:             importer.ModeImportOnly,
		Debounce:         20 * time.Millisecond,
		MaxRunsPerMinute: 600,
	})
	watcher.Start()

	content := `{"source_code":"EN-WIKT","headword":"bank","language":"en","senses":[{"pos":"noun","definition":"A financial institution."}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en-wikt.jsonl"), []byte(content), 0o644))

	assert.Equal(t, "EN-WIKT", waitForRun(t, runner))

	def := runner.lastDef()
	assert.Equal(t, "jsonl", def.Format)
	assert.Equal(t, "en-wikt", def.SourceName)
	assert.Equal(t, importer.ModeImportOnly, runner.mode)

	stream, err := def.Open()
	require.NoError(t, err)
	defer stream.Close()
	data, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestWatcher_DebouncesRapidWrites(t *testing.T) {
	dir := t.TempDir()
	watcher, runner := newTestWatcher(t, dir, Config{
		Mode:             importer.ModeImportOnly,
		Debounce:         50 * time.Millisecond,
		MaxRunsPerMinute: 600,
	})
	watcher.Start()

	path := filepath.Join(dir, "de-wikt.tsv")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("DE-WIKT\tbank\tde\tnoun\tSitzbank."), 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	assert.Equal(t, "DE-WIKT", waitForRun(t, runner))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 1, runner.count(), "rapid writes collapse into one run")
}

func TestWatcher_RateLimitsRepeatedDrops(t *testing.T) {
	dir := t.TempDir()
	watcher, runner := newTestWatcher(t, dir, Config{
		Mode:             importer.ModeImportOnly,
		Debounce:         10 * time.Millisecond,
		MaxRunsPerMinute: 60,
	})
	watcher.Start()

	path := filepath.Join(dir, "fr-wikt.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"headword":"banque"}`), 0o644))
	assert.Equal(t, "FR-WIKT", waitForRun(t, runner))

	// A second drop inside the same minute window is suppressed.
	require.NoError(t, os.WriteFile(path, []byte(`{"headword":"rive"}`), 0o644))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 1, runner.count())
}

func TestWatcher_IgnoresUnknownFiles(t *testing.T) {
	dir := t.TempDir()
	watcher, runner := newTestWatcher(t, dir, Config{
		Debounce:         10 * time.Millisecond,
		MaxRunsPerMinute: 600,
	})
	watcher.Start()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a dictionary"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".en-wikt.jsonl.swp"), []byte("editor droppings"), 0o644))

	time.Sleep(150 * time.Millisecond)
	assert.Zero(t, runner.count())
}

func TestSourceForFile(t *testing.T) {
	watcher, _ := newTestWatcher(t, t.TempDir(), Config{})

	tests := []struct {
		file       string
		wantCode   string
		wantFormat string
		wantOK     bool
	}{
		{"en-wikt.jsonl", "EN-WIKT", "jsonl", true},
		{"de-wikt.tsv.gz", "DE-WIKT", "tsv", true},
		{"GCIDE.TSV", "GCIDE", "tsv", true},
		{"readme.txt", "", "", false},
		{".hidden.jsonl", "", "", false},
		{"archive.gz", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			def, ok := watcher.sourceForFile(filepath.Join("drop", tt.file))
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.wantCode, def.SourceCode)
				assert.Equal(t, tt.wantFormat, def.Format)
			}
		})
	}
}
