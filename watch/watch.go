// Package watch runs imports for dictionary files dropped into a
// directory.
//
// Files are named <source-code>.<format> (optionally .gz); a write or
// create event schedules an import after a debounce quiet period, and a
// per-source rate limiter keeps repeated drops from stacking runs.
package watch

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ankitdsmb/DictionaryImporter-sub008/errors"
	"github.com/ankitdsmb/DictionaryImporter-sub008/importer"
	"github.com/ankitdsmb/DictionaryImporter-sub008/logger"
	"github.com/ankitdsmb/DictionaryImporter-sub008/sources"
)

// ImportRunner runs sources to completion. Satisfied by
// importer.Orchestrator.
type ImportRunner interface {
	Run(ctx context.Context, defs []importer.SourceDefinition, mode importer.PipelineMode) (map[string]*importer.ImportResult, error)
}

// Config bounds the watcher's behavior.
type Config struct {
	// Dir is the drop directory to watch.
	Dir string

	// Mode is the pipeline mode for triggered imports.
	Mode importer.PipelineMode

	// Debounce is the quiet period after the last write before a file
	// imports. Editors and rsync touch files repeatedly.
	Debounce time.Duration

	// MaxRunsPerMinute caps how often one source can trigger.
	MaxRunsPerMinute float64
}

func (c Config) withDefaults() Config {
	if c.Mode == "" {
		c.Mode = importer.ModeFull
	}
	if c.Debounce <= 0 {
		c.Debounce = 2 * time.Second
	}
	if c.MaxRunsPerMinute <= 0 {
		c.MaxRunsPerMinute = 6
	}
	return c
}

// Watcher triggers imports from filesystem events on a drop directory.
type Watcher struct {
	config  Config
	formats map[string]importer.Format
	runner  ImportRunner
	watcher *fsnotify.Watcher
	log     *zap.SugaredLogger

	mu             sync.Mutex
	debounceTimers map[string]*time.Timer
	rateLimiters   map[string]*rate.Limiter

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatcher creates a watcher over the configured drop directory.
func NewWatcher(config Config, formats map[string]importer.Format, runner ImportRunner, log *zap.SugaredLogger) (*Watcher, error) {
	config = config.withDefaults()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create filesystem watcher")
	}
	if err := fsw.Add(config.Dir); err != nil {
		fsw.Close()
		return nil, errors.Wrapf(err, "failed to watch directory %s", config.Dir)
	}

	known := make(map[string]importer.Format, len(formats))
	for name, format := range formats {
		known[strings.ToLower(name)] = format
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		config:         config,
		formats:        known,
		runner:         runner,
		watcher:        fsw,
		log:            log.Named("watch"),
		debounceTimers: make(map[string]*time.Timer),
		rateLimiters:   make(map[string]*rate.Limiter),
		ctx:            ctx,
		cancel:         cancel,
	}, nil
}

// Start begins processing filesystem events.
func (w *Watcher) Start() {
	w.wg.Add(1)
	go w.watchLoop()
	w.log.Infow("Watch started",
		"dir", w.config.Dir,
		"mode", string(w.config.Mode),
		"debounce_ms", w.config.Debounce.Milliseconds(),
	)
}

// Stop cancels in-flight imports and shuts the watcher down.
func (w *Watcher) Stop() {
	w.cancel()
	w.watcher.Close()

	w.mu.Lock()
	for _, timer := range w.debounceTimers {
		timer.Stop()
	}
	w.mu.Unlock()

	w.wg.Wait()
	w.log.Info("Watch stopped")
}

func (w *Watcher) watchLoop() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				w.scheduleImport(event.Name)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warnw("Watch error", logger.FieldError, err)
		}
	}
}

// scheduleImport debounces rapid writes to one source file.
func (w *Watcher) scheduleImport(path string) {
	source, ok := w.sourceForFile(path)
	if !ok {
		w.log.Debugw("Ignoring non-source file", "file", path)
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, exists := w.debounceTimers[source.SourceCode]; exists {
		timer.Stop()
	}
	w.debounceTimers[source.SourceCode] = time.AfterFunc(w.config.Debounce, func() {
		w.runImport(source)
	})
}

func (w *Watcher) runImport(source importer.SourceDefinition) {
	if w.ctx.Err() != nil {
		return
	}
	if !w.limiter(source.SourceCode).Allow() {
		w.log.Debugw("Import rate limited", logger.FieldSource, source.SourceCode)
		return
	}

	w.log.Infow("Source file changed, importing",
		logger.FieldSource, source.SourceCode,
		"mode", string(w.config.Mode),
	)
	results, err := w.runner.Run(w.ctx, []importer.SourceDefinition{source}, w.config.Mode)
	if err != nil {
		w.log.Errorw("Watch-triggered import failed",
			logger.FieldSource, source.SourceCode,
			logger.FieldError, err,
		)
		return
	}
	if result := results[source.SourceCode]; result != nil {
		w.log.Infow("Watch-triggered import finished",
			logger.FieldSource, source.SourceCode,
			"state", string(result.State),
			logger.FieldDurationMS, result.Duration.Milliseconds(),
		)
	}
}

// limiter returns the source's rate limiter, creating it on first use.
func (w *Watcher) limiter(sourceCode string) *rate.Limiter {
	w.mu.Lock()
	defer w.mu.Unlock()

	limiter, ok := w.rateLimiters[sourceCode]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(w.config.MaxRunsPerMinute/60.0), 1)
		w.rateLimiters[sourceCode] = limiter
	}
	return limiter
}

// sourceForFile derives a source definition from a dropped file's name.
// Hidden files and unknown formats are ignored.
func (w *Watcher) sourceForFile(path string) (importer.SourceDefinition, bool) {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return importer.SourceDefinition{}, false
	}

	name := strings.TrimSuffix(base, ".gz")
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if stem == "" || ext == "" {
		return importer.SourceDefinition{}, false
	}
	if _, ok := w.formats[ext]; !ok {
		return importer.SourceDefinition{}, false
	}

	return importer.SourceDefinition{
		SourceCode: strings.ToUpper(stem),
		SourceName: stem,
		Format:     ext,
		Open:       sources.FileOpener(path),
	}, true
}
