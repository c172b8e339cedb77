package commands

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ankitdsmb/DictionaryImporter-sub008/config"
	"github.com/ankitdsmb/DictionaryImporter-sub008/errors"
	"github.com/ankitdsmb/DictionaryImporter-sub008/importer"
	"github.com/ankitdsmb/DictionaryImporter-sub008/logger"
	"github.com/ankitdsmb/DictionaryImporter-sub008/progress"
	"github.com/ankitdsmb/DictionaryImporter-sub008/sources"
	"github.com/ankitdsmb/DictionaryImporter-sub008/sym"
	"github.com/ankitdsmb/DictionaryImporter-sub008/watch"
)

// WatchCmd represents the watch command - filesystem-triggered imports
var WatchCmd = &cobra.Command{
	Use:   "watch <directory>",
	Short: sym.Watch + " Watch a drop directory and import changed source files",
	Long: sym.Watch + ` Watch mode - filesystem-triggered imports.

Files named <source-code>.<format> (optionally .gz) dropped into the
directory are imported after a debounce quiet period. Repeated writes
to the same file collapse into one run, and a per-source rate limit
keeps event storms from stacking imports.

Runs until interrupted (Ctrl+C).

Examples:
  dictimport watch ./drop                   # Full runs on changed files
  dictimport watch ./drop --import-only     # Stage and merge only
  dictimport watch ./drop --debounce-ms 500`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

var (
	watchDBFlag         string
	watchImportOnlyFlag bool
	watchDebounceFlag   int
	watchRateFlag       int
)

func init() {
	WatchCmd.Flags().StringVar(&watchDBFlag, "db", "", "Database path (default: database.path from config)")
	WatchCmd.Flags().BoolVar(&watchImportOnlyFlag, "import-only", false, "Stop after import and merge; skip pipeline steps")
	WatchCmd.Flags().IntVar(&watchDebounceFlag, "debounce-ms", 0, "Quiet period after the last write before importing (default: watch.debounce_ms from config)")
	WatchCmd.Flags().IntVar(&watchRateFlag, "rate-per-minute", 0, "Max imports per source per minute (default: watch.rate_per_minute from config)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := args[0]

	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	database, err := openDatabase(watchDBFlag)
	if err != nil {
		return err
	}
	defer database.Close()

	// Watch runs are single-source, so the fan-out count is 1
	settings := settingsFromConfig(cfg, 1)
	orch, factory, err := buildOrchestrator(database, cfg, settings, progress.NewNopEmitter())
	if err != nil {
		return err
	}

	mode := importer.ModeFull
	if watchImportOnlyFlag {
		mode = importer.ModeImportOnly
	}

	debounceMS := cfg.Watch.DebounceMS
	if watchDebounceFlag > 0 {
		debounceMS = watchDebounceFlag
	}
	ratePerMinute := cfg.Watch.RatePerMinute
	if watchRateFlag > 0 {
		ratePerMinute = watchRateFlag
	}

	runner := &reloadableRunner{runner: orch}
	watcher, err := watch.NewWatcher(watch.Config{
		Dir:              dir,
		Mode:             mode,
		Debounce:         time.Duration(debounceMS) * time.Millisecond,
		MaxRunsPerMinute: float64(ratePerMinute),
	}, sources.BuiltinFormats(), runner, logger.Logger)
	if err != nil {
		return err
	}

	watcher.Start()

	reloader, configPath := setupConfigReload(database, runner)
	if reloader != nil {
		defer reloader.Stop()
	}

	fmt.Printf("%s Watching %s\n", sym.Watch, dir)
	fmt.Printf("  Formats:  %s (+ .gz)\n", strings.Join(factory.Formats(), ", "))
	fmt.Printf("  Mode:     %s\n", mode)
	fmt.Printf("  Debounce: %dms\n", debounceMS)
	if reloader != nil {
		fmt.Printf("  Config:   %s (live reload)\n", configPath)
	}
	fmt.Printf("\n%s Press Ctrl+C to stop\n\n", sym.Watch)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Printf("\n%s Stopping watch...\n", sym.Watch)
	watcher.Stop()

	fmt.Printf("%s Watch stopped\n", sym.Watch)
	return nil
}

// reloadableRunner lets watch mode swap in an orchestrator rebuilt from
// edited configuration without restarting the watcher.
type reloadableRunner struct {
	mu     sync.RWMutex
	runner watch.ImportRunner
}

func (r *reloadableRunner) Run(ctx context.Context, defs []importer.SourceDefinition, mode importer.PipelineMode) (map[string]*importer.ImportResult, error) {
	r.mu.RLock()
	runner := r.runner
	r.mu.RUnlock()
	return runner.Run(ctx, defs, mode)
}

func (r *reloadableRunner) Swap(runner watch.ImportRunner) {
	r.mu.Lock()
	r.runner = runner
	r.mu.Unlock()
}

// setupConfigReload watches the project config file, if one exists, and
// swaps a rebuilt orchestrator into the runner on each edit. Database
// path changes still need a restart; the handle stays open for the life
// of the watch.
func setupConfigReload(database *sql.DB, runner *reloadableRunner) (*config.ConfigWatcher, string) {
	configPath := config.ProjectConfigPath()
	if configPath == "" {
		return nil, ""
	}

	reloader, err := config.NewConfigWatcher(configPath)
	if err != nil {
		logger.Warnw("Config watching disabled, restart to pick up config changes",
			logger.FieldError, err)
		return nil, ""
	}

	reloader.OnReload(func(newCfg *config.Config) error {
		if err := newCfg.Validate(); err != nil {
			return errors.Wrap(err, "keeping previous configuration")
		}
		orch, _, err := buildOrchestrator(database, newCfg, settingsFromConfig(newCfg, 1), progress.NewNopEmitter())
		if err != nil {
			return err
		}
		runner.Swap(orch)
		logger.Infow("Import settings reloaded",
			"batch_size", newCfg.Import.BatchSize,
			"max_database_slots", newCfg.Import.MaxDatabaseSlots,
			"finalize_timeout_seconds", newCfg.Import.FinalizeTimeoutSeconds,
		)
		return nil
	})
	reloader.Start()
	return reloader, configPath
}
