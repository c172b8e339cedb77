package commands

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ankitdsmb/DictionaryImporter-sub008/config"
	"github.com/ankitdsmb/DictionaryImporter-sub008/errors"
	"github.com/ankitdsmb/DictionaryImporter-sub008/importer"
	"github.com/ankitdsmb/DictionaryImporter-sub008/lexicon"
	"github.com/ankitdsmb/DictionaryImporter-sub008/logger"
	"github.com/ankitdsmb/DictionaryImporter-sub008/pipeline"
	"github.com/ankitdsmb/DictionaryImporter-sub008/pipeline/steps"
	"github.com/ankitdsmb/DictionaryImporter-sub008/progress"
	"github.com/ankitdsmb/DictionaryImporter-sub008/sources"
	"github.com/ankitdsmb/DictionaryImporter-sub008/sym"
)

// ImportCmd represents the import command - run a whole manifest
var ImportCmd = &cobra.Command{
	Use:   "import",
	Short: sym.Import + " Import every source in a manifest",
	Long: sym.Import + ` Import - batch dictionary ingestion.

Every source in the manifest is imported in parallel, bounded by the
configured database slots and fan-out cap. Each source stages its
entries, merges sealed staging rows into the canonical lexicon, and
(unless --import-only) runs its configured pipeline steps.

One source's failure never stops the others; the run reports every
failure at the end and exits non-zero if any source failed.

Examples:
  dictimport import -m sources.yaml                # Full run
  dictimport import -m sources.yaml --import-only  # Stage and merge only
  dictimport import -m sources.yaml --source EN-WIKT --source DE-WIKT
  dictimport import -m sources.yaml --json-progress | jq .`,
	RunE: runImport,
}

var (
	importManifestFlag string
	importDBFlag       string
	importOnlyFlag     bool
	importJSONFlag     bool
	importSourcesFlag  []string
)

func init() {
	ImportCmd.Flags().StringVarP(&importManifestFlag, "manifest", "m", "", "Source manifest path (default: import.manifest_path from config)")
	ImportCmd.Flags().StringVar(&importDBFlag, "db", "", "Database path (default: database.path from config)")
	ImportCmd.Flags().BoolVar(&importOnlyFlag, "import-only", false, "Stop after import and merge; skip pipeline steps")
	ImportCmd.Flags().BoolVar(&importJSONFlag, "json-progress", false, "Emit line-delimited JSON progress events on stdout")
	ImportCmd.Flags().StringSliceVar(&importSourcesFlag, "source", nil, "Import only the named source codes (repeatable)")
}

func runImport(cmd *cobra.Command, args []string) error {
	verbosity, _ := cmd.Flags().GetCount("verbose")

	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	manifestPath := importManifestFlag
	if manifestPath == "" {
		manifestPath = cfg.Import.ManifestPath
	}
	if manifestPath == "" {
		return errors.New("no source manifest: pass --manifest or set import.manifest_path")
	}

	sourceDefs, err := sources.LoadManifest(manifestPath)
	if err != nil {
		return err
	}
	if len(importSourcesFlag) > 0 {
		sourceDefs, err = filterSources(sourceDefs, importSourcesFlag)
		if err != nil {
			return err
		}
	}

	database, err := openDatabase(importDBFlag)
	if err != nil {
		return err
	}
	defer database.Close()

	var emitter progress.Emitter = progress.NewCLIEmitter(verbosity)
	if importJSONFlag {
		emitter = progress.NewJSONEmitter(os.Stdout)
	}

	settings := settingsFromConfig(cfg, len(sourceDefs))
	orch, _, err := buildOrchestrator(database, cfg, settings, emitter)
	if err != nil {
		return err
	}

	mode := importer.ModeFull
	if importOnlyFlag {
		mode = importer.ModeImportOnly
	}

	// Ctrl+C cancels the run; in-flight sources finish their current
	// operation and report as cancelled, not failed
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		fmt.Printf("\n%s Cancelling import...\n", sym.Import)
		cancel()
	}()

	if !importJSONFlag {
		fmt.Printf("%s Importing %d source(s) from %s\n\n", sym.Import, len(sourceDefs), manifestPath)
	}

	started := time.Now()
	results, runErr := orch.Run(ctx, sourceDefs, mode)
	if !importJSONFlag {
		printRunSummary(results, time.Since(started))
	}

	return runErr
}

// settingsFromConfig maps configuration onto run settings. A zero
// max_parallel_sources means one worker per source.
func settingsFromConfig(cfg *config.Config, sourceCount int) importer.Settings {
	maxParallel := cfg.Import.MaxParallelSources
	if maxParallel == 0 {
		maxParallel = sourceCount
	}
	return importer.Settings{
		MaxDatabaseSlots:   cfg.Import.MaxDatabaseSlots,
		MaxParallelSources: maxParallel,
		ParallelEnabled:    cfg.Import.ParallelEnabled,
		BatchSize:          cfg.Import.BatchSize,
		FinalizeTimeout:    cfg.FinalizeTimeout(),
	}
}

// buildOrchestrator wires the shared stores, step registry, and
// concurrency manager into an orchestrator over the open database.
func buildOrchestrator(database *sql.DB, cfg *config.Config, settings importer.Settings, emitter progress.Emitter) (*importer.Orchestrator, *importer.EngineFactory, error) {
	log := logger.Logger

	registry := pipeline.NewRegistry()
	steps.RegisterStandard(registry, database, log)

	defaultOrder := cfg.Pipeline.DefaultSteps
	if len(defaultOrder) == 0 {
		defaultOrder = steps.StandardOrder()
	}
	resolver := pipeline.NewOrderResolver(defaultOrder, cfg.Pipeline.SourceSteps)

	control := lexicon.NewStageStore(database)
	factory := importer.NewEngineFactory(database, sources.BuiltinFormats(), control, settings, emitter, log)
	manager := importer.NewConcurrencyManager(settings, log)
	merger := lexicon.NewCanonicalStore(database)

	orch, err := importer.NewOrchestrator(manager, factory, merger, control, registry, resolver, emitter, log)
	if err != nil {
		return nil, nil, err
	}
	return orch, factory, nil
}

// filterSources keeps only the named source codes, in the order given.
func filterSources(defs []importer.SourceDefinition, codes []string) ([]importer.SourceDefinition, error) {
	byCode := make(map[string]importer.SourceDefinition, len(defs))
	for _, def := range defs {
		byCode[strings.ToUpper(def.SourceCode)] = def
	}

	filtered := make([]importer.SourceDefinition, 0, len(codes))
	for _, code := range codes {
		def, ok := byCode[strings.ToUpper(code)]
		if !ok {
			return nil, errors.Wrapf(errors.ErrSourceNotFound, "%s is not in the manifest", code)
		}
		filtered = append(filtered, def)
	}
	return filtered, nil
}

func printRunSummary(results map[string]*importer.ImportResult, elapsed time.Duration) {
	codes := make([]string, 0, len(results))
	for code := range results {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var succeeded, failed, cancelled int

	fmt.Printf("\n%s Import Summary\n", sym.Lexicon)
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	for _, code := range codes {
		result := results[code]
		switch {
		case result.Success:
			succeeded++
			fmt.Printf("  ✔ %-12s %s (%s)\n", code, result.State, result.Duration.Round(time.Millisecond))
		case result.Cancelled:
			cancelled++
			fmt.Printf("  ∅ %-12s %s\n", code, result.State)
		default:
			failed++
			fmt.Printf("  ✘ %-12s %s: %v\n", code, result.State, result.Err)
		}
	}
	fmt.Printf("\n  %d succeeded, %d failed, %d cancelled in %s\n",
		succeeded, failed, cancelled, elapsed.Round(time.Millisecond))
}
