package importer

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ankitdsmb/DictionaryImporter-sub008/errors"
	"github.com/ankitdsmb/DictionaryImporter-sub008/lexicon"
	"github.com/ankitdsmb/DictionaryImporter-sub008/logger"
	"github.com/ankitdsmb/DictionaryImporter-sub008/pipeline"
	"github.com/ankitdsmb/DictionaryImporter-sub008/progress"
)

// Orchestrator coordinates a whole run: every source goes through
// import and merge under the concurrency guard, then its resolved step
// order, in parallel across sources with per-source failure isolation.
type Orchestrator struct {
	concurrency *ConcurrencyManager
	factory     *EngineFactory
	merger      MergeExecutor
	control     ImportControl
	resolver    *pipeline.OrderResolver
	runner      *pipeline.Runner
	emitter     progress.Emitter
	log         *zap.SugaredLogger
}

// NewOrchestrator wires an orchestrator and validates the configured
// step orders against the registry, so an order naming an unregistered
// step fails here instead of mid-run.
func NewOrchestrator(
	concurrency *ConcurrencyManager,
	factory *EngineFactory,
	merger MergeExecutor,
	control ImportControl,
	registry *pipeline.Registry,
	resolver *pipeline.OrderResolver,
	emitter progress.Emitter,
	log *zap.SugaredLogger,
) (*Orchestrator, error) {
	if err := registry.Validate(resolver.ConfiguredNames()...); err != nil {
		return nil, errors.Wrap(err, "invalid pipeline configuration")
	}
	return &Orchestrator{
		concurrency: concurrency,
		factory:     factory,
		merger:      merger,
		control:     control,
		resolver:    resolver,
		runner:      pipeline.NewRunner(registry, log),
		emitter:     emitter,
		log:         log.Named("importer.orchestrator"),
	}, nil
}

// Run processes every source and returns all per-source results. The
// error is a *RunError bundling every non-cancelled fault, the context
// error when the run was cancelled without other faults, or nil.
func (o *Orchestrator) Run(ctx context.Context, sourceDefs []SourceDefinition, mode PipelineMode) (map[string]*ImportResult, error) {
	runID := uuid.NewString()
	log := o.log.With(logger.FieldRunID, runID)
	metrics := NewImportMetrics(len(sourceDefs), mode)

	opts := o.concurrency.ParallelOptions()
	if warning := checkMemoryPressure(opts.MaxConcurrency); warning != "" {
		log.Warnw("Memory pressure check", "warning", warning)
	}
	log.Infow("Import run starting",
		logger.FieldCount, len(sourceDefs),
		"mode", string(mode),
		"max_parallel", opts.MaxConcurrency,
	)

	results := make(map[string]*ImportResult, len(sourceDefs))
	var resultsMu sync.Mutex

	// Plain group, not WithContext: one source's failure must not
	// cancel its siblings.
	var g errgroup.Group
	g.SetLimit(opts.MaxConcurrency)
	for _, source := range sourceDefs {
		source := source
		g.Go(func() error {
			result := &ImportResult{
				SourceCode: source.SourceCode,
				SourceName: source.SourceName,
				State:      StatePending,
				StartedAt:  time.Now(),
			}
			// Recorded exactly once, whatever happens inside.
			defer func() {
				resultsMu.Lock()
				results[source.SourceCode] = result
				resultsMu.Unlock()
				metrics.RecordResult(result)
			}()
			o.processSource(ctx, source, mode, runID, result)
			return nil
		})
	}
	_ = g.Wait()
	metrics.Finish()

	snapshot := metrics.Snapshot()
	concurrencyStats := o.concurrency.Metrics()
	log.Infow("Import run finished",
		"total", snapshot.TotalSources,
		"succeeded", snapshot.SuccessfulSources,
		"failed", snapshot.FailedSources,
		"cancelled", snapshot.CancelledSources,
		"average_duration_ms", snapshot.AverageDuration.Milliseconds(),
		"high_water_concurrency", concurrencyStats.HighWaterConcurrency,
		"waiting", concurrencyStats.Waiting,
	)

	failures := make(map[string]error)
	for code, result := range results {
		if result.Err != nil && !result.Cancelled {
			failures[code] = result.Err
		}
	}
	if len(failures) > 0 {
		return results, &RunError{Total: len(sourceDefs), Failures: failures}
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// processSource runs one source to a terminal state, mutating result.
// The deferred block classifies the outcome: cancellation is kept apart
// from business failure.
func (o *Orchestrator) processSource(ctx context.Context, source SourceDefinition, mode PipelineMode, runID string, result *ImportResult) {
	log := o.log.With(
		logger.FieldRunID, runID,
		logger.FieldSource, source.SourceCode,
	)

	var err error
	defer func() {
		result.CompletedAt = time.Now()
		result.Duration = result.CompletedAt.Sub(result.StartedAt)
		state := string(result.State)
		switch {
		case err == nil:
			result.State = StateSucceeded
			result.Success = true
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			result.State = StateCancelled
			result.Cancelled = true
			result.Err = err
			log.Warnw("Source cancelled",
				logger.FieldState, state,
				logger.FieldDurationMS, result.Duration.Milliseconds(),
			)
		default:
			result.State = StateFailed
			result.Err = err
			o.emitter.EmitError(source.SourceCode, state, err)
			log.Errorw("Source failed",
				logger.FieldState, state,
				logger.FieldDurationMS, result.Duration.Milliseconds(),
				logger.FieldError, err,
			)
		}
	}()

	if err = ctx.Err(); err != nil {
		err = errors.Wrapf(err, "run cancelled before %s started", source.SourceCode)
		return
	}

	engine, engineErr := o.factory.EngineFor(source)
	if engineErr != nil {
		err = engineErr
		return
	}

	// Stage statuses cached from an earlier run in this process must
	// not leak into this one.
	o.control.ResetSource(source.SourceCode)

	err = o.concurrency.ExecuteWithConcurrencyControl(ctx, source.SourceCode, func(opCtx context.Context) error {
		result.State = StateImporting
		o.emitter.EmitStage(source.SourceCode, pipeline.PseudoStageImport, "importing "+source.SourceName)
		stats, runErr := engine.Run(opCtx)
		if runErr != nil {
			return runErr
		}
		log.Infow("Source staged",
			"records", stats.RecordsRead,
			"staged", stats.Staged,
			"ineligible", stats.Ineligible,
			"invalid", stats.Invalid,
		)

		result.State = StateMerging
		o.emitter.EmitStage(source.SourceCode, pipeline.PseudoStageMerge, "merging staged entries")
		mergeStats, mergeErr := o.merger.MergeFromStaging(opCtx, source.SourceCode)
		if mergeErr != nil {
			return errors.Wrapf(mergeErr, "merge failed for %s", source.SourceCode)
		}
		if markErr := o.control.MarkCompleted(opCtx, source.SourceCode, lexicon.StageMerge); markErr != nil {
			return errors.Wrapf(markErr, "failed to mark merge complete for %s", source.SourceCode)
		}
		log.Infow("Source merged",
			"words_inserted", mergeStats.WordsInserted,
			"senses_inserted", mergeStats.SensesInserted,
		)
		return nil
	})
	if err != nil {
		return
	}

	if mode == ModeImportOnly {
		result.State = StateSkipped
		o.emitter.EmitComplete(source.SourceCode, map[string]interface{}{
			"mode": string(mode),
		})
		return
	}

	result.State = StatePipelineRunning
	names := o.resolver.Resolve(source.SourceCode)
	pctx := &pipeline.Context{
		SourceCode:   source.SourceCode,
		SourceName:   source.SourceName,
		RunID:        runID,
		RebuildGraph: source.RebuildGraph,
	}
	if err = o.runner.Run(ctx, names, pctx); err != nil {
		return
	}
	o.emitter.EmitComplete(source.SourceCode, map[string]interface{}{
		"steps": len(names),
	})
}
