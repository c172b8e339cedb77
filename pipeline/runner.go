package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ankitdsmb/DictionaryImporter-sub008/errors"
	"github.com/ankitdsmb/DictionaryImporter-sub008/logger"
)

// Runner executes resolved step names strictly in order against one
// Context. The first failing step stops the source's pipeline; there is no
// retry and no skip.
type Runner struct {
	registry *Registry
	logger   *zap.SugaredLogger
}

// NewRunner creates a step runner.
func NewRunner(registry *Registry, log *zap.SugaredLogger) *Runner {
	return &Runner{
		registry: registry,
		logger:   log.Named("pipeline.runner"),
	}
}

// Run executes the named steps in order. Cancellation is checked between
// steps; a cancelled run returns the context error.
func (r *Runner) Run(ctx context.Context, names []string, pctx *Context) error {
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "pipeline cancelled before step %s", name)
		}

		step := r.registry.Get(name)
		if step == nil {
			// Validate at startup should make this unreachable
			return errors.Newf("unknown pipeline step: %s", name)
		}

		r.logger.Infow("Step starting",
			logger.FieldStep, name,
			logger.FieldSource, pctx.SourceCode)

		start := time.Now()
		if err := step.Execute(ctx, pctx); err != nil {
			r.logger.Errorw("Step failed",
				logger.FieldStep, name,
				logger.FieldSource, pctx.SourceCode,
				logger.FieldDurationMS, time.Since(start).Milliseconds(),
				logger.FieldError, err)
			return errors.Wrapf(err, "step %s failed for %s", name, pctx.SourceCode)
		}

		r.logger.Infow("Step completed",
			logger.FieldStep, name,
			logger.FieldSource, pctx.SourceCode,
			logger.FieldDurationMS, time.Since(start).Milliseconds())
	}
	return nil
}
