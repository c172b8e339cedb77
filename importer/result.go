package importer

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// SourceState is one position in a source's processing lifecycle:
// Pending -> Importing -> Merging -> (PipelineRunning | Skipped) ->
// Succeeded | Failed | Cancelled. No retry transitions exist here;
// retry is the caller re-running sources against an idempotent pipeline.
type SourceState string

const (
	StatePending         SourceState = "pending"
	StateImporting       SourceState = "importing"
	StateMerging         SourceState = "merging"
	StatePipelineRunning SourceState = "pipeline_running"
	StateSkipped         SourceState = "skipped"
	StateSucceeded       SourceState = "succeeded"
	StateFailed          SourceState = "failed"
	StateCancelled       SourceState = "cancelled"
)

// ImportResult is one source's outcome. Created when processing starts,
// finalized in a deferred block regardless of outcome, and never
// mutated afterwards.
type ImportResult struct {
	SourceCode string
	SourceName string
	State      SourceState

	// Success is true only for terminal state Succeeded.
	Success bool

	// Cancelled marks a run ended by context cancellation rather than
	// a business failure; cancelled sources never join a RunError.
	Cancelled bool

	Err         error
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration
}

// RunError bundles every per-source fault from one run. The
// orchestrator raises it only after all sources have finished, so one
// source's failure never hides another's.
type RunError struct {
	// Total is the number of sources in the run.
	Total int

	// Failures holds each failed source's error, keyed by source code.
	Failures map[string]error
}

// Error formats all failures in source-code order.
func (e *RunError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, code := range e.sortedCodes() {
		parts = append(parts, fmt.Sprintf("%s: %v", code, e.Failures[code]))
	}
	return fmt.Sprintf("import run failed for %d of %d sources: %s",
		len(e.Failures), e.Total, strings.Join(parts, "; "))
}

// Unwrap exposes the per-source errors to errors.Is/As, in source-code
// order.
func (e *RunError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, code := range e.sortedCodes() {
		errs = append(errs, e.Failures[code])
	}
	return errs
}

func (e *RunError) sortedCodes() []string {
	codes := make([]string, 0, len(e.Failures))
	for code := range e.Failures {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
