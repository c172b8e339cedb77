// Package pipeline runs post-merge processing steps against the canonical
// lexicon.
//
// Steps are registered by name, ordered per source by the resolver, and
// executed strictly in sequence by the runner. The step framework stays
// decoupled from step implementations: infrastructure routes by name and
// step packages own their semantics.
package pipeline

import (
	"context"
)

// Context carries the per-source state steps operate on.
type Context struct {
	// SourceCode identifies the dictionary source being processed.
	SourceCode string

	// SourceName is the human-readable source name for logs.
	SourceName string

	// RunID ties step log lines to one orchestrator run.
	RunID string

	// RebuildGraph makes the graph step clear the source's existing
	// relations before building.
	RebuildGraph bool
}

// Step defines the interface for one named unit of post-merge processing.
//
// Context cancellation: steps doing long scans must check ctx.Done()
// periodically and return ctx.Err() when cancelled.
type Step interface {
	// Execute runs the step against the source in pctx.
	// Returns nil on success, error on failure; the runner stops the
	// source's pipeline at the first failing step.
	Execute(ctx context.Context, pctx *Context) error

	// Name returns the step name used for registration and ordering.
	Name() string
}
