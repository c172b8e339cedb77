// Package importer orchestrates dictionary imports: per-source engines
// drive extraction into staging, the concurrency manager bounds shared
// database access, and the orchestrator fans sources out in parallel
// while isolating their failures.
package importer

import (
	"io"
)

// SourceDefinition identifies one configured dictionary source.
// Immutable, supplied once at startup.
type SourceDefinition struct {
	// SourceCode is the stable identifier rows are keyed by, e.g. "EN-WIKT".
	SourceCode string

	// SourceName is the human-readable name for logs and summaries.
	SourceName string

	// Format names the registered extractor/transformer pair.
	Format string

	// RebuildGraph clears the source's existing relation edges before
	// the graph step rebuilds them.
	RebuildGraph bool

	// Open returns the raw byte stream to import. Called once per run;
	// the engine closes it.
	Open func() (io.ReadCloser, error)
}

// PipelineMode selects how far a run goes after staging.
type PipelineMode string

const (
	// ModeImportOnly stops after import and merge.
	ModeImportOnly PipelineMode = "import_only"

	// ModeFull runs the source's complete step order after merge.
	ModeFull PipelineMode = "full"
)
