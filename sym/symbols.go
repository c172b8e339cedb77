// Package sym defines canonical symbols for dictimport operations and
// system markers. These symbols are stable across CLI output, logs, and
// documentation.
package sym

// Operation symbols. Each prefixes the CLI surface of one command
// family and the log lines of its domain.
const (
	Import   = "⨳" // import — ingest external dictionary data
	Merge    = "⋈" // merge — staging joined into the canonical lexicon
	Pipeline = "⟶" // pipeline — post-merge refinement steps, in order
	Watch    = "✦" // watch — filesystem events triggering imports
)

// System infrastructure symbols.
const (
	DB      = "⊔" // database/storage layer
	Source  = "▤" // source data file (JSONL, TSV, gzip)
	Lexicon = "▣" // canonical lexicon content
	Config  = "≡" // configuration and system settings
)

// Labels maps each glyph to its short human-readable name, for legends
// and tooltips.
var Labels = map[string]string{
	Import:   "Import",
	Merge:    "Merge",
	Pipeline: "Pipeline",
	Watch:    "Watch",
	DB:       "Database",
	Source:   "Source",
	Lexicon:  "Lexicon",
	Config:   "Config",
}

// Descriptions explains each glyph for help surfaces.
var Descriptions = map[string]string{
	Import:   "Ingest external dictionary data into staging",
	Merge:    "Join sealed staging rows into the canonical lexicon",
	Pipeline: "Post-merge refinement steps, in configured order",
	Watch:    "Filesystem events triggering imports",
	DB:       "Database and storage layer",
	Source:   "Source data file",
	Lexicon:  "Canonical lexicon content",
	Config:   "Configuration and system settings",
}
