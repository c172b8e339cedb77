package logger

// Output controls what categories of information are shown at each verbosity level.
//
// Unlike log levels (which filter by severity), output categories control
// WHAT types of information are displayed regardless of severity.
//
// Verbosity Levels:
//
//	0 (default) - User-facing output only: results, errors with hints, final status
//	1 (-v)      - + Per-source progress, startup info, run summaries
//	2 (-vv)     - + Batch detail, timing, config loaded, DB stats
//	3 (-vvv)    - + SQL queries, pipeline step flow, slot acquisition
//	4 (-vvvv)   - + Full record and entry dumps

// OutputCategory defines a category of output that can be enabled/disabled
type OutputCategory int

const (
	// Level 0 (default) - Always shown
	OutputResults    OutputCategory = iota // Run results, merged counts
	OutputErrors                           // Errors with hints and resolution steps
	OutputUserStatus                       // Final success/failure status

	// Level 1 (-v) - Informational
	OutputProgress     // Progress indicators (e.g., "EN-WIKT 5000/120000 records")
	OutputStartup      // Startup banners, config summary
	OutputSourceStatus // Source registered/started/finished status
	OutputRunSummary   // Per-run aggregate summaries

	// Level 2 (-vv) - Detailed
	OutputBatchDetail // Per-batch record and entry counts
	OutputTiming      // Operation timing (e.g., "merge took 42ms")
	OutputConfig      // Config values loaded/applied
	OutputDBStats     // Database statistics and connection info

	// Level 3 (-vvv) - Debug
	OutputSQLQueries // Individual SQL queries executed
	OutputStepFlow   // Pipeline step entry/exit and ordering
	OutputSlotTrace  // Resource slot and source lock acquisition
	OutputInternalOp // Internal operation flow

	// Level 4 (-vvvv) - Full dump
	OutputRecordDump // Full raw record contents
	OutputEntryDump  // Full transformed entry contents
)

// categoryLevels maps each output category to its minimum verbosity level
var categoryLevels = map[OutputCategory]int{
	// Level 0 - Always shown
	OutputResults:    VerbosityUser,
	OutputErrors:     VerbosityUser,
	OutputUserStatus: VerbosityUser,

	// Level 1 - Informational
	OutputProgress:     VerbosityInfo,
	OutputStartup:      VerbosityInfo,
	OutputSourceStatus: VerbosityInfo,
	OutputRunSummary:   VerbosityInfo,

	// Level 2 - Detailed
	OutputBatchDetail: VerbosityDebug,
	OutputTiming:      VerbosityDebug,
	OutputConfig:      VerbosityDebug,
	OutputDBStats:     VerbosityDebug,

	// Level 3 - Debug
	OutputSQLQueries: VerbosityTrace,
	OutputStepFlow:   VerbosityTrace,
	OutputSlotTrace:  VerbosityTrace,
	OutputInternalOp: VerbosityTrace,

	// Level 4 - Full dump
	OutputRecordDump: VerbosityAll,
	OutputEntryDump:  VerbosityAll,
}

// ShouldOutput returns true if the given category should be shown at the given verbosity
func ShouldOutput(verbosity int, category OutputCategory) bool {
	minLevel, ok := categoryLevels[category]
	if !ok {
		// Unknown category, default to highest verbosity required
		return verbosity >= VerbosityAll
	}
	return verbosity >= minLevel
}

// categoryNames provides human-readable names for output categories
var categoryNames = map[OutputCategory]string{
	OutputResults:      "results",
	OutputErrors:       "errors",
	OutputUserStatus:   "status",
	OutputProgress:     "progress",
	OutputStartup:      "startup",
	OutputSourceStatus: "source-status",
	OutputRunSummary:   "run-summary",
	OutputBatchDetail:  "batch-detail",
	OutputTiming:       "timing",
	OutputConfig:       "config",
	OutputDBStats:      "db-stats",
	OutputSQLQueries:   "sql",
	OutputStepFlow:     "step-flow",
	OutputSlotTrace:    "slot-trace",
	OutputInternalOp:   "internal",
	OutputRecordDump:   "record-dump",
	OutputEntryDump:    "entry-dump",
}

// CategoryName returns the human-readable name for an output category
func CategoryName(category OutputCategory) string {
	if name, ok := categoryNames[category]; ok {
		return name
	}
	return "unknown"
}

// EnabledCategories returns all output categories enabled at the given verbosity
func EnabledCategories(verbosity int) []OutputCategory {
	var enabled []OutputCategory
	for cat, minLevel := range categoryLevels {
		if verbosity >= minLevel {
			enabled = append(enabled, cat)
		}
	}
	return enabled
}
