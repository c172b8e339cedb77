package logger

import (
	"context"

	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across the importer.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Identity and context
	FieldRunID  = "run_id"
	FieldSource = "source"
	FieldStep   = "step"

	// Components
	FieldComponent = "component"
	FieldOperation = "operation"

	// Dictionary data
	FieldLanguage = "language"
	FieldFormat   = "format"
	FieldHeadword = "headword"

	// Timing
	FieldDurationMS = "duration_ms"
	FieldStartTime  = "start_time"
	FieldEndTime    = "end_time"

	// Errors
	FieldError     = "error"
	FieldErrorType = "error_type"

	// Counts and sizes
	FieldCount      = "count"
	FieldBatchSize  = "batch_size"
	FieldTotalCount = "total_count"
	FieldEntries    = "entries"
	FieldBatches    = "batches"

	// Status
	FieldStatus = "status"
	FieldState  = "state"

	// Files and paths
	FieldFile = "file"
	FieldPath = "path"
)

// Context keys for propagating logging context
type contextKey string

const (
	runIDKey     contextKey = "logger_run_id"
	sourceKey    contextKey = "logger_source"
	componentKey contextKey = "logger_component"
)

// WithRunID adds an import run ID to the context for logging
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// WithSource adds a source code to the context for logging
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, sourceKey, source)
}

// WithComponent adds a component name to the context for logging
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, componentKey, component)
}

// FieldsFromContext extracts logging fields from context.
// Returns key-value pairs suitable for use with Infow/Errorw/etc.
func FieldsFromContext(ctx context.Context) []interface{} {
	var fields []interface{}

	if runID, ok := ctx.Value(runIDKey).(string); ok && runID != "" {
		fields = append(fields, FieldRunID, runID)
	}
	if source, ok := ctx.Value(sourceKey).(string); ok && source != "" {
		fields = append(fields, FieldSource, source)
	}
	if component, ok := ctx.Value(componentKey).(string); ok && component != "" {
		fields = append(fields, FieldComponent, component)
	}

	return fields
}

// LoggerFromContext returns a logger with fields extracted from context.
// Use this to get a logger that automatically includes run_id, source, etc.
func LoggerFromContext(ctx context.Context) *zap.SugaredLogger {
	fields := FieldsFromContext(ctx)
	if len(fields) == 0 {
		return Logger
	}
	return Logger.With(fields...)
}

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	type Engine struct {
//	    logger *zap.SugaredLogger
//	}
//
//	func NewEngine() *Engine {
//	    return &Engine{
//	        logger: logger.ComponentLogger("importer.engine"),
//	    }
//	}
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// ChildLogger creates a child logger with additional context.
// Use for sub-operations that need extra context fields.
//
// Example:
//
//	sourceLogger := logger.ChildLogger(baseLogger, "source", src.Code)
func ChildLogger(parent *zap.SugaredLogger, keysAndValues ...interface{}) *zap.SugaredLogger {
	return parent.With(keysAndValues...)
}
