// Package errors provides error handling for the dictionary importer.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Hints and details for operator-facing messages
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Check errors
//	if errors.Is(err, sql.ErrNoRows) {
//	    // handle not found
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is         = crdb.Is
	IsAny      = crdb.IsAny
	As         = crdb.As
	Unwrap     = crdb.Unwrap
	UnwrapOnce = crdb.UnwrapOnce
	UnwrapAll  = crdb.UnwrapAll
	Join       = crdb.Join
)

// Stack trace access
var (
	GetReportableStackTrace = crdb.GetReportableStackTrace
)

// GetStack is an alias for GetReportableStackTrace for convenience.
var GetStack = crdb.GetReportableStackTrace

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Common sentinel errors for the import pipeline.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrNotFound indicates the requested row or resource does not exist
	ErrNotFound = New("not found")

	// ErrConflict indicates a uniqueness or state conflict in the store
	ErrConflict = New("resource conflict")

	// ErrTimeout indicates an operation ran out of its bounded time window
	ErrTimeout = New("operation timed out")

	// ErrSourceNotFound indicates a source code with no configured definition
	ErrSourceNotFound = New("source not found")

	// ErrStepNotRegistered indicates a pipeline order names a step that has
	// no registered implementation
	ErrStepNotRegistered = New("pipeline step not registered")

	// ErrNoSourceCode indicates an import stream finished without a single
	// entry carrying a source code, so the merge-completion guarantee cannot
	// be honored. Treated as a misconfiguration of the source or its
	// extractor, not as an empty-but-healthy source.
	ErrNoSourceCode = New("no source code observed during extraction")

	// ErrUnknownFormat indicates a source manifest names a format with no
	// registered extractor/transformer pair
	ErrUnknownFormat = New("unknown source format")
)

// IsNotFoundError checks if an error is or wraps ErrNotFound.
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsTimeoutError checks if an error is or wraps ErrTimeout.
func IsTimeoutError(err error) bool {
	return err != nil && Is(err, ErrTimeout)
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrap(ErrNotFound, Newf(format, args...).Error())
}
