// Package progress reports import activity to whatever is driving the
// run: a terminal, a parent process consuming JSON lines, or nothing.
package progress

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pterm/pterm"

	"github.com/ankitdsmb/DictionaryImporter-sub008/logger"
)

// Emitter receives per-source progress events from the engine and
// orchestrator. Implementations must be safe for concurrent use, since
// sources emit in parallel.
type Emitter interface {
	// EmitStage announces that a source entered a named stage.
	EmitStage(sourceCode, stage, message string)

	// EmitProgress reports incremental counts within a stage.
	EmitProgress(sourceCode string, count int64, metadata map[string]interface{})

	// EmitComplete reports a source finishing with a summary.
	EmitComplete(sourceCode string, summary map[string]interface{})

	// EmitError reports a source failing in a stage.
	EmitError(sourceCode, stage string, err error)
}

// Event is one line-delimited JSON progress event.
type Event struct {
	Type      string                 `json:"type"` // "stage", "progress", "complete", "error"
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
}

// CLIEmitter prints progress to the terminal using pterm.
type CLIEmitter struct {
	verbosity int
}

// NewCLIEmitter creates a terminal emitter. Higher verbosity prints
// per-batch progress and completion summaries.
func NewCLIEmitter(verbosity int) *CLIEmitter {
	return &CLIEmitter{verbosity: verbosity}
}

// EmitStage prints a stage announcement.
func (e *CLIEmitter) EmitStage(sourceCode, stage, message string) {
	pterm.Printf("🔄 %s %s: %s\n", pterm.LightMagenta(sourceCode), pterm.LightCyan(stage), message)
}

// EmitProgress prints an incremental count.
func (e *CLIEmitter) EmitProgress(sourceCode string, count int64, metadata map[string]interface{}) {
	if !logger.ShouldOutput(e.verbosity, logger.OutputProgress) {
		return
	}
	unit := "entries"
	if u, ok := metadata["unit"].(string); ok {
		unit = u
	}
	pterm.Printf("✅ %s staged %s %s\n", pterm.LightMagenta(sourceCode),
		pterm.Green(fmt.Sprintf("%d", count)), unit)
	if logger.ShouldLogAll(e.verbosity) {
		for key, value := range metadata {
			if key == "unit" {
				continue
			}
			pterm.Printf("  %s: %v\n", key, value)
		}
	}
}

// EmitComplete prints a completion summary.
func (e *CLIEmitter) EmitComplete(sourceCode string, summary map[string]interface{}) {
	pterm.Success.Printf("%s complete\n", sourceCode)
	if logger.ShouldOutput(e.verbosity, logger.OutputSourceStatus) {
		for key, value := range summary {
			pterm.Printf("  %s: %v\n", key, value)
		}
	}
}

// EmitError prints a source failure.
func (e *CLIEmitter) EmitError(sourceCode, stage string, err error) {
	pterm.Error.Printf("%s failed in %s: %v\n", sourceCode, stage, err)
}

// JSONEmitter writes line-delimited JSON events for a parent process.
// The mutex keeps concurrently emitting sources from interleaving lines.
type JSONEmitter struct {
	mu      sync.Mutex
	encoder *json.Encoder
}

// NewJSONEmitter creates a JSON emitter writing to w.
func NewJSONEmitter(w io.Writer) *JSONEmitter {
	return &JSONEmitter{encoder: json.NewEncoder(w)}
}

func (e *JSONEmitter) emit(eventType, sourceCode string, data map[string]interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.encoder.Encode(Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    sourceCode,
		Data:      data,
	})
}

// EmitStage emits a stage event.
func (e *JSONEmitter) EmitStage(sourceCode, stage, message string) {
	e.emit("stage", sourceCode, map[string]interface{}{
		"stage":   stage,
		"message": message,
	})
}

// EmitProgress emits a progress event.
func (e *JSONEmitter) EmitProgress(sourceCode string, count int64, metadata map[string]interface{}) {
	data := map[string]interface{}{
		"count": count,
	}
	for k, v := range metadata {
		data[k] = v
	}
	e.emit("progress", sourceCode, data)
}

// EmitComplete emits a completion event.
func (e *JSONEmitter) EmitComplete(sourceCode string, summary map[string]interface{}) {
	e.emit("complete", sourceCode, summary)
}

// EmitError emits an error event.
func (e *JSONEmitter) EmitError(sourceCode, stage string, err error) {
	e.emit("error", sourceCode, map[string]interface{}{
		"stage": stage,
		"error": err.Error(),
	})
}

// NopEmitter discards all events. Used when no progress surface exists,
// for example under watch mode or in tests.
type NopEmitter struct{}

// NewNopEmitter creates an emitter that discards everything.
func NewNopEmitter() *NopEmitter {
	return &NopEmitter{}
}

func (NopEmitter) EmitStage(sourceCode, stage, message string) {}

func (NopEmitter) EmitProgress(sourceCode string, count int64, metadata map[string]interface{}) {}

func (NopEmitter) EmitComplete(sourceCode string, summary map[string]interface{}) {}

func (NopEmitter) EmitError(sourceCode, stage string, err error) {}
