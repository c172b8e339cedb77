package logger

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"
)

// Gruvbox Dark color palette (warm, muted, easy on eyes)
type gruvboxColors struct {
	fg       string
	aqua     string
	orange   string
	yellow   string
	green    string
	blue     string
	purple   string
	red      string
	redBg    string
	yellowBg string
}

var gruvbox = gruvboxColors{
	fg:       "\x1b[38;5;223m", // Soft cream (#ebdbb2)
	aqua:     "\x1b[38;5;108m", // Muted cyan-green (#8ec07c)
	orange:   "\x1b[38;5;208m", // Warm orange (#fe8019)
	yellow:   "\x1b[38;5;214m", // Soft yellow (#fabd2f)
	green:    "\x1b[38;5;142m", // Muted green (#b8bb26)
	blue:     "\x1b[38;5;109m", // Soft blue (#83a598)
	purple:   "\x1b[38;5;175m", // Muted purple (#d3869b)
	red:      "\x1b[38;5;167m", // Warm red (#fb4934)
	redBg:    "\x1b[48;5;88m",  // Dark red background
	yellowBg: "\x1b[48;5;58m",  // Dark yellow background
}

func colorComponent(name string) string {
	// Hash for consistent color per component
	hash := 0
	for _, c := range name {
		hash += int(c)
	}
	if hash%2 == 0 {
		return gruvbox.orange
	}
	return gruvbox.yellow
}

// colorMessage picks a base color from message content so related operations
// group visually: loader/merge activity green, source lifecycle orange,
// extraction and staging blue.
func colorMessage(msg string) string {
	lower := strings.ToLower(msg)

	if strings.Contains(lower, "merge") || strings.Contains(lower, "finalize") ||
		strings.Contains(lower, "completed") || strings.Contains(lower, "verified") {
		return gruvbox.green
	}
	if strings.Contains(lower, "extract") || strings.Contains(lower, "staging") ||
		strings.Contains(lower, "batch") || strings.Contains(lower, "record") {
		return gruvbox.blue
	}
	if strings.Contains(lower, "starting") || strings.Contains(lower, "started") ||
		strings.Contains(lower, "import") || strings.Contains(lower, "config") {
		return gruvbox.orange
	}
	return gruvbox.fg
}

// bracketPattern matches bracketed contexts in log messages: [source:EN-WIKT],
// [canonicalize], [run:8f2e], etc.
var bracketPattern = regexp.MustCompile(`\[([^\]]+)\]`)

// colorizeMessage parses a log message and applies context-aware colorization:
// source and run tags get the ID color, pipeline step markers the stage color.
// Returns the fully colorized message string with embedded ANSI codes.
func colorizeMessage(msg string) string {
	baseColor := colorMessage(msg)

	result := strings.Builder{}
	lastIndex := 0

	matches := bracketPattern.FindAllStringSubmatchIndex(msg, -1)
	for _, match := range matches {
		textBefore := msg[lastIndex:match[0]]
		if textBefore != "" {
			result.WriteString(baseColor)
			result.WriteString(textBefore)
			result.WriteString(colorReset)
		}

		bracketStart := match[0]
		bracketEnd := match[1]
		content := msg[match[2]:match[3]]

		// Source and run tags carry identity; everything else is a stage marker
		// like [canonicalize] or [verify].
		var color string
		if strings.HasPrefix(content, "source:") || strings.HasPrefix(content, "run:") {
			color = gruvbox.blue
		} else {
			color = gruvbox.orange
		}

		result.WriteString(color)
		result.WriteString(msg[bracketStart:bracketEnd])
		result.WriteString(colorReset)

		lastIndex = bracketEnd
	}

	remaining := msg[lastIndex:]
	if remaining != "" {
		result.WriteString(baseColor)
		result.WriteString(remaining)
		result.WriteString(colorReset)
	}

	return result.String()
}

// minimalEncoder implements a calm, compact console encoder
// Format: "13:04:35  i.engine  Batch loaded  EN-WIKT (500 entries, 3 batches)"
type minimalEncoder struct {
	zapcore.Encoder // Embed a base encoder for field serialization
	buf             *buffer.Buffer
}

func newMinimalEncoder() *minimalEncoder {
	// Create a base JSON encoder for field serialization (internal use only)
	baseEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())

	return &minimalEncoder{
		Encoder: baseEncoder,
		buf:     buffer.NewPool().Get(),
	}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	return &minimalEncoder{
		Encoder: enc.Encoder.Clone(),
		buf:     buffer.NewPool().Get(),
	}
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	final := buffer.NewPool().Get()

	// Time
	final.AppendString(gruvbox.aqua)
	final.AppendString(ent.Time.Format("15:04:05"))
	final.AppendString(colorReset)

	// Level: only show for WARN/ERROR with bold + background
	if ent.Level != zapcore.InfoLevel {
		final.AppendString("  ")
		final.AppendString(levelColorString(ent.Level))
	}

	// Component name (abbreviated) for visual grouping
	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(colorComponent(ent.LoggerName))
		final.AppendString(abbreviateName(ent.LoggerName))
		final.AppendString(colorReset)
	}

	// Message: context-aware colorization of brackets and content
	final.AppendString("  ")
	final.AppendString(colorizeMessage(ent.Message))

	// Fields: every field is rendered, known keys with special formatting
	if len(fields) > 0 {
		if rendered := renderFields(fields); rendered != "" {
			final.AppendString("  ")
			final.AppendString(rendered)
		}
	}

	final.AppendString("\n")
	return final, nil
}

// levelColorString returns bold + colored + background for WARN/ERROR
func levelColorString(level zapcore.Level) string {
	switch level {
	case zapcore.WarnLevel:
		return colorBold + gruvbox.yellowBg + gruvbox.yellow + "WARN" + colorReset
	case zapcore.ErrorLevel:
		return colorBold + gruvbox.redBg + gruvbox.red + "ERROR" + colorReset
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return colorBold + gruvbox.redBg + gruvbox.red + level.CapitalString() + colorReset
	default:
		return ""
	}
}

// abbreviateName shortens component names: importer -> importer, importer.engine -> i.engine
func abbreviateName(name string) string {
	parts := strings.Split(name, ".")
	if len(parts) > 1 {
		return string(parts[0][0]) + "." + strings.Join(parts[1:], ".")
	}
	return name
}

// fieldValue extracts the value from a zap field, handling different field types
func fieldValue(field zapcore.Field) string {
	switch field.Type {
	case zapcore.StringType:
		return field.String
	case zapcore.BoolType:
		if field.Integer == 1 {
			return "true"
		}
		return "false"
	case zapcore.Int64Type, zapcore.Int32Type, zapcore.Int16Type, zapcore.Int8Type,
		zapcore.Uint64Type, zapcore.Uint32Type, zapcore.Uint16Type, zapcore.Uint8Type:
		return strconv.FormatInt(field.Integer, 10)
	case zapcore.Float64Type:
		return strconv.FormatFloat(math.Float64frombits(uint64(field.Integer)), 'g', -1, 64)
	case zapcore.Float32Type:
		return strconv.FormatFloat(float64(math.Float32frombits(uint32(field.Integer))), 'g', -1, 32)
	case zapcore.DurationType:
		return time.Duration(field.Integer).String()
	case zapcore.SkipType:
		return ""
	}

	if field.Interface != nil {
		return fmt.Sprintf("%v", field.Interface)
	}
	return ""
}

// renderFields formats structured fields for console output. Identity fields
// (source, run_id) show bare values in the ID color, durations get a unit
// suffix, and the entries/batches pair collapses into a compact summary.
// Everything else renders as key=value so no field is ever silently dropped.
func renderFields(fields []zapcore.Field) string {
	var values []string
	var entryCount, batchCount string

	for _, field := range fields {
		if field.Type == zapcore.SkipType {
			continue
		}
		val := fieldValue(field)

		switch field.Key {
		case FieldSource, FieldRunID:
			if val != "" {
				values = append(values, gruvbox.blue+val+colorReset)
			}
		case FieldEntries:
			entryCount = val
		case FieldBatches:
			batchCount = val
		case FieldDurationMS:
			if val != "" {
				values = append(values, gruvbox.purple+val+colorReset+"ms")
			}
		default:
			values = append(values, gruvbox.fg+field.Key+colorReset+"="+val)
		}
	}

	// Special formatting for batch stats
	if entryCount != "" || batchCount != "" {
		if entryCount == "" {
			entryCount = "0"
		}
		if batchCount == "" {
			batchCount = "0"
		}
		fg := gruvbox.fg
		num := gruvbox.purple
		values = append(values, fg+"("+num+entryCount+colorReset+fg+" entries, "+num+batchCount+colorReset+fg+" batches)"+colorReset)
	}

	if len(values) == 0 {
		return ""
	}

	return strings.Join(values, " ")
}
