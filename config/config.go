package config

import (
	"strings"
	"time"
)

// Config represents the core dictionary importer configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Import   ImportConfig   `mapstructure:"import"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Watch    WatchConfig    `mapstructure:"watch"`
	Log      LogConfig      `mapstructure:"log"`
}

// DatabaseConfig configures the SQLite lexicon database.
// BusyTimeoutMS maps to the SQLite busy_timeout pragma (default: 5000).
type DatabaseConfig struct {
	Path          string `mapstructure:"path"`
	BusyTimeoutMS int    `mapstructure:"busy_timeout_ms"`
}

// ImportConfig configures the import run: concurrency bounds, batching,
// finalize deadline, and the source manifest location.
//
// MaxDatabaseSlots bounds concurrent shared-resource use across all sources.
// MaxParallelSources caps the fan-out; 0 means one worker per source.
// ParallelEnabled false serializes sources regardless of the fan-out cap.
// MemoryLimitPercent defers new sources above that system memory usage;
// 0 disables the check.
type ImportConfig struct {
	MaxDatabaseSlots       int     `mapstructure:"max_database_slots"`
	MaxParallelSources     int     `mapstructure:"max_parallel_sources"`
	ParallelEnabled        bool    `mapstructure:"parallel_enabled"`
	BatchSize              int     `mapstructure:"batch_size"`
	FinalizeTimeoutSeconds int     `mapstructure:"finalize_timeout_seconds"`
	ManifestPath           string  `mapstructure:"manifest_path"`
	MemoryLimitPercent     float64 `mapstructure:"memory_limit_percent"`
}

// PipelineConfig configures pipeline step ordering. An empty default order
// means "every registered step in registration order". SourceSteps overrides
// the default per source code.
type PipelineConfig struct {
	DefaultSteps []string            `mapstructure:"default_steps"`
	SourceSteps  map[string][]string `mapstructure:"source_steps"`
}

// WatchConfig configures manifest-directory watch mode. DebounceMS is the
// quiet period after a file event before re-import; RatePerMinute is a
// per-source re-import rate limit (0 = unlimited).
type WatchConfig struct {
	DebounceMS    int `mapstructure:"debounce_ms"`
	RatePerMinute int `mapstructure:"rate_per_minute"`
}

// LogConfig configures log output
type LogConfig struct {
	JSON bool `mapstructure:"json"`
}

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)

// FinalizeTimeout returns the merge-completion deadline as a duration
func (c *Config) FinalizeTimeout() time.Duration {
	if c.Import.FinalizeTimeoutSeconds <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.Import.FinalizeTimeoutSeconds) * time.Second
}

// BusyTimeout returns the SQLite busy_timeout as a duration
func (c *Config) BusyTimeout() time.Duration {
	if c.Database.BusyTimeoutMS <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Database.BusyTimeoutMS) * time.Millisecond
}

// GetDatabasePath returns the configured database path
func (c *Config) GetDatabasePath() string {
	if c.Database.Path == "" {
		return "dictimport.db" // Fallback default
	}
	return c.Database.Path
}

// StepsForSource returns the configured step order for a source code,
// falling back to the default order when no override exists.
// Viper lowercases TOML table keys, so the match is case-insensitive.
func (c *Config) StepsForSource(sourceCode string) []string {
	for code, steps := range c.Pipeline.SourceSteps {
		if strings.EqualFold(code, sourceCode) && len(steps) > 0 {
			return steps
		}
	}
	return c.Pipeline.DefaultSteps
}
