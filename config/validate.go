package config

import "github.com/ankitdsmb/DictionaryImporter-sub008/errors"

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Database path is optional - empty defaults to "dictimport.db"
	if c.Database.BusyTimeoutMS < 0 {
		return errors.Newf("database.busy_timeout_ms must be >= 0, got %d", c.Database.BusyTimeoutMS)
	}

	// At least one shared-resource slot is required; a zero-slot pool would
	// deadlock every source at acquisition
	if c.Import.MaxDatabaseSlots < 1 {
		return errors.Newf("import.max_database_slots must be >= 1, got %d", c.Import.MaxDatabaseSlots)
	}

	// Fan-out cap: 0 = one worker per source, negative = invalid
	if c.Import.MaxParallelSources < 0 {
		return errors.Newf("import.max_parallel_sources must be >= 0, got %d", c.Import.MaxParallelSources)
	}

	if c.Import.BatchSize < 1 {
		return errors.Newf("import.batch_size must be >= 1, got %d", c.Import.BatchSize)
	}

	if c.Import.FinalizeTimeoutSeconds <= 0 {
		return errors.Newf("import.finalize_timeout_seconds must be > 0, got %d", c.Import.FinalizeTimeoutSeconds)
	}

	// Memory gating: 0 = disabled, otherwise a percentage of system memory
	if c.Import.MemoryLimitPercent < 0 || c.Import.MemoryLimitPercent > 100 {
		return errors.Newf("import.memory_limit_percent must be in [0, 100], got %f", c.Import.MemoryLimitPercent)
	}

	// Step orders may be empty (use registration order) but never blank names
	for i, name := range c.Pipeline.DefaultSteps {
		if name == "" {
			return errors.Newf("pipeline.default_steps[%d] is empty", i)
		}
	}
	for source, steps := range c.Pipeline.SourceSteps {
		if source == "" {
			return errors.New("pipeline.source_steps key cannot be empty")
		}
		for i, name := range steps {
			if name == "" {
				return errors.Newf("pipeline.source_steps.%s[%d] is empty", source, i)
			}
		}
	}

	// Watch settings: 0 = disabled/unlimited, negative = invalid
	if c.Watch.DebounceMS < 0 {
		return errors.Newf("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMS)
	}
	if c.Watch.RatePerMinute < 0 {
		return errors.Newf("watch.rate_per_minute must be >= 0, got %d", c.Watch.RatePerMinute)
	}

	return nil
}
