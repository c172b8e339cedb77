package config

import "github.com/spf13/viper"

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.path", "dictimport.db")
	v.SetDefault("database.busy_timeout_ms", 5000)

	// Import defaults: four shared DB slots across all sources, one fan-out
	// worker per source (0), 2000-entry staging flushes, a 10-minute
	// merge-completion deadline, and no memory gating unless configured.
	v.SetDefault("import.max_database_slots", 4)
	v.SetDefault("import.max_parallel_sources", 0)
	v.SetDefault("import.parallel_enabled", true)
	v.SetDefault("import.batch_size", 2000)
	v.SetDefault("import.finalize_timeout_seconds", 600)
	v.SetDefault("import.manifest_path", "sources.yaml")
	v.SetDefault("import.memory_limit_percent", 0.0)

	// Pipeline defaults: empty = every registered step in registration order
	v.SetDefault("pipeline.default_steps", []string{})

	// Watch defaults
	v.SetDefault("watch.debounce_ms", 2000)
	v.SetDefault("watch.rate_per_minute", 6)

	// Log defaults
	v.SetDefault("log.json", false)
}

// BindEnvOverrides explicitly binds deployment-sensitive configuration to
// environment variables
func BindEnvOverrides(v *viper.Viper) {
	v.BindEnv("database.path", "DICTIMPORT_DATABASE_PATH")
	v.BindEnv("import.manifest_path", "DICTIMPORT_MANIFEST_PATH")
	v.BindEnv("log.json", "DICTIMPORT_LOG_JSON")
}
