package config

import (
	"os"
)

// loadFromEnv overrides config from TASKFLOW_* environment variables.
// If sources is non-nil, it tracks the source of each value.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) {
	mark := func(field string) {
		if sources != nil {
			sources[field] = SourceEnv
		}
	}

	// Paths
	if v := os.Getenv("TASKFLOW_DATA_FILE"); v != "" {
		cfg.DataFile = v
		mark("data_file")
	}
	if v := os.Getenv("TASKFLOW_SCHEMA_FILE"); v != "" {
		cfg.SchemaFile = v
		mark("schema_file")
	}
	if v := os.Getenv("TASKFLOW_LOG_DIR"); v != "" {
		cfg.LogDir = v
		mark("log_dir")
	}
	if v := os.Getenv("TASKFLOW_ACTIVITY_LOG"); v != "" {
		cfg.ActivityLog = boolFromString(v)
		mark("activity_log")
	}

	// Board
	if v := os.Getenv("TASKFLOW_THEME"); v != "" {
		cfg.Theme = v
		mark("theme")
	}
	if v := os.Getenv("TASKFLOW_DEFAULT_CATEGORY"); v != "" {
		cfg.DefaultCategory = v
		mark("default_category")
	}

	// Logging configuration
	if v := os.Getenv("TASKFLOW_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
		mark("log_level")
	}
	if v := os.Getenv("TASKFLOW_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
		mark("log_format")
	}
	if v := os.Getenv("TASKFLOW_LOG_TIMESTAMPS"); v != "" {
		cfg.LogTimestamps = boolFromString(v)
		mark("log_timestamps")
	}
	if v := os.Getenv("TASKFLOW_LOG_CALLER"); v != "" {
		cfg.LogCaller = boolFromString(v)
		mark("log_caller")
	}
}

func boolFromString(s string) bool {
	switch s {
	case "1", "true", "TRUE", "True", "yes", "YES", "Yes", "on", "ON", "On":
		return true
	}
	return false
}
