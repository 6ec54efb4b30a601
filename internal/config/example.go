package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# taskflow configuration file
# Values can be overridden by TASKFLOW_* environment variables or CLI flags

# Task file (relative to project root)
data_file = "tasks.json"

# JSON Schema used by "taskflow doctor" (built-in schema when empty)
# schema_file = "tasks.schema.json"

# Activity log directory (supports ~ expansion and %VAR% on Windows)
log_dir = "~/.taskflow"

# Record every board change as a JSONL line under log_dir
activity_log = true

# Board theme: dark or light
theme = "dark"

# Category given to tasks saved without one
default_category = "General"

# Console logging
log_level = "info"      # debug, info, warn, error
log_format = "text"     # text, json, logfmt
log_timestamps = false
log_caller = false
`
}
