package config

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/nibzard/taskflow/internal/taskdir"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, in load order.
	Files []string
}

// Default values.
const (
	DefaultDataFile    = taskdir.DefaultDataFile
	DefaultLogDir      = "~/" + taskdir.Dir
	DefaultActivityLog = true
	DefaultTheme       = ThemeDark
	DefaultCategory    = "General"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	ThemeDark          = "dark"
	ThemeLight         = "light"
)

var (
	validThemes     = []string{ThemeDark, ThemeLight}
	validLogLevels  = []string{"debug", "info", "warn", "warning", "error", "fatal"}
	validLogFormats = []string{"text", "json", "logfmt"}
)

// Config holds the full configuration for taskflow.
type Config struct {
	// Paths
	DataFile   string `toml:"data_file"`
	SchemaFile string `toml:"schema_file"`
	LogDir     string `toml:"log_dir"`

	// Write a JSONL activity log for every board session
	ActivityLog bool `toml:"activity_log"`

	// Board
	Theme           string `toml:"theme"`
	DefaultCategory string `toml:"default_category"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`
}

// Validate reports the first config value outside its allowed set.
func (c *Config) Validate() error {
	if !slices.Contains(validThemes, c.Theme) {
		return fmt.Errorf("invalid theme %q (expected dark|light)", c.Theme)
	}
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level %q (expected debug|info|warn|error|fatal)", c.LogLevel)
	}
	if !slices.Contains(validLogFormats, c.LogFormat) {
		return fmt.Errorf("invalid log format %q (expected text|json|logfmt)", c.LogFormat)
	}
	if c.DataFile == "" {
		return fmt.Errorf("data file is empty")
	}
	return nil
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"data_file",
		"schema_file",
		"log_dir",
		"activity_log",
		"theme",
		"default_category",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
	}
}

// Field is one configuration value with its origin.
type Field struct {
	Name   string
	Value  string
	Source ConfigSource
}

// Fields lists every configurable value in declaration order.
func (cws *ConfigWithSources) Fields() []Field {
	c := cws.Config
	values := map[string]string{
		"data_file":        c.DataFile,
		"schema_file":      c.SchemaFile,
		"log_dir":          c.LogDir,
		"activity_log":     strconv.FormatBool(c.ActivityLog),
		"theme":            c.Theme,
		"default_category": c.DefaultCategory,
		"log_level":        c.LogLevel,
		"log_format":       c.LogFormat,
		"log_timestamps":   strconv.FormatBool(c.LogTimestamps),
		"log_caller":       strconv.FormatBool(c.LogCaller),
	}

	names := configFields()
	fields := make([]Field, 0, len(names))
	for _, name := range names {
		source, ok := cws.Sources[name]
		if !ok {
			source = SourceDefault
		}
		fields = append(fields, Field{Name: name, Value: values[name], Source: source})
	}
	return fields
}
