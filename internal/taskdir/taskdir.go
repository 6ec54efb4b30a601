// Package taskdir provides constants and utilities for the .taskflow directory structure.
package taskdir

import "path/filepath"

const (
	// Dir is the name of the per-user and per-project state directory.
	Dir = ".taskflow"

	// AppName names the OS-specific config directory (e.g. ~/.config/taskflow).
	AppName = "taskflow"

	// DefaultDataFile is the default task file name.
	DefaultDataFile = "tasks.json"

	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "taskflow.toml"

	// HiddenConfigFile is the alternative project config file name.
	HiddenConfigFile = ".taskflow.toml"
)

// ConfigPath returns the config file path inside the .taskflow directory of workDir.
func ConfigPath(workDir string) string {
	return filepath.Join(DirPath(workDir), DefaultConfigFile)
}

// DirPath returns the full path to the .taskflow directory within a work directory.
func DirPath(workDir string) string {
	if workDir == "." || workDir == "" {
		return Dir
	}
	return filepath.Join(workDir, Dir)
}

// LockPath returns the lock file guarding the task file at dataPath.
func LockPath(dataPath string) string {
	return dataPath + ".lock"
}
