// Package config handles configuration loading, saving, and path management.
package config

import (
	"os"
	"path/filepath"
)

const (
	// GlobalDirName is the name of the global topstack directory.
	GlobalDirName = ".topstack"

	// HomeEnv overrides the global directory when set.
	HomeEnv = "TOPSTACK_HOME"

	// DataDirName is the name of the data directory holding the stack.
	DataDirName = "data"

	// LogsDirName is the name of the logs directory.
	LogsDirName = "logs"
)

// File names
const (
	SettingsFileName = "settings.yaml"
	LogFileName      = "topstack.log"
	SQLiteFileName   = "topstack.db"
)

// GlobalDir returns the path to the global topstack directory (~/.topstack/),
// or $TOPSTACK_HOME when set.
func GlobalDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return filepath.Clean(dir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, GlobalDirName), nil
}

// GlobalSettingsFile returns the path to the settings.yaml file.
func GlobalSettingsFile() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SettingsFileName), nil
}

// GlobalLogsDir returns the path to the logs directory.
func GlobalLogsDir() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, LogsDirName), nil
}

// GlobalLogFile returns the path to the structured log file.
func GlobalLogFile() (string, error) {
	dir, err := GlobalLogsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, LogFileName), nil
}

// DataDir returns the directory holding persisted stack data. A non-empty
// override (settings storage.dir) wins over the default location.
func DataDir(override string) (string, error) {
	if override != "" {
		return filepath.Clean(override), nil
	}
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DataDirName), nil
}

// EnsureGlobalDir creates the global topstack directory if it doesn't exist.
func EnsureGlobalDir() error {
	dir, err := GlobalDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// EnsureGlobalLogsDir creates the global logs directory if it doesn't exist.
func EnsureGlobalLogsDir() error {
	dir, err := GlobalLogsDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}
