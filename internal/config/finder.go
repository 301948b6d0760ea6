package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DirName is the project directory holding preproc files
	DirName = ".preproc"

	// FileName is the config file inside DirName
	FileName = "config.yaml"

	// EnvConfig names an explicit config file, overriding discovery
	EnvConfig = "PREPROC_CONFIG"
)

// ErrConfigNotFound is returned when no config file is found.
var ErrConfigNotFound = errors.New("config file not found")

// FindConfig returns the config file to use
// Priority order:
//  1. PREPROC_CONFIG environment variable (if set)
//  2. .preproc/config.yaml in start or the nearest parent directory
//
// Returns ErrConfigNotFound when neither exists
func FindConfig(start string) (string, error) {
	if path := os.Getenv(EnvConfig); path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%s: %w", EnvConfig, err)
		}
		return path, nil
	}

	current, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve start directory: %w", err)
	}

	for {
		candidate := filepath.Join(current, DirName, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			// Reached filesystem root
			break
		}
		current = parent
	}

	return "", ErrConfigNotFound
}

// ProjectDir returns the directory a config file's relative paths resolve
// against: the parent of .preproc for a discovered file, otherwise the
// file's own directory.
func ProjectDir(configPath string) string {
	dir := filepath.Dir(configPath)
	if filepath.Base(dir) == DirName {
		return filepath.Dir(dir)
	}
	return dir
}

// ResolvedLogDir resolves the configured log directory against BaseDir.
func (c *Config) ResolvedLogDir() string {
	if c.LogDir == "" || filepath.IsAbs(c.LogDir) || c.BaseDir == "" {
		return c.LogDir
	}
	return filepath.Join(c.BaseDir, c.LogDir)
}
