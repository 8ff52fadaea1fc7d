// Package config handles the sweep configuration file and the resolved
// per-run Settings value the core consumes.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds the sweep configuration file contents.
type Config struct {
	ProtectedBranches []string `toml:"protected_branches"`
	DefaultRemote     string   `toml:"default_remote"`
	IncludeRemote     bool     `toml:"include_remote"`
	CleanupMergedDays int      `toml:"cleanup_merged_days"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		ProtectedBranches: []string{"main", "master", "develop"},
		DefaultRemote:     "origin",
	}
}

// Path returns the path to the config file.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "sweep", "config.toml"), nil
}

// Load reads config from ~/.config/sweep/config.toml.
// Returns Default() if the file doesn't exist (no error).
// Returns an error only if the file exists but is invalid.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Default(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from an explicit path. Missing file means defaults.
func LoadFrom(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.CleanupMergedDays < 0 {
		return Default(), fmt.Errorf("cleanup_merged_days must not be negative, got %d", cfg.CleanupMergedDays)
	}
	return cfg, nil
}

const defaultConfigFile = `# sweep configuration

# Branch names that are never offered for deletion. Entries wrapped in
# /pattern/flags syntax match as regular expressions, everything else
# matches exactly.
protected_branches = ["main", "master", "develop"]

# Remote used for base-branch detection and remote deletes.
default_remote = "origin"

# Also list and delete remote-tracking branches by default.
include_remote = false

# Only consider branches whose last commit is older than this many days.
# 0 disables age filtering.
cleanup_merged_days = 0
`

// Init writes the default config file, refusing to overwrite unless force
// is set. Returns the path written.
func Init(force bool) (string, error) {
	path, err := Path()
	if err != nil {
		return "", fmt.Errorf("failed to locate config dir: %w", err)
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config file already exists at %s (use -f to overwrite)", path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigFile), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return path, nil
}
