// Package config reads the optional perplexity configuration file
// (~/.config/perplexity/config.yaml).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds defaults for CLI flags. Pointer and empty-string fields mean
// "not set"; the CLI applies a field only when the matching flag was not
// given explicitly.
type Config struct {
	Backend        string `yaml:"backend"`
	Method         string `yaml:"method"`
	PadID          *int64 `yaml:"pad_id"`
	PredictionsKey string `yaml:"predictions_key"`
	TargetsKey     string `yaml:"targets_key"`
	Format         string `yaml:"format"`
	Workers        *int64 `yaml:"workers"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// DefaultPath returns the per-user config file path, or "" when the user
// config directory cannot be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "perplexity", "config.yaml")
}

// Load reads the config file at path. A missing file (or empty path) yields
// a zero Config; an unreadable or malformed file is an error.
func Load(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the caller.
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Workers != nil && *cfg.Workers < 1 {
		return Config{}, fmt.Errorf("parse config %s: workers must be >= 1, got %d", path, *cfg.Workers)
	}
	return cfg, nil
}
