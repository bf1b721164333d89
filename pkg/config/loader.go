package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/0xmhha/skill-tracker/pkg/store"
)

// Environment variables read by Load.
const (
	EnvBackend  = "SKILL_TRACKER_BACKEND"
	EnvDB       = "SKILL_TRACKER_DB"
	EnvUser     = "SKILL_TRACKER_USER"
	EnvLogLevel = "SKILL_TRACKER_LOG_LEVEL"
)

// Loader provides methods for loading configuration from various sources.
type Loader interface {
	// Load loads configuration with the following precedence:
	// 1. Environment variables
	// 2. Configuration file
	// 3. Default values
	//
	// Returns the merged configuration or an error if validation fails.
	Load() (*Config, error)

	// LoadFromFile loads configuration from a specific file.
	LoadFromFile(path string) (*Config, error)
}

// loader implements the Loader interface.
type loader struct {
	configPath string
}

// NewLoader creates a new configuration loader.
//
// If configPath is empty, searches for config file in:
// 1. ./config.yaml (current directory)
// 2. ~/.config/skill-tracker/config.yaml.
func NewLoader(configPath string) Loader {
	return &loader{configPath: configPath}
}

// Load implements Loader.Load.
func (l *loader) Load() (*Config, error) {
	cfg := Default()

	path := l.configPath
	if path == "" {
		path = findConfigFile()
	}

	if path != "" {
		fileCfg, err := l.LoadFromFile(path)
		switch {
		case err == nil:
			cfg = fileCfg
		case l.configPath != "":
			// An explicit file must load; a discovered one may be skipped.
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	applyEnvVars(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadFromFile implements Loader.LoadFromFile. The file is decoded over
// the defaults, so keys it leaves out keep their default values.
func (l *loader) LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) // nolint:gosec
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	return cfg, nil
}

// findConfigFile returns the first existing file of ./config.yaml and
// DefaultPath(), or "".
func findConfigFile() string {
	for _, path := range []string{"./config.yaml", DefaultPath()} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envOverrides apply in order; the database path follows the backend, so
// the backend comes first.
var envOverrides = []struct {
	name  string
	apply func(cfg *Config, value string)
}{
	{EnvBackend, func(cfg *Config, v string) {
		cfg.Storage.Backend = strings.ToLower(v)
	}},
	{EnvDB, func(cfg *Config, v string) {
		if cfg.Storage.Backend == store.BackendSQL {
			cfg.Storage.SQLDSN = v
		} else {
			cfg.Storage.LocalPath = v
		}
	}},
	{EnvUser, func(cfg *Config, v string) {
		cfg.User.ID = v
	}},
	{EnvLogLevel, func(cfg *Config, v string) {
		cfg.Logging.Level = strings.ToLower(v)
	}},
}

// applyEnvVars applies the non-blank SKILL_TRACKER_* variables to cfg.
func applyEnvVars(cfg *Config) {
	for _, o := range envOverrides {
		if v := strings.TrimSpace(os.Getenv(o.name)); v != "" {
			o.apply(cfg, v)
		}
	}
}

// Load is a convenience function that creates a loader and loads configuration.
//
// Equivalent to:
//
//	loader := NewLoader("")
//	return loader.Load()
func Load() (*Config, error) {
	return NewLoader("").Load()
}

// LoadFromFile is a convenience function that loads configuration from a file.
//
// Equivalent to:
//
//	loader := NewLoader(path)
//	return loader.Load()
func LoadFromFile(path string) (*Config, error) {
	return NewLoader(path).Load()
}

// Save writes the configuration to a YAML file.
//
// Creates parent directories if they don't exist.
// File is created with 0600 permissions (read/write for owner only).
func Save(cfg *Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Create parent directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Marshal to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
