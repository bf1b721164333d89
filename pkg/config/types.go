// Package config provides configuration management for skill-tracker.
//
// Configuration is loaded from multiple sources with the following precedence:
// 1. Command-line flags (highest priority)
// 2. Environment variables
// 3. Configuration file
// 4. Default values (lowest priority)
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Backend: %s\n", cfg.Storage.Backend)
package config

import (
	"strings"
	"time"

	"github.com/0xmhha/skill-tracker/pkg/logger"
	"github.com/0xmhha/skill-tracker/pkg/store"
)

// DefaultUserID is the stub identity used until real authentication exists.
const DefaultUserID = "0aa57eea-d614-47a2-88e1-da9ff05606c5"

// Config represents the complete application configuration.
//
// Invariants:
// - User.ID must not be blank
// - Storage.Backend must be local or sql
// - the path of the selected backend must not be empty
// - Storage.Timeout must be > 0
// - Watch.DebounceInterval must be > 0.
type Config struct {
	// Identity whose records are tracked
	User UserConfig `yaml:"user"`

	// Storage settings
	Storage StorageConfig `yaml:"storage"`

	// Display settings
	Display DisplayConfig `yaml:"display"`

	// Watch mode settings
	Watch WatchConfig `yaml:"watch"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging"`
}

// UserConfig identifies the current user.
type UserConfig struct {
	ID string `yaml:"id"`
}

// StorageConfig contains storage-related settings.
type StorageConfig struct {
	// Backend selects the data store (local, sql)
	Backend string `yaml:"backend"`

	// Path to the bolt document file used by the local backend
	LocalPath string `yaml:"local_path"`

	// Path to the SQLite file used by the sql backend
	SQLDSN string `yaml:"sql_dsn"`

	// How long to wait for the storage file lock
	Timeout time.Duration `yaml:"timeout"`
}

// Path returns the file of the selected backend.
func (s StorageConfig) Path() string {
	if s.Backend == store.BackendSQL {
		return s.SQLDSN
	}
	return s.LocalPath
}

// DisplayConfig contains display-related settings.
type DisplayConfig struct {
	// Default output format (table, json, simple)
	Format string `yaml:"format"`

	// Enable colored output
	ColorEnabled bool `yaml:"color_enabled"`

	// Omit daily breakdowns
	Compact bool `yaml:"compact"`
}

// WatchConfig contains watch mode settings.
type WatchConfig struct {
	// Quiet period before a burst of file events triggers a refresh
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Log level (debug, info, warn, error)
	Level string `yaml:"level"`

	// Log output destination (stdout, stderr, file path)
	Output string `yaml:"output"`

	// Log format (text, json)
	Format string `yaml:"format"`
}

// Validate checks if the configuration satisfies all invariants.
//
// Returns an error if any invariant is violated:
//   - Blank user id
//   - Unknown storage backend or missing storage path
//   - Invalid durations (must be > 0)
//   - Invalid display format
//   - Invalid log level or format
//
// Thread-safety: This method is read-only and thread-safe.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.User.ID) == "" {
		return ErrNoUserID
	}

	switch c.Storage.Backend {
	case store.BackendLocal, store.BackendSQL:
	default:
		return ErrInvalidBackend
	}
	if c.Storage.Path() == "" {
		return ErrNoStoragePath
	}
	if c.Storage.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	switch c.Display.Format {
	case "table", "json", "simple":
	default:
		return ErrInvalidDisplayFormat
	}

	if c.Watch.DebounceInterval <= 0 {
		return ErrInvalidDebounceInterval
	}

	if !logger.ValidLevel(c.Logging.Level) {
		return ErrInvalidLogLevel
	}
	if !logger.ValidFormat(c.Logging.Format) {
		return ErrInvalidLogFormat
	}

	return nil
}

// Default returns a configuration with sensible default values.
func Default() *Config {
	return &Config{
		User: UserConfig{
			ID: DefaultUserID,
		},
		Storage: StorageConfig{
			Backend:   store.BackendLocal,
			LocalPath: defaultLocalPath(),
			SQLDSN:    defaultSQLPath(),
			Timeout:   1 * time.Second,
		},
		Display: DisplayConfig{
			Format:       "table",
			ColorEnabled: true,
		},
		Watch: WatchConfig{
			DebounceInterval: 100 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Output: "stderr",
			Format: "text",
		},
	}
}
