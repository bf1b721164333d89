package config

import "errors"

// Common errors returned by the config package.
var (
	// ErrNoUserID is returned when the user id is blank.
	ErrNoUserID = errors.New("no user id specified")

	// ErrInvalidBackend is returned when the storage backend is not recognized.
	ErrInvalidBackend = errors.New("invalid storage backend: must be local or sql")

	// ErrNoStoragePath is returned when the selected backend has no file path.
	ErrNoStoragePath = errors.New("no storage path specified for the selected backend")

	// ErrInvalidTimeout is returned when the storage timeout is <= 0.
	ErrInvalidTimeout = errors.New("invalid storage timeout: must be > 0")

	// ErrInvalidDisplayFormat is returned when display format is not recognized.
	ErrInvalidDisplayFormat = errors.New("invalid display format: must be table, json, or simple")

	// ErrInvalidDebounceInterval is returned when the watch debounce is <= 0.
	ErrInvalidDebounceInterval = errors.New("invalid debounce interval: must be > 0")

	// ErrInvalidLogLevel is returned when log level is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level: must be debug, info, warn, or error")

	// ErrInvalidLogFormat is returned when log format is not recognized.
	ErrInvalidLogFormat = errors.New("invalid log format: must be text or json")

	// ErrConfigNotFound is returned when config file is not found.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrInvalidYAML is returned when config file has invalid YAML syntax.
	ErrInvalidYAML = errors.New("invalid YAML syntax in config file")
)
