package kvstore

import "errors"

// Common errors logged or returned by the kvstore package.
var (
	// ErrNoPath is returned by New when Config.Path is empty.
	ErrNoPath = errors.New("database path is required")

	// ErrInvalidKey is logged when a key is empty or blank.
	ErrInvalidKey = errors.New("invalid key")

	// ErrNilValue is logged when a nil value is written.
	ErrNilValue = errors.New("nil value")

	// ErrNoValues is logged when SetMany receives nothing to write.
	ErrNoValues = errors.New("no values to write")

	// ErrBadDestination is logged when Get receives a nil or non-pointer
	// destination.
	ErrBadDestination = errors.New("destination must be a non-nil pointer")
)
