package store

import (
	"errors"
	"fmt"
)

// Common errors returned by DataStore implementations.
var (
	// ErrNotFound is returned when a referenced skill does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnknownBackend is returned for a backend name other than local
	// or sql.
	ErrUnknownBackend = errors.New("unknown storage backend")

	// ErrWriteFailed is wrapped when the local document store refuses a
	// write. The cause is logged by the document store.
	ErrWriteFailed = errors.New("write failed")

	// ErrUnreadableDocument is wrapped when a write would replace a stored
	// document that cannot be decoded.
	ErrUnreadableDocument = errors.New("stored document is unreadable")
)

// PersistenceError reports an I/O failure of a store operation.
type PersistenceError struct {
	// Op is the DataStore method that failed, e.g. "insert_session".
	Op string

	// Err is the underlying error.
	Err error
}

// Error implements error.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Fail wraps err as a PersistenceError for op. ErrNotFound and errors
// that already are a PersistenceError pass through unchanged.
func Fail(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return err
	}
	var perr *PersistenceError
	if errors.As(err, &perr) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// NotFound returns ErrNotFound annotated with the missing id.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}
