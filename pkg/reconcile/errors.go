package reconcile

import "errors"

// Common errors returned by the reconcile package.
var (
	// ErrCommitInProgress is returned when Commit is called while another
	// commit of the same reconciler has not finished.
	ErrCommitInProgress = errors.New("commit already in progress")

	// ErrUnknownField is returned when a field is not part of the schema.
	ErrUnknownField = errors.New("unknown field")

	// ErrNoSchema is returned by New when Config.Schema is nil.
	ErrNoSchema = errors.New("schema is required")

	// ErrNoPersister is returned by New when Config.Persist is nil.
	ErrNoPersister = errors.New("persist function is required")
)

// PersistenceError reports that the store rejected a commit. The
// reconciler state is unchanged when it is returned.
type PersistenceError struct {
	Err error
}

// Error implements error.
func (e *PersistenceError) Error() string {
	return "persist changes: " + e.Err.Error()
}

// Unwrap returns the store error.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}
