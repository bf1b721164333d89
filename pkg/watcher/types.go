// Package watcher reports changes to the storage file of skill-tracker.
//
// It uses fsnotify on the directory holding each watched file, so writes
// to companion files (SQLite journals and WAL) are seen too. Bursts of
// writes are debounced into one Event per watched target.
//
// Example usage:
//
//	w, err := watcher.New(watcher.Config{
//	    DebounceInterval: 100 * time.Millisecond,
//	}, logger.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Close()
//
//	if err := w.Start(ctx, []string{cfg.Storage.Path()}); err != nil {
//	    log.Fatal(err)
//	}
//
//	for event := range w.Events() {
//	    fmt.Printf("%s changed (%s)\n", event.Path, event.Op)
//	}
package watcher

import (
	"context"
	"time"
)

// Op describes a file operation type.
type Op uint32

// File operation types.
const (
	OpCreate Op = 1 << iota // File created
	OpWrite                 // File modified
	OpRemove                // File deleted
	OpRename                // File renamed/moved
	OpChmod                 // File permissions changed
)

// String returns a human-readable operation name.
func (op Op) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpWrite:
		return "WRITE"
	case OpRemove:
		return "REMOVE"
	case OpRename:
		return "RENAME"
	case OpChmod:
		return "CHMOD"
	default:
		return "UNKNOWN"
	}
}

// Event represents a change to a watched target.
type Event struct {
	// Path is the watched target: the file passed to Start, or the file
	// inside a watched directory that changed.
	Path string

	// Source is the file that actually changed. It differs from Path for
	// companion files such as "data.db-wal".
	Source string

	// Op is the last operation seen in the debounce window.
	Op Op

	// Timestamp is when the last operation was seen.
	Timestamp time.Time
}

// Watcher provides file system monitoring.
type Watcher interface {
	// Start begins watching the specified paths and returns once the
	// watches are registered. Events flow until ctx is cancelled, Stop or
	// Close is called.
	//
	// Parameters:
	//   - ctx: Context for cancellation
	//   - paths: Files or directories to watch. A file need not exist
	//     yet, but its directory must.
	//
	// Returns ErrInvalidPath if none of the paths can be watched.
	Start(ctx context.Context, paths []string) error

	// Stop gracefully shuts down event processing.
	Stop() error

	// Events returns the channel for receiving debounced events.
	// The channel is closed by Close.
	Events() <-chan Event

	// Errors returns the channel for receiving watcher errors.
	// The channel is closed by Close.
	Errors() <-chan error

	// Close closes the watcher and releases resources.
	Close() error
}

// Config contains watcher configuration.
type Config struct {
	// DebounceInterval is the quiet period before an event is emitted.
	// Events for the same target within this interval are coalesced.
	// Default: 100ms.
	DebounceInterval time.Duration

	// CircuitBreakerThreshold is the number of fsnotify errors after
	// which ErrCircuitBreakerOpen is reported instead of the error.
	// Default: 5.
	CircuitBreakerThreshold int
}
