package tracker

import (
	"errors"

	"github.com/0xmhha/skill-tracker/pkg/store"
)

// Common errors returned by the tracker.
var (
	// ErrNotFound is returned when a skill id is unknown. It is the same
	// sentinel the stores return.
	ErrNotFound = store.ErrNotFound

	// ErrBusy is returned when another mutation of the same record is
	// still in flight.
	ErrBusy = errors.New("operation already in progress")

	// ErrEmptyName is returned when a skill name is blank.
	ErrEmptyName = errors.New("skill name cannot be empty")

	// ErrNoStore is returned by New when Config.Store is nil.
	ErrNoStore = errors.New("data store is required")

	// ErrNoUser is returned by New when Config.UserID is empty.
	ErrNoUser = errors.New("user id is required")
)
