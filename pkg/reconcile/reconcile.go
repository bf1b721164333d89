// Package reconcile stages edits to a persisted settings record.
//
// A Reconciler holds the authoritative record (last known persisted state)
// and a delta of the fields the user changed. The delta is a value diff:
// a field set back to its authoritative value leaves the delta. Commit
// validates the merged record and hands only the delta to a Persister.
//
// Example usage:
//
//	r, err := reconcile.New(reconcile.Config{
//	    Schema:        validation.SettingsSchema,
//	    Authoritative: settings.Form(),
//	    Defaults:      fallback.Settings().Form(),
//	    Persist:       persistSettings,
//	}, logger.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	_ = r.SetField("theme", "dark")
//	switch r.AttemptNavigateAway() {
//	case reconcile.ConfirmRequired:
//	    err = r.Commit(ctx)
//	case reconcile.Blocked:
//	    fmt.Println(r.ExitError())
//	}
package reconcile

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/0xmhha/skill-tracker/pkg/logger"
	"github.com/0xmhha/skill-tracker/pkg/validation"
)

// NavigationOutcome is the answer to a request to leave the edit surface.
type NavigationOutcome int

// Navigation outcomes.
const (
	// Proceed means there is nothing unsaved; leave freely.
	Proceed NavigationOutcome = iota

	// ConfirmRequired means the edits are valid but unsaved; ask the user
	// to apply or discard them.
	ConfirmRequired

	// Blocked means the edits are invalid; leaving is refused until they
	// are fixed or discarded.
	Blocked
)

// String returns a human-readable outcome name.
func (o NavigationOutcome) String() string {
	switch o {
	case Proceed:
		return "proceed"
	case ConfirmRequired:
		return "confirm-required"
	case Blocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Persister writes changes and returns the record as now stored. changes
// holds only the modified fields, already normalized.
type Persister func(ctx context.Context, changes validation.Form) (validation.Form, error)

// Config contains reconciler configuration.
type Config struct {
	// Schema validates the record. Required.
	Schema *validation.Schema

	// Authoritative is the record as currently persisted.
	Authoritative validation.Form

	// Defaults are the values ResetToDefaults stages.
	Defaults validation.Form

	// Persist writes a commit. Required.
	Persist Persister
}

// Reconciler stages and commits edits to one record. It is safe for
// concurrent use.
type Reconciler struct {
	mu sync.Mutex

	schema   *validation.Schema
	persist  Persister
	defaults validation.Form
	log      logger.Logger

	authoritative validation.Form
	delta         validation.Form
	errs          validation.Errors
	exitErr       string

	// pending holds the changes of the running commit, nil when idle.
	pending validation.Form
}

// New creates a reconciler with an empty delta.
func New(cfg Config, log logger.Logger) (*Reconciler, error) {
	if cfg.Schema == nil {
		return nil, ErrNoSchema
	}
	if cfg.Persist == nil {
		return nil, ErrNoPersister
	}
	if log == nil {
		log = logger.Noop()
	}

	return &Reconciler{
		schema:        cfg.Schema,
		persist:       cfg.Persist,
		defaults:      cloneForm(cfg.Defaults),
		log:           log.Component("reconcile").With("schema", cfg.Schema.Name()),
		authoritative: cloneForm(cfg.Authoritative),
		delta:         validation.Form{},
		errs:          validation.Errors{},
	}, nil
}

// SetField stages value for name and refreshes the field's live error.
// A value equal to the authoritative one after normalization removes the
// field from the delta.
func (r *Reconciler) SetField(name, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.schema.Has(name) {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}

	r.stageLocked(name, value)
	r.checkFieldLocked(name, value)
	r.exitErr = ""
	return nil
}

// HasUnsavedChanges reports whether any field differs from the
// authoritative record.
func (r *Reconciler) HasUnsavedChanges() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.delta) > 0
}

// IsDirty reports whether name differs from the authoritative record.
func (r *Reconciler) IsDirty(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.delta[name]
	return ok
}

// Delta returns a copy of the staged changes.
func (r *Reconciler) Delta() validation.Form {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.delta.Clone()
}

// Authoritative returns a copy of the last persisted record.
func (r *Reconciler) Authoritative() validation.Form {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.authoritative.Clone()
}

// Merged returns the authoritative record with the delta applied.
func (r *Reconciler) Merged() validation.Form {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mergedLocked()
}

// FieldErrors returns a copy of the current per-field errors.
func (r *Reconciler) FieldErrors() validation.Errors {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.errs)
}

// ExitError returns the message of the last refused leave or save, or "".
func (r *Reconciler) ExitError() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.exitErr
}

// Validate checks the merged record and replaces the field errors with
// the outcome.
func (r *Reconciler) Validate() validation.Result[validation.Form] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.validateLocked()
}

// ValidateField checks value for name without staging it and records the
// outcome as the field's live error.
func (r *Reconciler) ValidateField(name, value string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.checkFieldLocked(name, value)
}

// AttemptNavigateAway decides whether the user may leave the edit surface.
func (r *Reconciler) AttemptNavigateAway() NavigationOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.delta) == 0 {
		return Proceed
	}
	if !r.validateLocked().OK() {
		r.exitErr = validation.MsgFixBeforeLeaving
		return Blocked
	}
	return ConfirmRequired
}

// Commit validates the merged record and persists the delta.
//
// Returns validation.Errors when the record is invalid (nothing is
// persisted), *PersistenceError when the store fails (state unchanged)
// and ErrCommitInProgress when another commit is running. On success the
// stored record becomes authoritative and the committed edits leave the
// delta.
func (r *Reconciler) Commit(ctx context.Context) error {
	r.mu.Lock()
	if r.pending != nil {
		r.mu.Unlock()
		return ErrCommitInProgress
	}

	result := r.validateLocked()
	merged, ok := result.Value()
	if !ok {
		r.exitErr = validation.MsgFixBeforeSaving
		r.mu.Unlock()
		return result.Err()
	}

	if len(r.delta) == 0 {
		r.exitErr = ""
		r.mu.Unlock()
		return nil
	}

	changes := make(validation.Form, len(r.delta))
	for name := range r.delta {
		changes[name] = merged[name]
	}
	r.pending = changes
	r.mu.Unlock()

	r.log.Debug("committing changes", "fields", len(changes))
	stored, err := r.persist(ctx, changes)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = nil

	if err != nil {
		r.log.Error("commit failed", "error", err)
		return &PersistenceError{Err: err}
	}

	r.refreshLocked(stored)
	r.exitErr = ""
	r.log.Debug("changes committed", "pending", len(r.delta))
	return nil
}

// Discard drops every staged edit and error.
func (r *Reconciler) Discard() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.delta = validation.Form{}
	r.errs = validation.Errors{}
	r.exitErr = ""
}

// ResetToDefaults stages the default value of every field. Fields whose
// authoritative value already is the default stay clean.
func (r *Reconciler) ResetToDefaults() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range r.schema.Fields() {
		if value, ok := r.defaults[name]; ok {
			r.stageLocked(name, value)
		}
	}
	r.errs = validation.Errors{}
	r.exitErr = ""
}

// Refresh replaces the authoritative record, for example after a reload.
// Staged edits survive unless they now equal the authoritative value.
func (r *Reconciler) Refresh(authoritative validation.Form) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refreshLocked(authoritative)
}

func (r *Reconciler) refreshLocked(authoritative validation.Form) {
	r.authoritative = cloneForm(authoritative)
	for name, value := range r.delta {
		if r.sameAsAuthoritative(name, value) {
			delete(r.delta, name)
			delete(r.errs, name)
		}
	}
}

// stageLocked records value in the delta. A field of the running commit
// stays staged whatever its value, since its authoritative value is not
// known until the commit returns.
func (r *Reconciler) stageLocked(name, value string) {
	_, inFlight := r.pending[name]
	if !inFlight && r.sameAsAuthoritative(name, value) {
		delete(r.delta, name)
		return
	}
	r.delta[name] = value
}

func (r *Reconciler) sameAsAuthoritative(name, value string) bool {
	current, ok := r.authoritative[name]
	if !ok {
		return false
	}
	return r.schema.Normalize(name, value) == r.schema.Normalize(name, current)
}

func (r *Reconciler) checkFieldLocked(name, value string) (string, bool) {
	msg, ok := r.schema.ValidateField(name, value)
	if ok {
		delete(r.errs, name)
	} else {
		r.errs[name] = msg
	}
	return msg, ok
}

func (r *Reconciler) validateLocked() validation.Result[validation.Form] {
	result := r.schema.Validate(r.mergedLocked())
	if result.OK() {
		r.errs = validation.Errors{}
	} else {
		r.errs = maps.Clone(result.Errors())
	}
	return result
}

func (r *Reconciler) mergedLocked() validation.Form {
	merged := cloneForm(r.authoritative)
	maps.Copy(merged, r.delta)
	return merged
}

func cloneForm(f validation.Form) validation.Form {
	if f == nil {
		return validation.Form{}
	}
	return f.Clone()
}
