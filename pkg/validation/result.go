// Package validation checks raw user input before it becomes a record.
//
// Input arrives as a Form of raw strings, exactly as typed. A Schema runs
// one check per field and produces a Result that is either Valid, holding
// the parsed record, or Invalid, holding a field to message mapping. The
// messages are user-facing and meant to be shown next to the field.
package validation

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Form holds raw field values keyed by field name.
type Form map[string]string

// Clone returns a copy of f.
func (f Form) Clone() Form {
	return maps.Clone(f)
}

// Errors maps field names to user-facing messages. A non-empty Errors is
// the ValidationError of skill-tracker.
type Errors map[string]string

// Error implements error. Fields are listed in name order.
func (e Errors) Error() string {
	fields := slices.Sorted(maps.Keys(e))
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e[field]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Field returns the message for field, or "".
func (e Errors) Field(field string) string {
	return e[field]
}

// Result is the outcome of validating a form: either Valid(record) or
// Invalid(errors), never both.
type Result[T any] struct {
	value T
	errs  Errors
}

// Valid returns a successful result holding v.
func Valid[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Invalid returns a failed result. errs must not be empty.
func Invalid[T any](errs Errors) Result[T] {
	return Result[T]{errs: errs}
}

// OK reports whether the result is Valid.
func (r Result[T]) OK() bool {
	return len(r.errs) == 0
}

// Value returns the record and whether the result is Valid.
func (r Result[T]) Value() (T, bool) {
	return r.value, r.OK()
}

// Errors returns the field messages of an Invalid result, or nil.
func (r Result[T]) Errors() Errors {
	return r.errs
}

// Err returns the field messages as an error, or nil when Valid.
func (r Result[T]) Err() error {
	if r.OK() {
		return nil
	}
	return r.errs
}

// mapResult converts the record of a Valid result.
func mapResult[T, U any](r Result[T], fn func(T) U) Result[U] {
	if !r.OK() {
		return Invalid[U](r.errs)
	}
	return Valid(fn(r.value))
}
