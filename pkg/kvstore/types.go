// Package kvstore provides a small persistent key-value store for JSON
// documents.
//
// The store never fails loudly on reads: a missing key, an invalid key or
// a value that no longer decodes all leave the destination untouched, so
// the caller's prefilled default wins. Writes report success as a bool and
// log the cause of a failure.
//
// Example usage:
//
//	kv, err := kvstore.New(kvstore.Config{
//	    Path: "~/.config/skill-tracker/data.db",
//	}, logger.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer kv.Close()
//
//	skills := []model.Skill{}
//	kv.Get("skills", &skills) // stays empty when nothing is stored
//
//	if !kv.Set("skills", skills) {
//	    return errors.New("write failed")
//	}
package kvstore

import "time"

// Store is a JSON document store keyed by string.
type Store interface {
	// Get decodes the value at key into dst, which must be a non-nil
	// pointer.
	//
	// Returns false and leaves dst untouched when the key is invalid,
	// absent or holds a value that cannot be decoded into dst.
	Get(key string, dst any) bool

	// Set encodes value and stores it at key.
	//
	// Returns false when the key is invalid, value is nil or cannot be
	// encoded, or the write fails.
	Set(key string, value any) bool

	// SetMany stores every entry of values atomically: either all keys are
	// written or none.
	SetMany(values map[string]any) bool

	// Remove deletes key. Removing an absent key succeeds.
	Remove(key string) bool

	// Has reports whether a value is stored at key.
	Has(key string) bool

	// Keys returns all stored keys in byte order.
	Keys() []string

	// Clear deletes every key.
	Clear() bool

	// Close releases resources.
	Close() error
}

// Config contains bolt store configuration.
type Config struct {
	// Path is the database file. A leading ~ is expanded to the home
	// directory and missing parent directories are created.
	Path string

	// Timeout is how long to wait for the file lock held by another
	// process. Default: 1s.
	Timeout time.Duration
}
