package kvstore

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"sync"
)

// memoryStore implements Store using an in-memory map of encoded values.
// Useful for testing.
type memoryStore struct {
	docs map[string][]byte
	mu   sync.RWMutex
}

// NewMemory creates an in-memory store.
//
// Values are kept JSON-encoded so that decoding behaves exactly as it
// does for the bolt store.
func NewMemory() Store {
	return &memoryStore{
		docs: make(map[string][]byte),
	}
}

// Get implements Store.Get.
func (s *memoryStore) Get(key string, dst any) bool {
	if !validKey(key) {
		return false
	}

	s.mu.RLock()
	data, ok := s.docs[key]
	s.mu.RUnlock()

	if !ok {
		return false
	}
	return decodeInto(data, dst) == nil
}

// Set implements Store.Set.
func (s *memoryStore) Set(key string, value any) bool {
	return s.SetMany(map[string]any{key: value})
}

// SetMany implements Store.SetMany.
func (s *memoryStore) SetMany(values map[string]any) bool {
	encoded, err := encodeAll(values)
	if err != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, data := range encoded {
		s.docs[key] = data
	}
	return true
}

// Remove implements Store.Remove.
func (s *memoryStore) Remove(key string) bool {
	if !validKey(key) {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.docs, key)
	return true
}

// Has implements Store.Has.
func (s *memoryStore) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.docs[key]
	return ok
}

// Keys implements Store.Keys.
func (s *memoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.docs))
	for k := range s.docs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Clear implements Store.Clear.
func (s *memoryStore) Clear() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.docs)
	return true
}

// Close implements Store.Close.
func (s *memoryStore) Close() error {
	return nil
}

// decodeInto unmarshals data into dst. dst is only modified when decoding
// succeeds as a whole.
func decodeInto(data []byte, dst any) error {
	rv := reflect.ValueOf(dst)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return ErrBadDestination
	}

	tmp := reflect.New(rv.Elem().Type())
	if err := json.Unmarshal(data, tmp.Interface()); err != nil {
		return fmt.Errorf("failed to decode value: %w", err)
	}

	rv.Elem().Set(tmp.Elem())
	return nil
}
