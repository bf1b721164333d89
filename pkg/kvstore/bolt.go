package kvstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/0xmhha/skill-tracker/pkg/logger"
)

// bucketDocuments holds every key of the store.
var bucketDocuments = []byte("documents")

// boltStore implements Store using BoltDB.
type boltStore struct {
	db     *bolt.DB
	path   string
	logger logger.Logger
}

// New opens or creates a bolt-backed store.
//
// Parameters:
//   - cfg: Store configuration
//   - log: Logger instance
//
// Returns:
//   - Configured Store
//   - Error if the database cannot be opened
func New(cfg Config, log logger.Logger) (Store, error) {
	if cfg.Path == "" {
		return nil, ErrNoPath
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Second
	}
	if log == nil {
		log = logger.Noop()
	}
	log = log.Component("kvstore")

	dbPath := ExpandHome(cfg.Path)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, createErr := tx.CreateBucketIfNotExists(bucketDocuments)
		return createErr
	}); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("failed to close database after initialization error",
				"error", closeErr)
		}
		return nil, fmt.Errorf("failed to create documents bucket: %w", err)
	}

	log.Debug("store opened", "db_path", dbPath)

	return &boltStore{
		db:     db,
		path:   dbPath,
		logger: log,
	}, nil
}

// Get implements Store.Get.
func (s *boltStore) Get(key string, dst any) bool {
	if !validKey(key) {
		return false
	}

	var data []byte
	if err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketDocuments).Get([]byte(key)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	}); err != nil {
		s.logger.Warn("read failed", "key", key, "error", err)
		return false
	}

	if data == nil {
		return false
	}

	if err := decodeInto(data, dst); err != nil {
		s.logger.Warn("stored value ignored", "key", key, "error", err)
		return false
	}
	return true
}

// Set implements Store.Set.
func (s *boltStore) Set(key string, value any) bool {
	return s.SetMany(map[string]any{key: value})
}

// SetMany implements Store.SetMany.
func (s *boltStore) SetMany(values map[string]any) bool {
	encoded, err := encodeAll(values)
	if err != nil {
		s.logger.Warn("write rejected", "error", err)
		return false
	}

	if err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketDocuments)
		for key, data := range encoded {
			if putErr := b.Put([]byte(key), data); putErr != nil {
				return fmt.Errorf("failed to store %q: %w", key, putErr)
			}
		}
		return nil
	}); err != nil {
		s.logger.Error("write failed", "keys", len(encoded), "error", err)
		return false
	}
	return true
}

// Remove implements Store.Remove.
func (s *boltStore) Remove(key string) bool {
	if !validKey(key) {
		return false
	}

	if err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDocuments).Delete([]byte(key))
	}); err != nil {
		s.logger.Error("remove failed", "key", key, "error", err)
		return false
	}
	return true
}

// Has implements Store.Has.
func (s *boltStore) Has(key string) bool {
	if !validKey(key) {
		return false
	}

	var found bool
	_ = s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(bucketDocuments).Get([]byte(key)) != nil
		return nil
	})
	return found
}

// Keys implements Store.Keys.
func (s *boltStore) Keys() []string {
	var keys []string
	_ = s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDocuments).ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	return keys
}

// Clear implements Store.Clear.
func (s *boltStore) Clear() bool {
	if err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketDocuments); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketDocuments)
		return err
	}); err != nil {
		s.logger.Error("clear failed", "error", err)
		return false
	}
	return true
}

// Close implements Store.Close.
func (s *boltStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	s.logger.Debug("store closed", "db_path", s.path)
	return nil
}

// encodeAll validates and encodes every entry before anything is written.
func encodeAll(values map[string]any) (map[string][]byte, error) {
	if len(values) == 0 {
		return nil, ErrNoValues
	}

	out := make(map[string][]byte, len(values))
	for key, value := range values {
		if !validKey(key) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
		if value == nil {
			return nil, fmt.Errorf("%w: %q", ErrNilValue, key)
		}
		data, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %q: %w", key, err)
		}
		out[key] = data
	}
	return out, nil
}

func validKey(key string) bool {
	return strings.TrimSpace(key) != ""
}

// ExpandHome expands a leading ~ to the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
