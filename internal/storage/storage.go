package storage

import (
	"errors"
	"fmt"
	"os"
	"regexp"
)

// KVStore defines the operations needed for persisting project state.
// This allows swapping implementations (JSON files, SQLite, memory).
type KVStore interface {
	// Get returns the value stored under key. A missing key returns an
	// error matching os.ErrNotExist.
	Get(key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error

	// Keys lists every stored key, sorted.
	Keys() ([]string, error)

	// GetBasePath returns where the store keeps its data ("" for memory).
	GetBasePath() string

	// Close releases any underlying resources.
	Close() error
}

// IsNotFound reports whether err is a missing-key error from a KVStore.
func IsNotFound(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}

func notFound(key string) error {
	return fmt.Errorf("key %s not found: %w", key, os.ErrNotExist)
}

var validKey = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]*$`)

// checkKey rejects keys that could not be used as a file name.
func checkKey(key string) error {
	if !validKey.MatchString(key) || key == "." || key == ".." {
		return fmt.Errorf("invalid storage key %q", key)
	}
	return nil
}

// Open returns the backend named by backend, rooted at dir.
func Open(backend, dir string) (KVStore, error) {
	switch backend {
	case "json", "":
		return NewJSONStore(dir)
	case "sqlite":
		return NewSQLiteStore(dir)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
