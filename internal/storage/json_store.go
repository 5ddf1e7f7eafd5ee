package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// JSONStore implements the KVStore interface using JSON files.
// It stores each key as an individual <key>.json file.
type JSONStore struct {
	// BasePath is the directory where the *.json files are stored.
	BasePath string
}

// NewJSONStore creates a new JSONStore instance.
// It ensures the base storage directory exists.
func NewJSONStore(basePath string) (*JSONStore, error) {
	err := os.MkdirAll(basePath, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage directory '%s': %w", basePath, err)
	}
	return &JSONStore{BasePath: basePath}, nil
}

// GetBasePath returns the base path of the JSON store.
func (js *JSONStore) GetBasePath() string {
	return js.BasePath
}

func (js *JSONStore) pathFor(key string) string {
	return filepath.Join(js.BasePath, key+".json")
}

// Get reads the file stored for key.
func (js *JSONStore) Get(key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	filePath := js.pathFor(key)

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(key)
		}
		return nil, fmt.Errorf("failed to read storage file %s: %w", filePath, err)
	}
	return data, nil
}

// Set writes value to a temporary file and renames it over the key's file,
// so a crash mid-write never leaves a truncated record behind.
func (js *JSONStore) Set(key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	filePath := js.pathFor(key)

	tmp, err := os.CreateTemp(js.BasePath, "."+key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", key, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write storage file %s: %w", filePath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close storage file %s: %w", filePath, err)
	}
	if err := os.Rename(tmpName, filePath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace storage file %s: %w", filePath, err)
	}
	return nil
}

// Delete removes the key's JSON file.
func (js *JSONStore) Delete(key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	filePath := js.pathFor(key)

	err := os.Remove(filePath)
	if err != nil {
		// Idempotent delete
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete storage file %s: %w", filePath, err)
	}
	return nil
}

// Keys scans the BasePath directory for *.json files and extracts keys.
func (js *JSONStore) Keys() ([]string, error) {
	files, err := os.ReadDir(js.BasePath)
	if err != nil {
		// If the base path itself doesn't exist yet, return empty list, no error
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read storage directory %s: %w", js.BasePath, err)
	}

	keys := []string{}
	for _, file := range files {
		name := file.Name()
		if file.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, ".") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op for the file store.
func (js *JSONStore) Close() error { return nil }
