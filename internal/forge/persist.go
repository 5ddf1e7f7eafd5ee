package forge

import (
	"encoding/json"
	"fmt"

	"go-forge/internal/model"
	"go-forge/internal/storage"
)

// Save writes the project record to the key-value store. Failures are
// logged and reported as notices; the in-memory state stays authoritative.
func (s *Store) Save() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveLocked()
}

func (s *Store) saveLocked() {
	if s.kv == nil || s.project == nil {
		return
	}
	record := model.Record{
		Project: *s.project,
		Files:   *s.files,
		Backups: s.backups,
	}
	data, err := json.Marshal(record)
	if err != nil {
		s.persistFailed("marshal", err)
		return
	}
	if err := s.kv.Set(s.key, data); err != nil {
		s.persistFailed("write", err)
		return
	}
	s.logger.Debug("Saved project", "key", s.key, "bytes", len(data))
}

// Load restores the project saved under the store's key and reports whether
// one was found. Unreadable records are reported as notices, never returned.
func (s *Store) Load() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.kv == nil {
		return false
	}

	data, err := s.kv.Get(s.key)
	if err != nil {
		if storage.IsNotFound(err) {
			s.logger.Debug("No saved project", "key", s.key)
			return false
		}
		s.persistFailed("read", err)
		return false
	}

	var record model.Record
	if err := json.Unmarshal(data, &record); err != nil {
		s.persistFailed("decode", err)
		return false
	}
	if record.Project.ID == "" && record.Project.Name == "" && record.Files.Len() == 0 {
		s.persistFailed("decode", fmt.Errorf("record under %s is empty", s.key))
		return false
	}

	s.project = &record.Project
	s.files = &record.Files
	s.backups = record.Backups

	// Keep new stamps ahead of everything already recorded
	s.lastStamp = record.Project.ModifiedAt
	for _, b := range s.backups {
		if b.Timestamp.After(s.lastStamp) {
			s.lastStamp = b.Timestamp
		}
	}

	s.logger.Info("Loaded project", "name", record.Project.Name, "files", s.files.Len(), "backups", len(s.backups))
	return true
}

func (s *Store) persistFailed(op string, err error) {
	s.logger.Warn("Persistence unavailable", "op", op, "key", s.key, "error", err)
	s.notify(KindPersistenceUnavailable, "", fmt.Errorf("%s %s: %w", op, s.key, err))
}
