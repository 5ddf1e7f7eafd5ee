package forge

import (
	"fmt"

	"go-forge/internal/model"
	"go-forge/pkg/fsutils"
)

// snapshot records the pre-mutation content of p, discarding the oldest
// backups once MaxBackups is exceeded.
func (s *Store) snapshot(p fsutils.RelPath, content string) {
	entry := model.BackupEntry{Path: p, Content: content, Timestamp: s.stamp()}
	s.backups = append(s.backups, entry)
	if s.maxBackups > 0 && len(s.backups) > s.maxBackups {
		dropped := len(s.backups) - s.maxBackups
		s.backups = append([]model.BackupEntry(nil), s.backups[dropped:]...)
		s.logger.Debug("Discarded oldest backups", "count", dropped)
	}
	s.logger.Debug("Backed up file", "path", p, "key", entry.Key().String())
}

// Backups lists the backups of path oldest first. An empty path lists all of them.
func (s *Store) Backups(path string) ([]model.BackupEntry, error) {
	var filter fsutils.RelPath
	if path != "" {
		p, err := fsutils.ParseRelPath(path)
		if err != nil {
			return nil, fmt.Errorf("failed to list backups: %w", err)
		}
		filter = p
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.BackupEntry, 0, len(s.backups))
	for _, b := range s.backups {
		if filter == "" || b.Path == filter {
			out = append(out, b)
		}
	}
	return out, nil
}

// LastBackup returns the newest backup of path.
func (s *Store) LastBackup(path string) (model.BackupEntry, error) {
	backups, err := s.Backups(path)
	if err != nil {
		return model.BackupEntry{}, err
	}
	if len(backups) == 0 {
		return model.BackupEntry{}, fmt.Errorf("no backup of %s: %w", path, ErrNotFound)
	}
	return backups[len(backups)-1], nil
}

// Restore writes a backup's content back to its path. The backup itself is
// kept, and the content it replaces is backed up like any other write.
func (s *Store) Restore(key string) error {
	k, err := model.ParseBackupKey(key)
	if err != nil {
		return fmt.Errorf("failed to restore %q: %v: %w", key, err, ErrNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return ErrNoProject
	}

	var found *model.BackupEntry
	for i := range s.backups {
		if s.backups[i].Key().Matches(k) {
			found = &s.backups[i]
			break
		}
	}
	if found == nil {
		return fmt.Errorf("failed to restore %s: %w", key, ErrNotFound)
	}
	entry := *found

	s.writeLocked(entry.Path, entry.Content)
	changed := []model.FileEntry{{Path: entry.Path, Content: entry.Content}}
	// A restored changelog keeps exactly the backed-up content
	if entry.Path != ChangelogPath {
		changed = append(changed, s.appendChangelogLocked(fmt.Sprintf("restored %s from backup %s", entry.Path, key)))
	}
	s.commit(changed...)
	s.logger.Info("Restored file", "path", entry.Path, "key", key)
	return nil
}
