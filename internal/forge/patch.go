package forge

import (
	"fmt"

	"go-forge/internal/model"
	"go-forge/internal/patch"
	"go-forge/pkg/fsutils"
)

// ApplyPatch replaces the region named patchID inside the file at path.
// If the file or either marker is missing nothing changes.
func (s *Store) ApplyPatch(path, patchID, newContent string) error {
	p, err := fsutils.ParseRelPath(path)
	if err != nil {
		return fmt.Errorf("failed to patch file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return ErrNoProject
	}

	current, ok := s.files.Get(p)
	if !ok {
		return fmt.Errorf("failed to patch %s: %w", p, ErrFileNotFound)
	}
	patched, err := patch.Apply(current, patchID, newContent)
	if err != nil {
		s.logger.Error("Patch rejected", "path", p, "patchID", patchID, "error", err)
		return fmt.Errorf("failed to patch %s: %w", p, err)
	}

	s.writeLocked(p, patched)
	changed := []model.FileEntry{{Path: p, Content: patched}}
	if p != ChangelogPath {
		changed = append(changed, s.appendChangelogLocked(fmt.Sprintf("patched %s region %s", p, patchID)))
	}
	s.commit(changed...)
	s.logger.Info("Applied patch", "path", p, "patchID", patchID)
	return nil
}

// Regions lists the patch ids available in the file at path.
func (s *Store) Regions(path string) ([]string, error) {
	p, err := fsutils.ParseRelPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to list regions: %w", err)
	}
	content, ok := s.Read(p.String())
	if !ok {
		return nil, fmt.Errorf("failed to list regions of %s: %w", p, ErrFileNotFound)
	}
	return patch.Regions(content), nil
}
