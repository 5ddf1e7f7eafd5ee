package forge

import (
	"fmt"
	"strings"
	"time"

	"go-forge/internal/model"
	"go-forge/pkg/fsutils"
)

// ChangelogPath is the generated changelog file.
const ChangelogPath = fsutils.RelPath("changelog.md")

const changelogHeading = "# Changelog\n\n"

// AppendChangelog adds a timestamped line to changelog.md, creating the file
// if needed.
func (s *Store) AppendChangelog(note string) error {
	note = strings.TrimSpace(note)
	if note == "" {
		return fmt.Errorf("changelog note cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return ErrNoProject
	}

	entry := s.appendChangelogLocked(note)
	s.commit(entry)
	return nil
}

// appendChangelogLocked writes the line and returns the new changelog file.
// An existing changelog is updated with write semantics, so it is backed up.
func (s *Store) appendChangelogLocked(note string) model.FileEntry {
	// Only the first line of a note is kept
	if i := strings.IndexByte(note, '\n'); i >= 0 {
		note = note[:i]
	}
	line := fmt.Sprintf("- %s %s\n", s.stamp().Format(time.RFC3339), note)

	content, ok := s.files.Get(ChangelogPath)
	if ok {
		if content != "" && !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		content += line
		s.writeLocked(ChangelogPath, content)
	} else {
		content = changelogHeading + line
		s.files.Set(ChangelogPath, content)
	}
	s.logger.Debug("Appended changelog entry", "note", note)
	return model.FileEntry{Path: ChangelogPath, Content: content}
}
