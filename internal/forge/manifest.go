package forge

import (
	"encoding/json"
	"fmt"

	"go-forge/internal/model"
	"go-forge/pkg/fsutils"

	"github.com/cespare/xxhash/v2"
)

// ManifestPath is the generated manifest file.
const ManifestPath = fsutils.RelPath("manifest.json")

// Checksum returns the xxhash64 of content as 16 lowercase hex characters.
func Checksum(content string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))
}

// BuildManifest summarizes every tracked file and writes the result to
// manifest.json. The manifest lists itself with the checksum of its
// previous content, empty on the first build.
func (s *Store) BuildManifest() (model.Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return model.Manifest{}, ErrNoProject
	}
	return s.buildManifestLocked()
}

func (s *Store) buildManifestLocked() (model.Manifest, error) {
	m := model.Manifest{
		Name:      s.project.Name,
		Version:   s.project.Version,
		Template:  s.project.Template,
		Created:   s.project.CreatedAt,
		Modified:  s.project.ModifiedAt,
		Files:     []string{},
		Checksums: map[string]string{},
	}
	if m.Version == "" {
		m.Version = model.DefaultVersion
	}
	for _, f := range s.files.Entries() {
		m.Files = append(m.Files, f.Path.String())
		m.Checksums[f.Path.String()] = Checksum(f.Content)
	}
	// The first build appends manifest.json, matching where Set will place it
	if !s.files.Has(ManifestPath) {
		m.Files = append(m.Files, ManifestPath.String())
		m.Checksums[ManifestPath.String()] = Checksum("")
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return model.Manifest{}, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	content := string(data) + "\n"

	// Create the first time, write afterwards so the old manifest is backed up
	if s.files.Has(ManifestPath) {
		s.writeLocked(ManifestPath, content)
	} else {
		s.files.Set(ManifestPath, content)
	}
	s.commit(model.FileEntry{Path: ManifestPath, Content: content})
	s.logger.Info("Built manifest", "files", len(m.Files))
	return m, nil
}

// ReadManifest decodes the tracked manifest.json.
func (s *Store) ReadManifest() (model.Manifest, error) {
	content, ok := s.Read(ManifestPath.String())
	if !ok {
		return model.Manifest{}, fmt.Errorf("failed to read manifest: %w", ErrFileNotFound)
	}
	var m model.Manifest
	if err := json.Unmarshal([]byte(content), &m); err != nil {
		return model.Manifest{}, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return m, nil
}
