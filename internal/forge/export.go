package forge

import (
	"encoding/json"
	"fmt"
	"strings"

	"go-forge/internal/generator"
	"go-forge/internal/model"
	"go-forge/pkg/fsutils"

	"github.com/google/uuid"
)

// ArtifactExt is appended to the project slug to name exported artifacts.
const ArtifactExt = ".forge.json"

// Export rebuilds the manifest and returns the project with every file,
// manifest included.
func (s *Store) Export() (model.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return model.Artifact{}, ErrNoProject
	}

	if _, err := s.buildManifestLocked(); err != nil {
		return model.Artifact{}, fmt.Errorf("failed to export project: %w", err)
	}
	artifact := model.Artifact{Project: *s.project, Files: *s.files.Clone()}
	s.logger.Info("Exported project", "slug", s.project.Slug, "files", artifact.Files.Len())
	return artifact, nil
}

// ExportFilename is the download name for the active project's artifact.
func (s *Store) ExportFilename() string {
	slug := "project"
	if p, ok := s.Project(); ok && p.Slug != "" {
		// Imported artifacts keep whatever slug they carry
		slug = fsutils.SanitizeFilename(p.Slug)
	}
	return slug + ArtifactExt
}

// MarshalArtifact renders an artifact as indented JSON.
func MarshalArtifact(a model.Artifact) ([]byte, error) {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal artifact: %w", err)
	}
	return data, nil
}

// DecodeArtifact parses an exported artifact. File paths are validated while decoding.
func DecodeArtifact(data []byte) (model.Artifact, error) {
	var a model.Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return model.Artifact{}, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	return a, nil
}

// Import replaces the whole state with the artifact's project and files.
// Backups are discarded. Invalid artifacts leave the store untouched.
func (s *Store) Import(a model.Artifact) (model.Project, error) {
	if a.Files.Len() == 0 {
		return model.Project{}, fmt.Errorf("%w: artifact has no files", ErrInvalidArtifact)
	}
	for _, p := range a.Files.Paths() {
		// Paths built in code bypass decoding, so check them again
		if parsed, err := fsutils.ParseRelPath(p.String()); err != nil || parsed != p {
			return model.Project{}, fmt.Errorf("%w: bad path %q", ErrInvalidArtifact, p)
		}
	}

	project := a.Project
	if strings.TrimSpace(project.ID) == "" {
		project.ID = uuid.NewString()
	}
	if project.Slug == "" {
		project.Slug = generator.GenerateSlug(project.Name)
	}
	if project.Version == "" {
		project.Version = model.DefaultVersion
	}
	files := a.Files.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.stamp()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	s.project = &project
	s.files = files
	s.backups = nil
	s.commit(files.Entries()...)

	s.logger.Info("Imported project", "name", project.Name, "id", project.ID, "files", files.Len())
	return *s.project, nil
}
