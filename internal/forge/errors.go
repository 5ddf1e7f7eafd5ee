package forge

import (
	"errors"

	"go-forge/internal/generator"
	"go-forge/internal/patch"
	"go-forge/pkg/fsutils"
)

var (
	// ErrNotFound is returned by Delete, Rename and Restore when the file or backup is missing.
	ErrNotFound = errors.New("not found")

	// ErrFileNotFound is returned by ApplyPatch when the target file is missing.
	ErrFileNotFound = errors.New("file not found")

	// ErrAlreadyExists is returned by Rename when the destination is taken.
	ErrAlreadyExists = errors.New("already exists")

	// ErrNoProject is returned by operations that need an active project.
	ErrNoProject = errors.New("no active project")

	// ErrInvalidArtifact is returned by Import for artifacts that cannot become a project.
	ErrInvalidArtifact = errors.New("invalid artifact")
)

// Re-exported so callers need a single import.
var (
	ErrInvalidPath     = fsutils.ErrInvalidPath
	ErrUnknownTemplate = generator.ErrUnknownTemplate
	ErrMarkersNotFound = patch.ErrMarkersNotFound
)
