package fsutils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrInvalidPath is returned for paths that are empty, absolute, or try to
// climb out of the project with a ".." segment.
var ErrInvalidPath = errors.New("invalid path")

// RelPath is a project-relative, slash-separated file path that has already
// been validated. The zero value is not a valid path; build one with ParseRelPath.
type RelPath string

// String returns the path as a plain string.
func (p RelPath) String() string {
	return string(p)
}

// Dir returns the parent directory of the path, or "" for top-level files.
func (p RelPath) Dir() string {
	i := strings.LastIndex(string(p), "/")
	if i < 0 {
		return ""
	}
	return string(p)[:i]
}

var driveLetter = regexp.MustCompile(`^[A-Za-z]:`)

// ParseRelPath validates raw and returns it as a RelPath.
// Traversal is rejected, not sanitized: "a/../b" fails instead of becoming "b".
func ParseRelPath(raw string) (RelPath, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("%w: path cannot be empty", ErrInvalidPath)
	}
	if strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, `\`) {
		return "", fmt.Errorf("%w: %q must be relative", ErrInvalidPath, raw)
	}
	if driveLetter.MatchString(raw) {
		return "", fmt.Errorf("%w: %q must be relative", ErrInvalidPath, raw)
	}

	// Split on both separators so "a\..\b" is caught on every platform.
	segments := strings.FieldsFunc(raw, func(r rune) bool { return r == '/' || r == '\\' })
	clean := make([]string, 0, len(segments))
	for _, seg := range segments {
		switch seg {
		case "..":
			return "", fmt.Errorf("%w: %q contains a '..' segment", ErrInvalidPath, raw)
		case ".":
			continue
		}
		clean = append(clean, seg)
	}
	if len(clean) == 0 {
		return "", fmt.Errorf("%w: %q does not name a file", ErrInvalidPath, raw)
	}
	return RelPath(strings.Join(clean, "/")), nil
}

// MustRelPath is ParseRelPath for literals known to be valid. It panics otherwise.
func MustRelPath(raw string) RelPath {
	p, err := ParseRelPath(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// JoinUnder resolves a relative path beneath root for writing to a real disk.
func JoinUnder(root string, p RelPath) string {
	return filepath.Join(root, filepath.FromSlash(string(p)))
}

// CreateDir creates a directory if it doesn't exist.
func CreateDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// WriteToFile writes content to a file, overwriting if it exists.
// Missing parent directories are created.
func WriteToFile(path string, content []byte) error {
	if err := CreateDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create parent directory for %s: %w", path, err)
	}
	return os.WriteFile(path, content, 0644)
}

// ReadFile reads the content of a file.
func ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// ScanDir lists files and directories directly under the given path.
func ScanDir(path string) ([]os.DirEntry, error) {
	return os.ReadDir(path)
}

// FileExists checks if a path exists and is a regular file (not a directory).
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

var nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9_.-]+`)
var collapseUnderscoreRegex = regexp.MustCompile(`_+`)

// SanitizeFilename converts a string into a safe format suitable for filenames.
// It lower-cases, replaces disallowed characters with underscores and collapses runs.
func SanitizeFilename(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	sanitized := nonAlphanumericRegex.ReplaceAllString(lower, "_")
	collapsed := collapseUnderscoreRegex.ReplaceAllString(sanitized, "_")
	if collapsed == "" && name != "" {
		return "_"
	}
	return collapsed
}
