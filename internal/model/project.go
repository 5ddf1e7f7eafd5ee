package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go-forge/pkg/fsutils"
)

// DefaultVersion is stamped on new projects and copied into their manifest.
const DefaultVersion = "1.0.0"

// Project is the active scaffold's metadata.
type Project struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`     // Free-text label
	Slug       string    `json:"slug"`     // Derived from Name, used for identifiers and filenames
	Template   string    `json:"template"` // Registry entry the project was created from
	Version    string    `json:"version,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"` // Bumped on every file store mutation
}

// FileEntry is a single tracked file.
type FileEntry struct {
	Path    fsutils.RelPath `json:"path"`
	Content string          `json:"content"`
}

// BackupKey identifies one snapshot. Several snapshots of the same path coexist.
type BackupKey struct {
	Path      fsutils.RelPath
	Timestamp time.Time
}

// String renders the key as "<path>@<unix-nanoseconds>".
func (k BackupKey) String() string {
	return fmt.Sprintf("%s@%d", k.Path, k.Timestamp.UnixNano())
}

// Matches reports whether two keys name the same snapshot.
func (k BackupKey) Matches(other BackupKey) bool {
	return k.Path == other.Path && k.Timestamp.UnixNano() == other.Timestamp.UnixNano()
}

// ParseBackupKey parses the String form of a BackupKey.
func ParseBackupKey(raw string) (BackupKey, error) {
	at := strings.LastIndex(raw, "@")
	if at <= 0 || at == len(raw)-1 {
		return BackupKey{}, fmt.Errorf("malformed backup key %q", raw)
	}
	p, err := fsutils.ParseRelPath(raw[:at])
	if err != nil {
		return BackupKey{}, fmt.Errorf("malformed backup key %q: %w", raw, err)
	}
	nanos, err := strconv.ParseInt(raw[at+1:], 10, 64)
	if err != nil {
		return BackupKey{}, fmt.Errorf("malformed backup key %q: %w", raw, err)
	}
	return BackupKey{Path: p, Timestamp: time.Unix(0, nanos).UTC()}, nil
}

// BackupEntry is an immutable pre-mutation snapshot of one file.
type BackupEntry struct {
	Path      fsutils.RelPath `json:"path"`
	Content   string          `json:"content"`
	Timestamp time.Time       `json:"timestamp"`
}

// Key returns the snapshot's identifying key.
func (b BackupEntry) Key() BackupKey {
	return BackupKey{Path: b.Path, Timestamp: b.Timestamp}
}

// Manifest summarizes the tracked files. It is derived, never hand-edited.
type Manifest struct {
	Name      string            `json:"name"`
	Version   string            `json:"version"`
	Template  string            `json:"template"`
	Created   time.Time         `json:"created"`
	Modified  time.Time         `json:"modified"`
	Files     []string          `json:"files"`
	Checksums map[string]string `json:"checksums"`
}

// SmokeResult is the outcome of one structural check. Always recomputed.
type SmokeResult struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// Artifact is the exported package: project metadata plus every file.
type Artifact struct {
	Project Project `json:"project"`
	Files   FileSet `json:"files"`
}

// Record is what the persistence bridge writes to the key-value store.
type Record struct {
	Project Project       `json:"project"`
	Files   FileSet       `json:"files"`
	Backups []BackupEntry `json:"backups,omitempty"`
}
