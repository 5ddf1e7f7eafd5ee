// Package forge holds the active project and its files. Every mutation goes
// through Store, which keeps backups, persists the project, and mirrors
// written files to an optional outbound queue.
package forge

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"go-forge/internal/generator"
	"go-forge/internal/mirror"
	"go-forge/internal/model"
	"go-forge/internal/storage"
	"go-forge/pkg/fsutils"

	"github.com/google/uuid"
)

// DefaultKey is the key-value store key the project record lives under.
const DefaultKey = "forge.project"

// Mirror accepts outbound file writes without blocking.
type Mirror interface {
	Enqueue(mirror.Request) error
}

// Options configures a Store. Every field is optional.
type Options struct {
	Logger     *slog.Logger
	Registry   *generator.Registry // Defaults to the built-in templates
	KV         storage.KVStore     // Nil disables persistence
	Key        string              // Defaults to DefaultKey
	MaxBackups int                 // 0 keeps every backup
	Mirror     Mirror              // Nil disables mirroring
	Notify     func(Notice)
	Now        func() time.Time
}

// Store is the file store for one active project.
// All methods are safe for concurrent use.
type Store struct {
	mu sync.Mutex

	logger     *slog.Logger
	registry   *generator.Registry
	kv         storage.KVStore
	key        string
	maxBackups int
	mirror     Mirror
	onNotice   func(Notice)
	now        func() time.Time

	project   *model.Project
	files     *model.FileSet
	backups   []model.BackupEntry
	lastStamp time.Time

	noticeMu sync.Mutex
	notices  []Notice
}

// NewStore creates an empty Store. Call Load to restore a persisted project.
func NewStore(opts Options) *Store {
	if opts.Logger == nil {
		// Provide a default discard logger if none is provided
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Registry == nil {
		opts.Registry = generator.DefaultRegistry()
	}
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{
		logger:     opts.Logger,
		registry:   opts.Registry,
		kv:         opts.KV,
		key:        opts.Key,
		maxBackups: opts.MaxBackups,
		mirror:     opts.Mirror,
		onNotice:   opts.Notify,
		now:        opts.Now,
		files:      model.NewFileSet(),
	}
}

// Registry returns the template registry new projects are created from.
func (s *Store) Registry() *generator.Registry {
	return s.registry
}

// --- Project lifecycle ---

// NewProject replaces the whole state with a fresh project built from a
// template. Files and backups of the previous project are discarded.
func (s *Store) NewProject(templateName, name string) (model.Project, error) {
	s.logger.Info("Creating project", "template", templateName, "name", name)

	// 1. Render the template before touching any state
	entries, err := s.registry.Instantiate(templateName, name)
	if err != nil {
		s.logger.Error("Error instantiating template", "template", templateName, "error", err)
		return model.Project{}, fmt.Errorf("failed to create project %q: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// 2. Swap in the new project
	now := s.stamp()
	s.project = &model.Project{
		ID:         uuid.NewString(),
		Name:       name,
		Slug:       generator.GenerateSlug(name),
		Template:   templateName,
		Version:    model.DefaultVersion,
		CreatedAt:  now,
		ModifiedAt: now,
	}
	s.files = model.NewFileSet(entries...)
	s.backups = nil

	// 3. Persist and mirror every seeded file
	s.saveLocked()
	for _, e := range entries {
		s.enqueueMirror(e.Path, e.Content)
	}

	s.logger.Info("Successfully created project", "name", name, "id", s.project.ID, "files", len(entries))
	return *s.project, nil
}

// Clear discards the project, its files and its backups, and removes the
// persisted record.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.project = nil
	s.files = model.NewFileSet()
	s.backups = nil

	if s.kv != nil {
		if err := s.kv.Delete(s.key); err != nil {
			s.logger.Warn("Failed to delete persisted project", "key", s.key, "error", err)
			s.notify(KindPersistenceUnavailable, "", err)
		}
	}
	s.logger.Info("Cleared project")
}

// Project returns the active project's metadata.
func (s *Store) Project() (model.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return model.Project{}, false
	}
	return *s.project, true
}

// --- Queries ---

// Read returns the content at path. Invalid or missing paths report false.
func (s *Store) Read(path string) (string, bool) {
	p, err := fsutils.ParseRelPath(path)
	if err != nil {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files.Get(p)
}

// List returns every tracked path in store order.
func (s *Store) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	paths := s.files.Paths()
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = p.String()
	}
	return out
}

// Files returns a copy of every file in store order.
func (s *Store) Files() []model.FileEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files.Entries()
}

// Len returns the number of tracked files.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files.Len()
}

// --- Mutations ---

// Create stores content at path, replacing any existing content without a backup.
func (s *Store) Create(path, content string) error {
	p, err := fsutils.ParseRelPath(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return ErrNoProject
	}

	s.files.Set(p, content)
	s.commit(model.FileEntry{Path: p, Content: content})
	s.logger.Info("Created file", "path", p, "bytes", len(content))
	return nil
}

// Write replaces the content at path, backing up the previous content first.
// Writing a missing path creates it.
func (s *Store) Write(path, content string) error {
	p, err := fsutils.ParseRelPath(path)
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return ErrNoProject
	}

	s.writeLocked(p, content)
	s.commit(model.FileEntry{Path: p, Content: content})
	s.logger.Info("Wrote file", "path", p, "bytes", len(content))
	return nil
}

// Delete backs up and removes the file at path.
func (s *Store) Delete(path string) error {
	p, err := fsutils.ParseRelPath(path)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return ErrNoProject
	}

	old, ok := s.files.Get(p)
	if !ok {
		return fmt.Errorf("failed to delete %s: %w", p, ErrNotFound)
	}
	s.snapshot(p, old)
	s.files.Delete(p)
	s.commit()
	s.logger.Info("Deleted file", "path", p)
	return nil
}

// Rename moves the file at from to to, keeping its position in the store.
// Content is unchanged, so no backup is taken.
func (s *Store) Rename(from, to string) error {
	src, err := fsutils.ParseRelPath(from)
	if err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}
	dst, err := fsutils.ParseRelPath(to)
	if err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return ErrNoProject
	}

	if !s.files.Has(src) {
		return fmt.Errorf("failed to rename %s: %w", src, ErrNotFound)
	}
	if src == dst {
		return nil
	}
	if s.files.Has(dst) {
		return fmt.Errorf("failed to rename %s to %s: %w", src, dst, ErrAlreadyExists)
	}

	s.files.Rename(src, dst)
	s.commit()
	s.logger.Info("Renamed file", "from", src, "to", dst)
	return nil
}

// writeLocked applies write semantics: snapshot an existing file, warn on an implicit create.
func (s *Store) writeLocked(p fsutils.RelPath, content string) {
	if old, ok := s.files.Get(p); ok {
		s.snapshot(p, old)
	} else {
		s.logger.Warn("Write to missing file, creating it", "path", p)
	}
	s.files.Set(p, content)
}

// commit finishes a successful mutation: bump modifiedAt, persist, mirror.
func (s *Store) commit(mirrored ...model.FileEntry) {
	s.project.ModifiedAt = s.stamp()
	s.saveLocked()
	for _, f := range mirrored {
		s.enqueueMirror(f.Path, f.Content)
	}
}

func (s *Store) enqueueMirror(p fsutils.RelPath, content string) {
	if s.mirror == nil {
		return
	}
	req := mirror.NewRequest(p.String(), content)
	if err := s.mirror.Enqueue(req); err != nil {
		s.logger.Warn("Dropped mirror request", "path", p, "requestID", req.ID, "error", err)
		s.notify(KindMirrorDropped, p.String(), err)
	}
}

// stamp returns the current UTC time, nudged forward so that successive
// stamps from one store are strictly increasing.
func (s *Store) stamp() time.Time {
	t := s.now().UTC()
	if !t.After(s.lastStamp) {
		t = s.lastStamp.Add(time.Nanosecond)
	}
	s.lastStamp = t
	return t
}
