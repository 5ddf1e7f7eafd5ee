package forge

import (
	"errors"
	"sync"
	"testing"
	"time"

	"go-forge/internal/mirror"
	"go-forge/internal/model"
	"go-forge/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

// fakeMirror records requests, or rejects them all when err is set.
type fakeMirror struct {
	mu   sync.Mutex
	reqs []mirror.Request
	err  error
}

func (f *fakeMirror) Enqueue(r mirror.Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.reqs = append(f.reqs, r)
	return nil
}

func (f *fakeMirror) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.reqs))
	for i, r := range f.reqs {
		out[i] = r.Path
	}
	return out
}

// brokenKV fails every operation.
type brokenKV struct{}

var errDiskFull = errors.New("disk full")

func (brokenKV) Get(string) ([]byte, error) { return nil, errDiskFull }
func (brokenKV) Set(string, []byte) error   { return errDiskFull }
func (brokenKV) Delete(string) error        { return errDiskFull }
func (brokenKV) Keys() ([]string, error)    { return nil, errDiskFull }
func (brokenKV) GetBasePath() string        { return "" }
func (brokenKV) Close() error               { return nil }

func newTestStore(t *testing.T, opts Options) *Store {
	t.Helper()
	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	return NewStore(opts)
}

func newProject(t *testing.T, s *Store) model.Project {
	t.Helper()
	p, err := s.NewProject("html-js", "Task Tracker")
	require.NoError(t, err)
	return p
}

func TestNewProject(t *testing.T) {
	s := newTestStore(t, Options{})
	p := newProject(t, s)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Task Tracker", p.Name)
	assert.Equal(t, "task-tracker", p.Slug)
	assert.Equal(t, "html-js", p.Template)
	assert.Equal(t, model.DefaultVersion, p.Version)
	assert.Equal(t, fixedNow, p.CreatedAt)
	assert.Equal(t, []string{"index.html", "style.css", "app.js"}, s.List())
	assert.Equal(t, 3, s.Len())

	got, ok := s.Project()
	require.True(t, ok)
	assert.Equal(t, p, got)
}

func TestNewProjectUnknownTemplateLeavesStateAlone(t *testing.T) {
	s := newTestStore(t, Options{})
	before := newProject(t, s)
	require.NoError(t, s.Write("app.js", "custom"))

	_, err := s.NewProject("does-not-exist", "Other")
	require.ErrorIs(t, err, ErrUnknownTemplate)

	after, _ := s.Project()
	assert.Equal(t, before.ID, after.ID)
	content, _ := s.Read("app.js")
	assert.Equal(t, "custom", content)
	backups, _ := s.Backups("")
	assert.Len(t, backups, 1)
}

func TestNewProjectDiscardsPreviousState(t *testing.T) {
	s := newTestStore(t, Options{})
	newProject(t, s)
	require.NoError(t, s.Write("app.js", "x"))
	require.NoError(t, s.Create("extra.txt", "y"))

	_, err := s.NewProject("blank", "Fresh")
	require.NoError(t, err)
	assert.Equal(t, []string{"index.html"}, s.List())
	backups, _ := s.Backups("")
	assert.Empty(t, backups)
}

func TestOperationsWithoutProject(t *testing.T) {
	s := newTestStore(t, Options{})

	assert.ErrorIs(t, s.Create("a.txt", ""), ErrNoProject)
	assert.ErrorIs(t, s.Write("a.txt", ""), ErrNoProject)
	assert.ErrorIs(t, s.Delete("a.txt"), ErrNoProject)
	assert.ErrorIs(t, s.Rename("a.txt", "b.txt"), ErrNoProject)
	assert.ErrorIs(t, s.ApplyPatch("a.txt", "x", ""), ErrNoProject)
	assert.ErrorIs(t, s.AppendChangelog("note"), ErrNoProject)
	_, err := s.BuildManifest()
	assert.ErrorIs(t, err, ErrNoProject)
	_, err = s.Export()
	assert.ErrorIs(t, err, ErrNoProject)

	_, ok := s.Read("a.txt")
	assert.False(t, ok)
	_, ok = s.Project()
	assert.False(t, ok)
}

func TestPathSafety(t *testing.T) {
	s := newTestStore(t, Options{})
	newProject(t, s)
	before := s.Files()

	for _, bad := range []string{"../secret", "/etc/passwd", "a/../../b", `..\win`, "", "C:/x"} {
		assert.ErrorIs(t, s.Create(bad, "x"), ErrInvalidPath, "create %q", bad)
		assert.ErrorIs(t, s.Write(bad, "x"), ErrInvalidPath, "write %q", bad)
		assert.ErrorIs(t, s.Rename("app.js", bad), ErrInvalidPath, "rename to %q", bad)
		_, ok := s.Read(bad)
		assert.False(t, ok)
	}

	assert.Equal(t, before, s.Files())
	backups, _ := s.Backups("")
	assert.Empty(t, backups)
}

func TestCreateReplacesWithoutBackup(t *testing.T) {
	s := newTestStore(t, Options{})
	newProject(t, s)

	require.NoError(t, s.Create("notes/todo.md", ""))
	require.NoError(t, s.Create("notes/todo.md", "- buy milk"))

	got, ok := s.Read("notes/todo.md")
	require.True(t, ok)
	assert.Equal(t, "- buy milk", got)
	backups, _ := s.Backups("notes/todo.md")
	assert.Empty(t, backups)

	// Normalized paths address the same file
	got, ok = s.Read("./notes//todo.md")
	require.True(t, ok)
	assert.Equal(t, "- buy milk", got)
}

func TestWriteIdempotence(t *testing.T) {
	s := newTestStore(t, Options{})
	newProject(t, s)

	require.NoError(t, s.Write("app.js", "v2"))
	first, _ := s.Backups("app.js")
	require.NoError(t, s.Write("app.js", "v2"))
	second, _ := s.Backups("app.js")

	got, _ := s.Read("app.js")
	assert.Equal(t, "v2", got)
	assert.Len(t, second, len(first)+1)
	assert.Equal(t, "v2", second[len(second)-1].Content)
}

func TestWriteMissingPathCreatesIt(t *testing.T) {
	s := newTestStore(t, Options{})
	newProject(t, s)

	require.NoError(t, s.Write("new.js", "fresh"))
	got, ok := s.Read("new.js")
	require.True(t, ok)
	assert.Equal(t, "fresh", got)
	backups, _ := s.Backups("new.js")
	assert.Empty(t, backups, "nothing to snapshot for a new file")
}

func TestDelete(t *testing.T) {
	s := newTestStore(t, Options{})
	newProject(t, s)

	require.NoError(t, s.Delete("style.css"))
	_, ok := s.Read("style.css")
	assert.False(t, ok)

	last, err := s.LastBackup("style.css")
	require.NoError(t, err)
	assert.Contains(t, last.Content, "Styles for Task Tracker")

	assert.ErrorIs(t, s.Delete("style.css"), ErrNotFound)
}

func TestRename(t *testing.T) {
	s := newTestStore(t, Options{})
	newProject(t, s)
	original, _ := s.Read("style.css")

	require.NoError(t, s.Rename("style.css", "css/main.css"))
	assert.Equal(t, []string{"index.html", "css/main.css", "app.js"}, s.List())
	got, _ := s.Read("css/main.css")
	assert.Equal(t, original, got)
	backups, _ := s.Backups("")
	assert.Empty(t, backups, "rename takes no snapshot")

	assert.ErrorIs(t, s.Rename("missing.css", "x.css"), ErrNotFound)
	assert.ErrorIs(t, s.Rename("app.js", "index.html"), ErrAlreadyExists)
	assert.NoError(t, s.Rename("app.js", "./app.js"))
	assert.Equal(t, []string{"index.html", "css/main.css", "app.js"}, s.List())
}

func TestModifiedAtIncreasesOnEveryMutation(t *testing.T) {
	s := newTestStore(t, Options{})
	p := newProject(t, s)

	last := p.ModifiedAt
	mutations := []func() error{
		func() error { return s.Create("a.txt", "a") },
		func() error { return s.Write("a.txt", "b") },
		func() error { return s.Rename("a.txt", "b.txt") },
		func() error { return s.Delete("b.txt") },
		func() error { return s.ApplyPatch("app.js", "init", "x();") },
	}
	for i, m := range mutations {
		require.NoError(t, m())
		cur, _ := s.Project()
		assert.True(t, cur.ModifiedAt.After(last), "mutation %d did not bump modifiedAt", i)
		last = cur.ModifiedAt
	}
}

func TestClear(t *testing.T) {
	kv := storage.NewMemoryStore()
	s := newTestStore(t, Options{KV: kv})
	newProject(t, s)
	require.NoError(t, s.Write("app.js", "x"))

	s.Clear()

	_, ok := s.Project()
	assert.False(t, ok)
	assert.Empty(t, s.List())
	backups, _ := s.Backups("")
	assert.Empty(t, backups)
	_, err := kv.Get(DefaultKey)
	assert.True(t, storage.IsNotFound(err))
}

func TestMirrorOnCreateAndWriteOnly(t *testing.T) {
	m := &fakeMirror{}
	s := newTestStore(t, Options{Mirror: m})
	newProject(t, s)

	require.NoError(t, s.Create("a.txt", "a"))
	require.NoError(t, s.Write("a.txt", "b"))
	require.NoError(t, s.Rename("a.txt", "b.txt"))
	require.NoError(t, s.Delete("b.txt"))

	assert.Equal(t, []string{"index.html", "style.css", "app.js", "a.txt", "a.txt"}, m.paths())
	assert.Equal(t, "b", m.reqs[4].Content)
}

func TestMirrorDropIsANotice(t *testing.T) {
	m := &fakeMirror{err: mirror.ErrQueueFull}
	var seen []Notice
	s := newTestStore(t, Options{Mirror: m, Notify: func(n Notice) { seen = append(seen, n) }})
	newProject(t, s)

	require.NoError(t, s.Write("app.js", "still written"))
	got, _ := s.Read("app.js")
	assert.Equal(t, "still written", got)

	require.Len(t, seen, 4)
	assert.Equal(t, KindMirrorDropped, seen[3].Kind)
	assert.Equal(t, "app.js", seen[3].Path)
	assert.Contains(t, seen[3].Error, "full")
	assert.Equal(t, seen, s.Notices())
}

func TestReportMirrorFailure(t *testing.T) {
	s := newTestStore(t, Options{})
	s.ReportMirrorFailure(mirror.NewRequest("index.html", "x"), errors.New("companion offline"))

	notices := s.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, KindMirrorWriteFailed, notices[0].Kind)
	assert.Equal(t, "companion offline", notices[0].Error)
}

func TestNoticesAreBounded(t *testing.T) {
	s := newTestStore(t, Options{})
	for i := 0; i < maxNotices+10; i++ {
		s.ReportMirrorFailure(mirror.Request{Path: "p"}, errors.New("x"))
	}
	assert.Len(t, s.Notices(), maxNotices)
}
