package forge

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"go-forge/internal/model"
	"go-forge/internal/storage"
	"go-forge/pkg/fsutils"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskTrackerScenario(t *testing.T) {
	s := newTestStore(t, Options{KV: storage.NewMemoryStore()})
	newProject(t, s)
	require.Equal(t, []string{"index.html", "style.css", "app.js"}, s.List())

	originalApp, _ := s.Read("app.js")
	require.NoError(t, s.Write("app.js", "<patched>"))
	last, err := s.LastBackup("app.js")
	require.NoError(t, err)
	assert.Equal(t, originalApp, last.Content)

	manifest, err := s.BuildManifest()
	require.NoError(t, err)
	assert.Equal(t, 4, s.Len())
	assert.Equal(t, []string{"index.html", "style.css", "app.js", "manifest.json"}, manifest.Files)
	require.Len(t, manifest.Checksums, 4)
	for _, f := range manifest.Files {
		assert.Len(t, manifest.Checksums[f], 16, "checksum for %s", f)
	}

	results := s.RunSmokeTests()
	require.Len(t, results, 5)
	for _, r := range results {
		assert.True(t, r.Passed, "%s failed: %s", r.ID, r.Detail)
	}
	assert.True(t, Passed(results))

	artifact, err := s.Export()
	require.NoError(t, err)
	assert.Equal(t, []fsutils.RelPath{"index.html", "style.css", "app.js", "manifest.json"}, artifact.Files.Paths())
	assert.Equal(t, "task-tracker.forge.json", s.ExportFilename())
}

func TestApplyPatch(t *testing.T) {
	s := newTestStore(t, Options{})
	newProject(t, s)

	require.NoError(t, s.ApplyPatch("style.css", "styles", "h1 { color: red; }"))
	css, _ := s.Read("style.css")
	assert.Contains(t, css, "/* FORGE-PATCH-START:styles */\nh1 { color: red; }\n/* FORGE-PATCH-END:styles */")
	assert.NotContains(t, css, "var(--task-tracker-accent);\n}\n/* FORGE-PATCH-END")

	// The previous content was backed up and the change logged
	backups, _ := s.Backups("style.css")
	assert.Len(t, backups, 1)
	changelog, ok := s.Read("changelog.md")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(changelog, "# Changelog\n\n- 2026-10-18T09:30:00Z patched style.css region styles\n"), changelog)

	// Same content again gives the same file
	require.NoError(t, s.ApplyPatch("style.css", "styles", "h1 { color: red; }"))
	again, _ := s.Read("style.css")
	assert.Equal(t, css, again)
	changelog, _ = s.Read("changelog.md")
	assert.Equal(t, 2, strings.Count(changelog, "patched style.css"))
}

func TestApplyPatchFailsClosed(t *testing.T) {
	s := newTestStore(t, Options{})
	newProject(t, s)
	before, _ := s.Read("app.js")
	beforeProject, _ := s.Project()

	err := s.ApplyPatch("app.js", "render", "boom")
	require.ErrorIs(t, err, ErrMarkersNotFound)
	err = s.ApplyPatch("missing.js", "init", "boom")
	require.ErrorIs(t, err, ErrFileNotFound)

	after, _ := s.Read("app.js")
	assert.Equal(t, before, after)
	afterProject, _ := s.Project()
	assert.Equal(t, beforeProject.ModifiedAt, afterProject.ModifiedAt)
	_, ok := s.Read("changelog.md")
	assert.False(t, ok)
	backups, _ := s.Backups("")
	assert.Empty(t, backups)
}

func TestRegions(t *testing.T) {
	s := newTestStore(t, Options{})
	newProject(t, s)

	ids, err := s.Regions("index.html")
	require.NoError(t, err)
	assert.Equal(t, []string{"head", "body"}, ids)

	_, err = s.Regions("nope.html")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestManifestDeterminism(t *testing.T) {
	s := newTestStore(t, Options{})
	newProject(t, s)

	first, err := s.BuildManifest()
	require.NoError(t, err)
	second, err := s.BuildManifest()
	require.NoError(t, err)

	withoutManifest := cmpopts.IgnoreMapEntries(func(k, _ string) bool { return k == "manifest.json" })
	if diff := cmp.Diff(first.Checksums, second.Checksums, withoutManifest); diff != "" {
		t.Errorf("checksums changed between builds (-first +second):\n%s", diff)
	}
	assert.Equal(t, first.Files, second.Files)
	assert.Equal(t, "manifest.json", first.Files[len(first.Files)-1])

	// The manifest checksums what it replaced
	assert.Equal(t, Checksum(""), first.Checksums["manifest.json"])
	previous, _ := s.Backups("manifest.json")
	require.NotEmpty(t, previous)
	assert.Equal(t, Checksum(previous[len(previous)-1].Content), second.Checksums["manifest.json"])

	// The tracked file matches what was returned
	onDisk, err := s.ReadManifest()
	require.NoError(t, err)
	if diff := cmp.Diff(second, onDisk); diff != "" {
		t.Errorf("manifest.json differs from the built manifest (-built +file):\n%s", diff)
	}

	// Rebuilding backs up the previous manifest
	backups, _ := s.Backups("manifest.json")
	assert.Len(t, backups, 1)
}

func TestManifestChecksumsTrackContent(t *testing.T) {
	s := newTestStore(t, Options{})
	newProject(t, s)

	before, err := s.BuildManifest()
	require.NoError(t, err)
	require.NoError(t, s.Write("app.js", "changed"))
	after, err := s.BuildManifest()
	require.NoError(t, err)

	assert.NotEqual(t, before.Checksums["app.js"], after.Checksums["app.js"])
	assert.Equal(t, before.Checksums["index.html"], after.Checksums["index.html"])
	assert.Equal(t, Checksum("changed"), after.Checksums["app.js"])
}

func TestBackupRestoreRoundTrip(t *testing.T) {
	s := newTestStore(t, Options{})
	newProject(t, s)
	c1, _ := s.Read("index.html")

	require.NoError(t, s.Write("index.html", "<html>c2</html>"))
	last, err := s.LastBackup("index.html")
	require.NoError(t, err)
	require.NoError(t, s.Restore(last.Key().String()))

	got, _ := s.Read("index.html")
	assert.Equal(t, c1, got)

	// The restored backup is kept and the overwritten content was snapshotted
	backups, _ := s.Backups("index.html")
	require.Len(t, backups, 2)
	assert.Equal(t, c1, backups[0].Content)
	assert.Equal(t, "<html>c2</html>", backups[1].Content)

	changelog, _ := s.Read("changelog.md")
	assert.Contains(t, changelog, "restored index.html from backup "+last.Key().String())
}

func TestRestoreChangelogRoundTrip(t *testing.T) {
	s := newTestStore(t, Options{})
	newProject(t, s)
	require.NoError(t, s.AppendChangelog("first"))
	c1, _ := s.Read("changelog.md")

	require.NoError(t, s.Write("changelog.md", "c2"))
	last, err := s.LastBackup("changelog.md")
	require.NoError(t, err)
	require.NoError(t, s.Restore(last.Key().String()))

	got, _ := s.Read("changelog.md")
	assert.Equal(t, c1, got)
}

func TestApplyPatchToChangelog(t *testing.T) {
	s := newTestStore(t, Options{})
	newProject(t, s)
	require.NoError(t, s.Create("changelog.md", "# Changelog\n<!-- FORGE-PATCH-START:notes -->\nold\n<!-- FORGE-PATCH-END:notes -->\n"))

	require.NoError(t, s.ApplyPatch("changelog.md", "notes", "- new"))
	got, _ := s.Read("changelog.md")
	assert.Equal(t, "# Changelog\n<!-- FORGE-PATCH-START:notes -->\n- new\n<!-- FORGE-PATCH-END:notes -->\n", got)
}

func TestRestoreUnknownKey(t *testing.T) {
	s := newTestStore(t, Options{})
	newProject(t, s)

	for _, key := range []string{"index.html@1", "garbage", "../x@5"} {
		assert.ErrorIs(t, s.Restore(key), ErrNotFound, key)
	}
	_, err := s.LastBackup("index.html")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBackupKeysAreUniqueAndOrdered(t *testing.T) {
	s := newTestStore(t, Options{})
	newProject(t, s)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Write("app.js", fmt.Sprint(i)))
	}
	backups, _ := s.Backups("app.js")
	require.Len(t, backups, 5)
	seen := map[string]bool{}
	for i, b := range backups {
		key := b.Key().String()
		assert.False(t, seen[key], "duplicate key %s", key)
		seen[key] = true
		if i > 0 {
			assert.True(t, b.Timestamp.After(backups[i-1].Timestamp))
		}
	}
}

func TestMaxBackupsDiscardsOldestFirst(t *testing.T) {
	s := newTestStore(t, Options{MaxBackups: 3})
	newProject(t, s)

	for i := 1; i <= 5; i++ {
		require.NoError(t, s.Write("app.js", fmt.Sprintf("v%d", i)))
	}
	backups, _ := s.Backups("")
	require.Len(t, backups, 3)
	assert.Equal(t, []string{"v2", "v3", "v4"}, []string{backups[0].Content, backups[1].Content, backups[2].Content})
}

func TestExportCompleteness(t *testing.T) {
	s := newTestStore(t, Options{})
	newProject(t, s)
	require.NoError(t, s.Create("docs/readme.md", "# docs"))

	artifact, err := s.Export()
	require.NoError(t, err)

	var exported []string
	for _, p := range artifact.Files.Paths() {
		exported = append(exported, p.String())
	}
	assert.Equal(t, s.List(), exported)
	assert.Contains(t, exported, "manifest.json")

	data, err := MarshalArtifact(artifact)
	require.NoError(t, err)
	var generic map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &generic))
	assert.Contains(t, generic, "project")
	assert.Contains(t, generic, "files")
}

func TestImportReplacesState(t *testing.T) {
	src := newTestStore(t, Options{})
	newProject(t, src)
	require.NoError(t, src.Write("app.js", "exported"))
	artifact, err := src.Export()
	require.NoError(t, err)
	data, err := MarshalArtifact(artifact)
	require.NoError(t, err)

	decoded, err := DecodeArtifact(data)
	require.NoError(t, err)

	dst := newTestStore(t, Options{})
	_, err = dst.NewProject("blank", "Old")
	require.NoError(t, err)
	require.NoError(t, dst.Write("index.html", "old"))

	p, err := dst.Import(decoded)
	require.NoError(t, err)
	assert.Equal(t, artifact.Project.ID, p.ID)
	assert.Equal(t, src.List(), dst.List())
	if diff := cmp.Diff(src.Files(), dst.Files()); diff != "" {
		t.Errorf("imported files differ (-src +dst):\n%s", diff)
	}
	backups, _ := dst.Backups("")
	assert.Empty(t, backups)
}

func TestImportRejectsBadArtifacts(t *testing.T) {
	s := newTestStore(t, Options{})
	newProject(t, s)
	before := s.Files()

	_, err := DecodeArtifact([]byte(`{"project":{"name":"x"},"files":{"../../etc/passwd":"x"}}`))
	assert.ErrorIs(t, err, ErrInvalidArtifact)
	_, err = DecodeArtifact([]byte(`not json`))
	assert.ErrorIs(t, err, ErrInvalidArtifact)

	_, err = s.Import(model.Artifact{Project: model.Project{Name: "empty"}})
	assert.ErrorIs(t, err, ErrInvalidArtifact)

	assert.Equal(t, before, s.Files())
}

func TestImportFillsMissingMetadata(t *testing.T) {
	s := newTestStore(t, Options{})
	a := model.Artifact{
		Project: model.Project{Name: "Hand Made"},
		Files:   *model.NewFileSet(model.FileEntry{Path: "index.html", Content: "<html></html>"}),
	}
	p, err := s.Import(a)
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "hand-made", p.Slug)
	assert.Equal(t, model.DefaultVersion, p.Version)
	assert.Equal(t, fixedNow, p.CreatedAt)
}

func TestExportFilenameSanitizesImportedSlug(t *testing.T) {
	s := newTestStore(t, Options{})
	a := model.Artifact{
		Project: model.Project{Name: "Evil", Slug: "../Evil Slug"},
		Files:   *model.NewFileSet(model.FileEntry{Path: "index.html", Content: "<html></html>"}),
	}
	p, err := s.Import(a)
	require.NoError(t, err)
	assert.Equal(t, "../Evil Slug", p.Slug)

	name := s.ExportFilename()
	assert.Equal(t, ".._evil_slug.forge.json", name)
	assert.NotContains(t, name, "/")
}

func TestPersistenceRoundTrip(t *testing.T) {
	kv := storage.NewMemoryStore()
	s := newTestStore(t, Options{KV: kv})
	newProject(t, s)
	require.NoError(t, s.Create("z.txt", "z"))
	require.NoError(t, s.Create("a.txt", "a"))
	require.NoError(t, s.Write("app.js", "v2"))
	backup, err := s.LastBackup("app.js")
	require.NoError(t, err)

	reloaded := newTestStore(t, Options{KV: kv})
	require.True(t, reloaded.Load())

	before, _ := s.Project()
	after, _ := reloaded.Project()
	assert.Equal(t, before, after)
	assert.Equal(t, s.List(), reloaded.List())

	// Backups survive the reload and can still be restored
	require.NoError(t, reloaded.Restore(backup.Key().String()))
	got, _ := reloaded.Read("app.js")
	assert.Equal(t, backup.Content, got)

	// New stamps stay ahead of the recorded ones
	cur, _ := reloaded.Project()
	assert.True(t, cur.ModifiedAt.After(after.ModifiedAt))
}

func TestLoadWithoutRecord(t *testing.T) {
	s := newTestStore(t, Options{KV: storage.NewMemoryStore()})
	assert.False(t, s.Load())
	assert.Empty(t, s.Notices())

	assert.False(t, newTestStore(t, Options{}).Load())
}

func TestLoadCorruptRecordIsANotice(t *testing.T) {
	kv := storage.NewMemoryStore()
	require.NoError(t, kv.Set(DefaultKey, []byte(`{"project":`)))

	s := newTestStore(t, Options{KV: kv})
	assert.False(t, s.Load())
	notices := s.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, KindPersistenceUnavailable, notices[0].Kind)
}

func TestPersistenceFailuresAreSwallowed(t *testing.T) {
	s := newTestStore(t, Options{KV: brokenKV{}})

	newProject(t, s)
	require.NoError(t, s.Write("app.js", "still works"))
	got, _ := s.Read("app.js")
	assert.Equal(t, "still works", got)

	notices := s.Notices()
	require.Len(t, notices, 2)
	for _, n := range notices {
		assert.Equal(t, KindPersistenceUnavailable, n.Kind)
		assert.Contains(t, n.Error, "disk full")
	}

	assert.False(t, s.Load())
	s.Clear()
	assert.Len(t, s.Notices(), 4)
}

func TestCustomKey(t *testing.T) {
	kv := storage.NewMemoryStore()
	s := newTestStore(t, Options{KV: kv, Key: "workspace.alpha"})
	newProject(t, s)

	keys, err := kv.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"workspace.alpha"}, keys)
}

func TestAppendChangelog(t *testing.T) {
	clock := fixedNow
	s := newTestStore(t, Options{Now: func() time.Time { return clock }})
	newProject(t, s)

	require.NoError(t, s.AppendChangelog("first release"))
	clock = clock.Add(time.Hour)
	require.NoError(t, s.AppendChangelog("second\nline dropped"))
	assert.Error(t, s.AppendChangelog("   "))

	got, _ := s.Read("changelog.md")
	assert.Equal(t, "# Changelog\n\n- 2026-10-18T09:30:00Z first release\n- 2026-10-18T10:30:00Z second\n", got)
}
