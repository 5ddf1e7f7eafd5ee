package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backends returns one fresh instance of every KVStore implementation.
func backends(t *testing.T) map[string]KVStore {
	t.Helper()

	jsonStore, err := NewJSONStore(filepath.Join(t.TempDir(), ".forge"))
	require.NoError(t, err)
	sqliteStore, err := NewSQLiteStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { sqliteStore.Close() })

	return map[string]KVStore{
		"json":   jsonStore,
		"sqlite": sqliteStore,
		"memory": NewMemoryStore(),
	}
}

func TestKVStoreContract(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get("forge.project")
			require.Error(t, err)
			assert.True(t, IsNotFound(err), "missing key should be not-found, got %v", err)

			require.NoError(t, store.Set("forge.project", []byte(`{"v":1}`)))
			require.NoError(t, store.Set("forge.project", []byte(`{"v":2}`)))
			require.NoError(t, store.Set("other", []byte("x")))

			got, err := store.Get("forge.project")
			require.NoError(t, err)
			assert.Equal(t, `{"v":2}`, string(got))

			keys, err := store.Keys()
			require.NoError(t, err)
			assert.Equal(t, []string{"forge.project", "other"}, keys)

			require.NoError(t, store.Delete("forge.project"))
			require.NoError(t, store.Delete("forge.project"), "delete is idempotent")
			_, err = store.Get("forge.project")
			assert.True(t, IsNotFound(err))
		})
	}
}

func TestKVStoreRejectsBadKeys(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"", "../escape", "a/b", "UPPER", ".hidden"} {
				assert.Error(t, store.Set(key, []byte("x")), "key %q", key)
				_, err := store.Get(key)
				assert.Error(t, err, "key %q", key)
				assert.False(t, IsNotFound(err), "key %q should be invalid, not missing", key)
			}
		})
	}
}

func TestNewJSONStore(t *testing.T) {
	metadataPath := filepath.Join(t.TempDir(), ".test_metadata")

	store, err := NewJSONStore(metadataPath)
	require.NoError(t, err)

	info, err := os.Stat(metadataPath)
	require.NoError(t, err, "NewJSONStore() did not create the base directory")
	assert.True(t, info.IsDir())
	assert.Equal(t, metadataPath, store.GetBasePath())
}

func TestJSONStoreWritesOneFilePerKey(t *testing.T) {
	dir := t.TempDir()
	store, err := NewJSONStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("forge.project", []byte(`{}`)))

	data, err := os.ReadFile(filepath.Join(dir, "forge.project.json"))
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))

	// No temp files are left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	// Stray files are not reported as keys
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0755))
	keys, err := store.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"forge.project"}, keys)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewSQLiteStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("forge.project", []byte("persisted")))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get("forge.project")
	require.NoError(t, err)
	assert.Equal(t, "persisted", string(got))
	assert.FileExists(t, filepath.Join(dir, SQLiteFile))
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	store := NewMemoryStore()
	value := []byte("abc")
	require.NoError(t, store.Set("k", value))
	value[0] = 'X'

	got, err := store.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[0] = 'Y'
	again, err := store.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))

	assert.Empty(t, store.GetBasePath())
	assert.NoError(t, store.Close())
}

func TestOpen(t *testing.T) {
	for _, backend := range []string{"json", "sqlite", "memory"} {
		store, err := Open(backend, t.TempDir())
		require.NoError(t, err, backend)
		require.NoError(t, store.Close())
	}
	_, err := Open("redis", t.TempDir())
	assert.Error(t, err)
}
