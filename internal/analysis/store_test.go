package analysis

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAnalysis() *Analysis {
	return &Analysis{
		RepositoryPath:   "/work/demo",
		Timestamp:        time.Date(2026, 8, 22, 10, 0, 0, 0, time.UTC),
		LastAnalyzedHash: "abc123",
		Summary:          "A demo repository.",
		Insights:         []string{"Single binary under cmd/"},
		ProjectType:      "Go module",
		Technologies:     []string{"Go"},
		KeyDirectories:   []string{"internal"},
		ConfigFiles:      []string{"go.mod"},
	}
}

func TestDiskStoreRoundTrip(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	key := Key("/work/demo")

	got, err := store.Get(key)
	require.NoError(t, err)
	assert.Nil(t, got)

	want := sampleAnalysis()
	require.NoError(t, store.Put(key, want))

	got, err = store.Get(key)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, store.Delete(key))
	got, err = store.Get(key)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting an absent record is not an error.
	require.NoError(t, store.Delete(key))
}

func TestDiskStoreSurvivesProcessRestart(t *testing.T) {
	dir := t.TempDir()
	key := Key("/work/demo")

	first, err := NewDiskStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Put(key, sampleAnalysis()))

	second, err := NewDiskStore(dir)
	require.NoError(t, err)
	got, err := second.Get(key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "A demo repository.", got.Summary)
}

func TestDiskStoreGetReturnsCopies(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	key := Key("/work/demo")
	require.NoError(t, store.Put(key, sampleAnalysis()))

	first, err := store.Get(key)
	require.NoError(t, err)
	first.Summary = "mutated by caller"

	second, err := store.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "A demo repository.", second.Summary)
}

func TestDiskStoreRejectsNilRecord(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, store.Put(Key("/work/demo"), nil))
}

func TestDiskStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir)
	require.NoError(t, err)
	key := Key("/work/demo")
	require.NoError(t, os.WriteFile(filepath.Join(dir, key+".json"), []byte("{half a rec"), 0o644))

	_, err = store.Get(key)
	assert.Error(t, err)
}

func TestKeyStability(t *testing.T) {
	assert.Equal(t, Key("/work/demo"), Key("/work/demo"))
	assert.Equal(t, Key("/work/demo"), Key("/work/demo/"))
	assert.NotEqual(t, Key("/work/demo"), Key("/work/other"))
	assert.Len(t, Key("/work/demo"), 64)
}
