package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/afkstats/internal/history"
	"github.com/verte-zerg/afkstats/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "afkstats.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestSettingsValues(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	got, err := st.GetValue(ctx, "g", "k")
	require.NoError(t, err)
	assert.Equal(t, "", got)

	require.NoError(t, st.SetValue(ctx, "g", "k", "one"))
	require.NoError(t, st.SetValue(ctx, "g", "k", "two"))
	require.NoError(t, st.SetValue(ctx, "g", "other", "x"))
	require.NoError(t, st.SetValue(ctx, "h", "k", "y"))

	got, err = st.GetValue(ctx, "g", "k")
	require.NoError(t, err)
	assert.Equal(t, "two", got)

	got, err = st.GetValue(ctx, "h", "k")
	require.NoError(t, err)
	assert.Equal(t, "y", got, "groups are independent")
}

func TestBlobBacksHistory(t *testing.T) {
	st := openTestStore(t)
	port := st.Blob(HistoryGroup, HistoryKey)

	m := history.New(port)
	require.NoError(t, m.Add(model.Session{ID: "a", Name: "Ünïcode ✓", StartTime: 1, EndTime: 2, AvgInterval: 12.5}))

	reloaded := history.New(st.Blob(HistoryGroup, HistoryKey))
	sessions := reloaded.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, "Ünïcode ✓", sessions[0].Name)
	assert.Equal(t, 12.5, sessions[0].AvgInterval)
}

func TestFileMissingLoadsEmpty(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "history.json"))
	blob, err := f.Load()
	require.NoError(t, err)
	assert.Equal(t, "", blob)
}

func TestFileSaveReplacesContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "history.json")
	f := NewFile(path)

	require.NoError(t, f.Save("first"))
	require.NoError(t, f.Save("second"))

	blob, err := f.Load()
	require.NoError(t, err)
	assert.Equal(t, "second", blob)
	assert.Equal(t, path, f.Path())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must be cleaned up")
}

func TestFileLoadError(t *testing.T) {
	dir := t.TempDir()
	f := NewFile(dir) // a directory cannot be read as a file
	_, err := f.Load()
	assert.Error(t, err)
}
