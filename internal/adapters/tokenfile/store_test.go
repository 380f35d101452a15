package tokenfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	store := New(path)

	require.NoError(t, store.Save("tok-abc"))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStore_LoadMissingFile(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "absent"))
	got, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_ClearIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	store := New(path)

	require.NoError(t, store.Save("tok"))
	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())

	got, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, got)
}
