package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileBackend_EnsureFileCreatesEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "analytics.json")
	b := NewFileBackend(path)

	require.NoError(t, b.EnsureFile())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestFileBackend_EnsureFileKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analytics.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"a"}]`), 0o644))

	b := NewFileBackend(path)
	require.NoError(t, b.EnsureFile())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, string(data))
}

func TestFileBackend_LoadMissingIsEmpty(t *testing.T) {
	b := NewFileBackend(filepath.Join(t.TempDir(), "absent.json"))

	data, err := b.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestFileBackend_SaveThenLoad(t *testing.T) {
	b := NewFileBackend(filepath.Join(t.TempDir(), "analytics.json"))
	ctx := context.Background()

	require.NoError(t, b.Save(ctx, []byte(`[1,2]`)))
	data, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(data))
}

func TestFileBackend_SaveIntoMissingDirectoryFails(t *testing.T) {
	b := NewFileBackend(filepath.Join(t.TempDir(), "no", "such", "dir", "a.json"))

	err := b.Save(context.Background(), []byte(`[]`))
	assert.Error(t, err)
}

func TestFileBackend_CancelledContext(t *testing.T) {
	b := NewFileBackend(filepath.Join(t.TempDir(), "analytics.json"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, b.Save(ctx, []byte(`[]`)), context.Canceled)
}
