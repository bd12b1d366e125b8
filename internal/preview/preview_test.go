package preview

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, name string) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte("image bytes"), 0o600))

	return p
}

func TestRegistry_AcquireRelease(t *testing.T) {
	r, err := NewRegistry(t.TempDir(), nil)
	require.NoError(t, err)

	h, err := r.Acquire(writeSource(t, "photo.PNG"))
	require.NoError(t, err)

	assert.True(t, h.Valid())
	assert.Equal(t, ".png", filepath.Ext(h.Path))
	assert.FileExists(t, h.Path)
	assert.Equal(t, 1, r.Live())

	require.NoError(t, r.Release(h))
	assert.NoFileExists(t, h.Path)
	assert.Zero(t, r.Live())

	assert.ErrorIs(t, r.Release(h), ErrUnknownHandle, "double release")
}

func TestRegistry_ReleaseOnlyOwnHandle(t *testing.T) {
	r, err := NewRegistry(t.TempDir(), nil)
	require.NoError(t, err)

	src := writeSource(t, "a.jpg")

	handles := make([]Handle, 3)
	for i := range handles {
		handles[i], err = r.Acquire(src)
		require.NoError(t, err)
	}

	require.NoError(t, r.Release(handles[1]))

	assert.Equal(t, 2, r.Live())
	assert.FileExists(t, handles[0].Path)
	assert.NoFileExists(t, handles[1].Path)
	assert.FileExists(t, handles[2].Path)
}

func TestRegistry_CloseReleasesEverything(t *testing.T) {
	r, err := NewRegistry("", nil)
	require.NoError(t, err)

	dir := r.Dir()

	h, err := r.Acquire(writeSource(t, "b.gif"))
	require.NoError(t, err)
	require.FileExists(t, h.Path)

	require.NoError(t, r.Close())
	assert.Zero(t, r.Live())
	assert.NoDirExists(t, dir, "temporary directory removed")

	_, err = r.Acquire(writeSource(t, "c.gif"))
	assert.ErrorIs(t, err, ErrClosed)

	assert.NoError(t, r.Close(), "close is idempotent")
}

func TestRegistry_AcquireMissingSource(t *testing.T) {
	r, err := NewRegistry(t.TempDir(), nil)
	require.NoError(t, err)

	_, err = r.Acquire(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
	assert.Zero(t, r.Live())
}
