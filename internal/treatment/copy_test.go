package treatment

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopy(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()

	writeFile(t, filepath.Join(in, "a__2026-01-25.csv"), "a")
	writeFile(t, filepath.Join(in, "station=1", "b__2026-01-26.csv"), "b")
	writeFile(t, filepath.Join(in, "notes.txt"), "n")

	err := Copy(context.Background(), in, out, map[string]any{"pattern": "*.csv", "overwrite": true})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(out, "a__2026-01-25.csv"))
	assert.FileExists(t, filepath.Join(out, "station=1", "b__2026-01-26.csv"))
	assert.NoFileExists(t, filepath.Join(out, "notes.txt"))
}

func TestCopy_FollowsSymlinks(t *testing.T) {
	src := t.TempDir()
	in := t.TempDir()
	out := t.TempDir()

	writeFile(t, filepath.Join(src, "x__2026-01-25.csv"), "data")
	require.NoError(t, os.Symlink(filepath.Join(src, "x__2026-01-25.csv"), filepath.Join(in, "x__2026-01-25.csv")))

	require.NoError(t, Copy(context.Background(), in, out, nil))

	info, err := os.Lstat(filepath.Join(out, "x__2026-01-25.csv"))
	require.NoError(t, err)
	assert.True(t, info.Mode().IsRegular())
}

func TestCopy_NoOverwrite(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()

	writeFile(t, filepath.Join(in, "f.csv"), "new")
	writeFile(t, filepath.Join(out, "f.csv"), "old")

	require.NoError(t, Copy(context.Background(), in, out, map[string]any{"overwrite": false}))

	data, err := os.ReadFile(filepath.Join(out, "f.csv"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}

func TestCopy_BadPattern(t *testing.T) {
	err := Copy(context.Background(), t.TempDir(), t.TempDir(), map[string]any{"pattern": "["})
	assert.ErrorIs(t, err, ErrInvalidParams)
}
