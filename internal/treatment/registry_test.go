package treatment

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDefaultRegistry_Builtins(t *testing.T) {
	r := DefaultRegistry(Config{})

	for _, name := range []string{"copy", "upload"} {
		loc, err := r.Resolve(name)
		require.NoError(t, err, name)
		assert.True(t, loc.Builtin)

		schema, err := r.LoadSchema(loc)
		require.NoError(t, err, name)
		assert.Equal(t, name, schema.Name)
	}
}

func TestRegistry_ResolveMissing(t *testing.T) {
	r := DefaultRegistry(Config{LocalDir: t.TempDir()})

	for _, name := range []string{"nope", "", "../copy", "a/b"} {
		_, err := r.Resolve(name)
		assert.ErrorIs(t, err, ErrMissingTreatment, name)
	}
}

func TestRegistry_LocalOverrideWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "copy", SchemaFile), `{"name": "copy", "description": "local", "params": {}}`)

	r := DefaultRegistry(Config{LocalDir: dir})

	loc, err := r.Resolve("copy")
	require.NoError(t, err)
	assert.False(t, loc.Builtin)
	assert.Equal(t, filepath.Join(dir, "copy"), loc.Dir)

	schema, err := r.LoadSchema(loc)
	require.NoError(t, err)
	assert.Equal(t, "local", schema.Description)
}

func TestRegistry_LocalDirWithoutSchemaFallsBack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "copy"), 0o755))

	r := DefaultRegistry(Config{LocalDir: dir})

	loc, err := r.Resolve("copy")
	require.NoError(t, err)
	assert.True(t, loc.Builtin)
}

func TestRegistry_LoadSchemaInvalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bad", SchemaFile), `{"name": "bad", "params": {"n": {"type": "number"}}}`)
	writeFile(t, filepath.Join(dir, "broken", SchemaFile), `{"name":`)

	r := NewRegistry(Config{LocalDir: dir})

	for _, name := range []string{"bad", "broken"} {
		loc, err := r.Resolve(name)
		require.NoError(t, err)
		_, err = r.LoadSchema(loc)
		assert.ErrorIs(t, err, ErrConfig, name)
	}

	_, err := r.LoadSchema(Location{Name: "gone", Dir: filepath.Join(dir, "gone")})
	assert.ErrorIs(t, err, ErrConfig)
}

func TestRegistry_SchemaNameDefaultsToTreatmentName(t *testing.T) {
	r := NewRegistry(Config{})
	r.Register("noop", []byte(`{"params": {}}`), func(context.Context, string, string, map[string]any) error { return nil })

	tr, err := r.Get("noop")
	require.NoError(t, err)
	assert.Equal(t, "noop", tr.Schema.Name)
	assert.NotNil(t, tr.Run)
}

func TestRegistry_Names(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "greet", SchemaFile), `{"name": "greet", "description": "says hello"}`)
	writeFile(t, filepath.Join(dir, "copy", SchemaFile), `{"name": "copy", "description": "local copy"}`)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "empty"), 0o755))

	r := DefaultRegistry(Config{LocalDir: dir})

	entries, err := r.Names()
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"copy", "greet", "upload"}, names)
	assert.False(t, entries[0].Builtin)
	assert.Equal(t, "local copy", entries[0].Description)
	assert.True(t, entries[2].Builtin)
}
