package flow

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/Myx/internal/engine"
)

func TestComposer_Init(t *testing.T) {
	root := t.TempDir()
	c := New(Config{
		FlowsDir:    filepath.Join(root, "flows"),
		DatasetsDir: filepath.Join(root, "datasets"),
	})

	res, err := c.Init("MY-EXPERIMENT")
	require.NoError(t, err)

	assert.Equal(t, "my-experiment", res.Flow)
	assert.DirExists(t, filepath.Join(root, "datasets", "MY-EXPERIMENT", "00_raw"))
	assert.Equal(t, filepath.Join(root, "flows", "my-experiment.json"), res.FlowPath)

	data, err := os.ReadFile(res.FlowPath)
	require.NoError(t, err)
	spec, err := engine.ParseFlow(data)
	require.NoError(t, err)

	assert.Equal(t, "MY-EXPERIMENT", spec.Dataset)
	assert.Equal(t,
		[]string{"parse", "clean", "resample", "transform", "normalize", "aggregate", "to_postgres", "exportcsv"},
		spec.StepNames(),
	)
	assert.Equal(t, "00_raw", spec.Steps[0].Input)

	_, err = c.Init("MY-EXPERIMENT")
	assert.ErrorIs(t, err, ErrFlowExists)

	_, err = c.Init("a/b")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestComposer_ListAndSteps(t *testing.T) {
	root := t.TempDir()
	c := New(Config{FlowsDir: filepath.Join(root, "flows"), DatasetsDir: filepath.Join(root, "datasets")})

	names, err := c.ListFlows()
	require.NoError(t, err)
	assert.Empty(t, names)

	writeFile(t, filepath.Join(root, "flows", "b.json"), `{"name": "b", "dataset": "B", "steps": [{"treatment": "parse"}, {"treatment": "clean"}]}`)
	writeFile(t, filepath.Join(root, "flows", "a.json"), `{"name": "a", "dataset": "A", "steps": [{"treatment": "aggregate"}]}`)
	writeFile(t, filepath.Join(root, "flows", "notes.txt"), "ignored")

	names, err = c.ListFlows()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	steps, err := c.Steps("b")
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, "clean", steps[1].Treatment)
	assert.Equal(t, filepath.Join(root, "datasets", "B", "20_clean"), steps[1].Output)

	_, err = c.Steps("missing")
	assert.ErrorIs(t, err, ErrFlowNotFound)
}

func TestComposer_Status(t *testing.T) {
	root := t.TempDir()
	flows := filepath.Join(root, "flows")
	datasets := filepath.Join(root, "datasets")
	c := New(Config{FlowsDir: flows, DatasetsDir: datasets})

	writeFile(t, filepath.Join(flows, "done.json"), `{"name": "done", "dataset": "D", "steps": [{"treatment": "aggregate"}, {"treatment": "to_postgres"}]}`)
	writeFile(t, filepath.Join(flows, "partial.json"), `{"name": "partial", "dataset": "P", "steps": [{"treatment": "parse"}, {"treatment": "clean"}]}`)
	writeFile(t, filepath.Join(flows, "broken.json"), `{"name": "broken", "steps": []}`)

	writeFile(t, filepath.Join(datasets, "D", "40_aggregated", "x_2026-01-25.parquet"), "x")
	writeFile(t, filepath.Join(datasets, "D", "40_aggregated", "domain=a", "y_2026-01-25.parquet"), "x")
	writeFile(t, filepath.Join(datasets, "P", "10_parsed", "x.csv"), "x")

	got, err := c.Status()
	require.NoError(t, err)
	require.Len(t, got, 3)

	broken, done, partial := got[0], got[1], got[2]

	assert.NotEmpty(t, broken.Error)

	assert.True(t, done.UpToDate, "external step with no files does not count")
	assert.Equal(t, 2, done.Steps[0].Files)
	assert.NotNil(t, done.Steps[0].LastModified)
	assert.True(t, done.Steps[1].External)
	assert.Zero(t, done.Steps[1].Files)

	assert.False(t, partial.UpToDate)
	assert.Equal(t, 1, partial.Steps[0].Files)
	assert.Nil(t, partial.Steps[1].LastModified)
}
