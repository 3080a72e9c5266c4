package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/Myx/internal/config"
	"github.com/shaiso/Myx/internal/flow"
)

// testEnv — изолированное рабочее окружение myx во временной директории.
type testEnv struct {
	root       string
	configPath string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	for _, key := range []string{
		config.EnvEventLog, config.EnvDBURL, config.EnvRabbitMQURL,
		config.EnvLogLevel, config.EnvLogFormat, config.EnvPushgateway,
	} {
		t.Setenv(key, "")
	}

	root := t.TempDir()
	cfg := strings.Join([]string{
		"datasets_dir: " + filepath.Join(root, "datasets"),
		"flows_dir: " + filepath.Join(root, "flows"),
		"treatments_dir: " + filepath.Join(root, "treatments"),
		"event_log: " + filepath.Join(root, "myx.log"),
		"temp_dir: " + root,
		"log:",
		"  level: ERROR",
		"  format: text",
		"",
	}, "\n")
	path := filepath.Join(root, "myx.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))

	return &testEnv{root: root, configPath: path}
}

func (e *testEnv) path(parts ...string) string {
	return filepath.Join(append([]string{e.root}, parts...)...)
}

func (e *testEnv) execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root, cleanup := NewRootCmd("test")
	defer cleanup()

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config", e.configPath}, args...))

	err := root.ExecuteContext(t.Context())
	return stdout.String(), stderr.String(), err
}

func (e *testEnv) writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// writeCopyFlow создаёт flow без dataset с одним шагом copy.
func (e *testEnv) writeCopyFlow(t *testing.T, name string) (input, output string) {
	t.Helper()
	input = e.path("in")
	output = e.path("out")
	spec := map[string]any{
		"name":  name,
		"steps": []map[string]any{{"treatment": "copy", "input": input, "output": output}},
	}
	data, err := json.Marshal(spec)
	require.NoError(t, err)
	e.writeFile(t, e.path("flows", name+".json"), string(data))

	e.writeFile(t, filepath.Join(input, "data__2026-01-24.csv"), "a\n")
	e.writeFile(t, filepath.Join(input, "data__2026-01-25.csv"), "b\n")
	return input, output
}

func listNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestFlowCmd_WindowAndLast(t *testing.T) {
	env := newTestEnv(t)
	_, output := env.writeCopyFlow(t, "demo")

	stdout, _, err := env.execute(t, "--json", "flow", "demo", "--from", "2026-01-25", "--to", "2026-01-25")
	require.NoError(t, err)

	var res runResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	assert.Equal(t, "demo", res.Name)
	assert.Equal(t, "success", res.Status)
	assert.Equal(t, 1, res.Steps)
	require.NotNil(t, res.From)
	assert.Equal(t, "2026-01-25T00:00:00+00:00", *res.From)
	assert.Equal(t, []string{"data__2026-01-25.csv"}, listNames(t, output))

	_, stderr, err := env.execute(t, "flow", "demo", "--last")
	require.NoError(t, err)
	assert.Contains(t, stderr, "nothing to do (already up-to-date)")

	log, err := os.ReadFile(env.path("myx.log"))
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(log), "\n"), "start and success events")
}

func TestFlowCmd_FlagErrors(t *testing.T) {
	env := newTestEnv(t)
	env.writeCopyFlow(t, "demo")

	tests := []struct {
		name   string
		args   []string
		target error
		msg    string
	}{
		{
			name:   "last with window",
			args:   []string{"flow", "demo", "--last", "--from", "2026-01-01"},
			target: errLastWithWindow,
		},
		{
			name:   "step with range",
			args:   []string{"flow", "demo", "--step", "copy", "--from-step", "copy"},
			target: flow.ErrSelectionConflict,
		},
		{
			name: "from after to",
			args: []string{"flow", "demo", "--from", "2026-02-01", "--to", "2026-01-01"},
			msg:  "after its end",
		},
		{
			name: "bad mode",
			args: []string{"flow", "demo", "--output-mode", "overwrite"},
			msg:  "unknown output mode",
		},
		{
			name:   "unknown flow",
			args:   []string{"flow", "missing"},
			target: flow.ErrFlowNotFound,
		},
		{
			name:   "unknown step",
			args:   []string{"flow", "demo", "--step", "clean"},
			target: flow.ErrStepNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := env.execute(t, tt.args...)
			require.Error(t, err)
			if tt.target != nil {
				assert.True(t, errors.Is(err, tt.target), "got %v", err)
			}
			if tt.msg != "" {
				assert.Contains(t, err.Error(), tt.msg)
			}
		})
	}

	_, err := os.Stat(env.path("out"))
	assert.True(t, os.IsNotExist(err), "failed validation must not create outputs")
}

func TestRunCmd(t *testing.T) {
	env := newTestEnv(t)
	input := env.path("in")
	output := env.path("out")
	env.writeFile(t, filepath.Join(input, "a.csv"), "a\n")
	env.writeFile(t, filepath.Join(input, "b.txt"), "b\n")

	_, stderr, err := env.execute(t, "run", "copy",
		"--input", input, "--output", output, "--params", `{"pattern": "*.csv"}`)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Treatment copy completed")
	assert.Equal(t, []string{"a.csv"}, listNames(t, output))

	_, _, err = env.execute(t, "run", "copy",
		"--input", input, "--output", output, "--params", `{"patern": "*"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "patern")

	_, _, err = env.execute(t, "run", "copy",
		"--input", input, "--output", output, "--output-mode", "full-replace")
	assert.ErrorIs(t, err, errFullReplaceTreatment)

	_, _, err = env.execute(t, "run", "copy", "--input", input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output")
}

func TestInitListStatus(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, err := env.execute(t, "--json", "init", "Sales")
	require.NoError(t, err)
	var created map[string]string
	require.NoError(t, json.Unmarshal([]byte(stdout), &created))
	assert.Equal(t, "sales", created["flow"])
	assert.DirExists(t, env.path("datasets", "Sales", flow.RawStage))

	_, _, err = env.execute(t, "init", "Sales")
	assert.ErrorIs(t, err, flow.ErrFlowExists)

	stdout, _, err = env.execute(t, "list", "flows")
	require.NoError(t, err)
	assert.Contains(t, stdout, "sales")
	assert.Contains(t, stdout, "Sales")

	stdout, _, err = env.execute(t, "--json", "list", "steps", "--flow", "sales")
	require.NoError(t, err)
	var steps []struct {
		Index     int    `json:"index"`
		Treatment string `json:"treatment"`
		Input     string `json:"input"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &steps))
	require.NotEmpty(t, steps)
	assert.Equal(t, 1, steps[0].Index)
	assert.Equal(t, "parse", steps[0].Treatment)
	assert.Equal(t, env.path("datasets", "Sales", flow.RawStage), steps[0].Input)

	_, _, err = env.execute(t, "list", "steps")
	assert.ErrorIs(t, err, errFlowRequired)

	stdout, _, err = env.execute(t, "list", "treatments")
	require.NoError(t, err)
	assert.Contains(t, stdout, "copy")
	assert.Contains(t, stdout, "builtin")

	stdout, _, err = env.execute(t, "--json", "status")
	require.NoError(t, err)
	var statuses []flow.FlowStatus
	require.NoError(t, json.Unmarshal([]byte(stdout), &statuses))
	require.Len(t, statuses, 1)
	assert.False(t, statuses[0].UpToDate)
}

func TestScheduleList(t *testing.T) {
	env := newTestEnv(t)
	cfg, err := os.ReadFile(env.configPath)
	require.NoError(t, err)
	cfg = append(cfg, []byte(strings.Join([]string{
		"schedules:",
		"  - flow: demo",
		"    cron: \"0 6 * * *\"",
		"    last: true",
		"",
	}, "\n"))...)
	require.NoError(t, os.WriteFile(env.configPath, cfg, 0o644))

	stdout, _, err := env.execute(t, "schedule", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "demo")
	assert.Contains(t, stdout, "0 6 * * *")
	assert.Contains(t, stdout, "UTC")
}

func TestExecute_ExitCodes(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, ExitOK, Execute(t.Context(), "test", []string{"--config", env.configPath, "list", "flows"}))
	assert.Equal(t, ExitFailure, Execute(t.Context(), "test", []string{"--config", env.configPath, "flow", "missing"}))
}
