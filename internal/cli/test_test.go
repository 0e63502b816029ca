package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioYAML = `name: max_alias
description: "An aggregate with an alias"
sql: SELECT MAX(IntCol) AS m FROM foo
assertions:
  - type: columns
    columns: [m]
  - type: contains
    text: "(MAX("
`

func writeScenario(t *testing.T, dir, file, content string) string {
	t.Helper()
	scenarios := filepath.Join(dir, "scenarios")
	require.NoError(t, os.MkdirAll(scenarios, 0755))
	path := filepath.Join(scenarios, file)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return scenarios
}

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := execute(t, "", "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentDir(t *testing.T) {
	_, err := execute(t, "", "test", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommandEmptyDir(t *testing.T) {
	out, err := execute(t, "", "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTestCommandHarnessScenarios(t *testing.T) {
	out, err := execute(t, "", "test", filepath.Join("..", "harness", "testdata", "scenarios"))
	require.NoError(t, err, out)
	assert.Contains(t, out, "select_required")
	assert.Contains(t, out, "All scenarios passed")
}

func TestTestCommandUpdateThenCompare(t *testing.T) {
	dir := t.TempDir()
	scenarios := writeScenario(t, dir, "max_alias.yaml", scenarioYAML)
	golden := filepath.Join(dir, "golden", "max_alias.golden")

	out, err := execute(t, "", "test", scenarios, "--update")
	require.NoError(t, err, out)
	assert.Contains(t, out, "(golden updated)")

	data, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Contains(t, string(data), "(MAX(?v")

	out, err = execute(t, "", "test", scenarios)
	require.NoError(t, err, out)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")

	require.NoError(t, os.WriteFile(golden, []byte("SELECT *\n"), 0644))
	out, err = execute(t, "", "test", scenarios)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "golden file mismatch")
}

func TestTestCommandAssertionFailure(t *testing.T) {
	bad := `name: wrong_columns
description: "Expects a column the query does not project"
sql: SELECT IntCol FROM foo
assertions:
  - type: columns
    columns: [StringCol]
`
	scenarios := writeScenario(t, t.TempDir(), "wrong_columns.yaml", bad)

	out, err := execute(t, "", "--format", "json", "test", scenarios)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 1, resp.Data.Failed)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.False(t, resp.Data.Scenarios[0].Pass)
	assert.NotEmpty(t, resp.Data.Scenarios[0].Errors)
}

func TestTestCommandFilter(t *testing.T) {
	dir := t.TempDir()
	scenarios := writeScenario(t, dir, "max_alias.yaml", scenarioYAML)
	writeScenario(t, dir, "broken.yaml", "name: [not a string")

	out, err := execute(t, "", "test", scenarios, "--filter", "max_*")
	require.NoError(t, err, out)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")

	out, err = execute(t, "", "test", scenarios)
	require.Error(t, err)
	assert.Contains(t, out, "failed to load scenario")
}
