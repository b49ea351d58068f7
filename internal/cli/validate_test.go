package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const harnessScenarios = "../harness/testdata/scenarios"

func writeScenario(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestValidate_HarnessScenarios(t *testing.T) {
	out, _, err := execute(t, "validate", harnessScenarios)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ ")
	assert.Contains(t, out, "scenario(s) valid")
	assert.NotContains(t, out, "✗")
}

func TestValidate_ReportsProblems(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "bad.yaml", `name: bad
description: "bad"
flow:
  - invoke: reset
    args: {}
  - invoke: decrement
    args: { n: "-3" }
  - invoke: setValue
    args: { v: "4" }
    expect:
      case: RangeViolation
assertions:
  - type: final_ledger
    expect: { round: 4 }
`)

	out, _, err := execute(t, "validate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ ")
	assert.Contains(t, out, "reset")
}

func TestValidate_JSON(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "good.yaml", `name: good
description: "good"
flow:
  - invoke: increment
    args: {}
assertions:
  - type: final_ledger
    expect: { round: 1 }
`)
	writeScenario(t, dir, "broken.yaml", "name: [unterminated\n")

	out, _, err := execute(t, "validate", dir, "--format", "json")
	require.Error(t, err)

	var result ValidationResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidScenario, resp.Error.Code)

	assert.False(t, result.Valid)
	require.Len(t, result.Scenarios, 2)
	for _, s := range result.Scenarios {
		if filepath.Base(s.Path) == "good.yaml" {
			assert.Empty(t, s.Problems)
		} else {
			assert.NotEmpty(t, s.Problems)
		}
	}
}

func TestValidate_MissingDirectory(t *testing.T) {
	_, _, err := execute(t, "validate", filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
