package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoIncrements = `name: two_increments
description: "two increments"
session: test-session-two-increments
flow:
  - invoke: increment
    args: {}
    expect:
      case: Success
      result: { round: 1 }
  - invoke: increment
    args: {}
assertions:
  - type: final_ledger
    expect: { round: 2 }
`

func TestTest_UpdateThenMatch(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "two_increments.yaml", twoIncrements)

	out, _, err := execute(t, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ two_increments (golden updated)")

	golden := filepath.Join(dir, "golden", "two_increments.golden")
	data, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"session":"test-session-two-increments"`)

	out, _, err = execute(t, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ two_increments\n")
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
}

func TestTest_GoldenMismatchFails(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "two_increments.yaml", twoIncrements)
	_, _, err := execute(t, "test", dir, "--update")
	require.NoError(t, err)

	golden := filepath.Join(dir, "golden", "two_increments.golden")
	require.NoError(t, os.WriteFile(golden, []byte(`{"tampered":true}`), 0o644))

	out, _, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTest_AssertionFailure(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "wrong.yaml", `name: wrong
description: "wrong"
flow:
  - invoke: increment
    args: {}
assertions:
  - type: final_ledger
    expect: { round: 5 }
`)

	out, _, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong")
	assert.NoFileExists(t, filepath.Join(dir, "golden", "wrong.golden"))
}

func TestTest_Filter(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "two_increments.yaml", twoIncrements)
	writeScenario(t, dir, "other.yaml", `name: other
description: "other"
flow:
  - invoke: increment
    args: {}
assertions:
  - type: final_ledger
    expect: { round: 9 }
`)

	out, _, err := execute(t, "test", dir, "--filter", "two_*")
	require.NoError(t, err)
	assert.Contains(t, out, "1 total")
	assert.NotContains(t, out, "other")
}

func TestTest_HarnessScenariosJSON(t *testing.T) {
	out, _, err := execute(t, "test", harnessScenarios, "--format", "json")
	require.NoError(t, err)

	var result TestResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Positive(t, result.Total)
	assert.Equal(t, result.Total, result.Passed)
	for _, s := range result.Scenarios {
		assert.True(t, s.Pass, s.Name)
	}
}

func TestTest_MissingDirectory(t *testing.T) {
	_, _, err := execute(t, "test", filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
