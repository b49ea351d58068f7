package harness

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSuite_Testdata(t *testing.T) {
	result, err := RunSuite(context.Background(), "testdata/scenarios", "")
	require.NoError(t, err)

	assert.Equal(t, result.Total, result.Passed, "failures: %+v", result.Failures)
	assert.Zero(t, result.Failed)
}

func TestRunSuite_ReportsFailures(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("good.yaml", minimalScenario)
	write("broken.yaml", "name: [unterminated\n")
	write("failing.yaml", `
name: failing
description: "wrong final round"
flow:
  - invoke: increment
    args: {}
assertions:
  - type: final_ledger
    expect: { round: 5 }
`)

	result, err := RunSuite(context.Background(), dir, "")
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Failures, 2)
	assert.Equal(t, "broken.yaml", result.Failures[0].Name)
	assert.Contains(t, result.Failures[0].Errors[0], "failed to load scenario")
	assert.Equal(t, "failing", result.Failures[1].Name)

	filtered, err := RunSuite(context.Background(), dir, "good")
	require.NoError(t, err)
	assert.Equal(t, 1, filtered.Total)
	assert.Equal(t, 1, filtered.Passed)
}
