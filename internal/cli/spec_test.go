package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/countersim/internal/compiler"
	"github.com/roach88/countersim/internal/ir"
)

func TestSpec_Text(t *testing.T) {
	out, _, err := execute(t, "spec")
	require.NoError(t, err)

	assert.Contains(t, out, "Contract Counter")
	assert.Contains(t, out, "round: uint64")
	assert.Contains(t, out, "private_counter: uint256")
	assert.Contains(t, out, "decrement(n uint64) [public] -> Success | RangeViolation")
	assert.Contains(t, out, "incrementPrivate(n uint64) [private]")
}

func TestSpec_JSON(t *testing.T) {
	out, _, err := execute(t, "spec", "--format", "json")
	require.NoError(t, err)

	var result SpecResult
	decodeResponse(t, out, &result)

	want, err := ir.SpecHash(compiler.MustLoadDefault().Spec)
	require.NoError(t, err)
	assert.Equal(t, want, result.SpecHash)
	assert.Equal(t, "Counter", result.Spec.Name)
	assert.Len(t, result.Spec.Operations, 4)
}

func TestSpec_ContractFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counter.cue")
	require.NoError(t, os.WriteFile(path, compiler.Source(), 0o644))

	out, _, err := execute(t, "spec", "--contract", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Contract Counter")

	_, _, err = execute(t, "spec", "--contract", path, "--name", "Missing")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, _, err = execute(t, "spec", "--contract", filepath.Join(t.TempDir(), "nope.cue"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
