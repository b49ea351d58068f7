package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/countersim/internal/ir"
)

func TestLoadDefault(t *testing.T) {
	c, err := LoadDefault()
	require.NoError(t, err)

	spec := c.Spec
	assert.Equal(t, "Counter", spec.Name)
	assert.NotEmpty(t, spec.Purpose)
	assert.Equal(t, []ir.StateField{{Name: "round", Type: "uint64"}}, spec.Ledger)
	assert.Equal(t, []ir.StateField{{Name: "private_counter", Type: "uint256"}}, spec.Private)

	names := make([]string, len(spec.Operations))
	for i, op := range spec.Operations {
		names[i] = op.Name
	}
	assert.Equal(t, []string{"increment", "decrement", "setValue", "incrementPrivate"}, names)

	dec, ok := spec.Operation("decrement")
	require.True(t, ok)
	assert.Equal(t, ir.VisibilityPublic, dec.Visibility)
	assert.Equal(t, []ir.NamedArg{{Name: "n", Type: "uint64"}}, dec.Args)

	inc, ok := spec.Operation("increment")
	require.True(t, ok)
	assert.Empty(t, inc.Args)
	assert.NotNil(t, inc.Args)

	priv, ok := spec.Operation("incrementPrivate")
	require.True(t, ok)
	assert.True(t, priv.IsPrivate())
	for _, out := range priv.Outputs {
		assert.Empty(t, out.Fields, "private outputs must not expose fields")
	}

	assert.Empty(t, Validate(spec))
}

func TestLoadDefault_StableSpecHash(t *testing.T) {
	a := MustLoadDefault()
	b := MustLoadDefault()

	ha, err := ir.SpecHash(a.Spec)
	require.NoError(t, err)
	hb, err := ir.SpecHash(b.Spec)
	require.NoError(t, err)
	assert.Equal(t, ha, hb)
}

func TestCompileContract_MissingPurpose(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		contract: Bad: {
			operation: noop: {
				args: {}
				outputs: [{case: "Success", fields: {}}]
			}
		}
	`)
	require.NoError(t, v.Err())

	_, err := CompileContract(v.LookupPath(cue.ParsePath("contract.Bad")))
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "purpose", ce.Field)
}

func TestCompileContract_MissingOutputs(t *testing.T) {
	_, err := Load([]byte(`
		contract: Bad: {
			purpose: "x"
			operation: noop: args: {}
		}
	`), "bad.cue", "Bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outputs are required")
}

func TestCompileContract_NoOperations(t *testing.T) {
	_, err := Load([]byte(`contract: Empty: purpose: "nothing"`), "empty.cue", "Empty")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one operation")
}

func TestCompileContract_UnknownType(t *testing.T) {
	_, err := Load([]byte(`
		contract: Bad: {
			purpose: "x"
			ledger: round: "uint128"
			operation: noop: outputs: [{case: "Success"}]
		}
	`), "bad.cue", "Bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown type "uint128"`)
	assert.Contains(t, err.Error(), "ledger.round")
}

func TestCompileContract_BadVisibility(t *testing.T) {
	_, err := Load([]byte(`
		contract: Bad: {
			purpose: "x"
			operation: noop: {
				visibility: "secret"
				outputs: [{case: "Success"}]
			}
		}
	`), "bad.cue", "Bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "visibility")
}

func TestCompileContract_TypeMustBeString(t *testing.T) {
	_, err := Load([]byte(`
		contract: Bad: {
			purpose: "x"
			operation: noop: {
				args: n: int
				outputs: [{case: "Success"}]
			}
		}
	`), "bad.cue", "Bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "operation.noop.args.n")
}

func TestLoad_ContractNotFound(t *testing.T) {
	_, err := Load(Source(), "counter.cue", "Missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contract not found")
}

func TestLoad_SyntaxError(t *testing.T) {
	_, err := Load([]byte(`contract: {`), "broken.cue", "Counter")
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.True(t, ce.Pos.IsValid())
	assert.Contains(t, err.Error(), "broken.cue")
}

func TestCompileError_Format(t *testing.T) {
	err := &CompileError{Field: "purpose", Message: "purpose is required"}
	assert.Equal(t, "purpose: purpose is required", err.Error())
}
