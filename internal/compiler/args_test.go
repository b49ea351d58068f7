package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/countersim/internal/ir"
)

func TestValidateArgs(t *testing.T) {
	c := MustLoadDefault()

	tests := []struct {
		name    string
		op      string
		args    ir.IRObject
		wantErr string
	}{
		{name: "increment no args", op: "increment", args: ir.IRObject{}},
		{name: "increment nil args", op: "increment", args: nil},
		{name: "decrement int", op: "decrement", args: ir.IRObject{"n": ir.IRInt(1)}},
		{name: "decrement decimal string", op: "decrement", args: ir.IRObject{"n": ir.IRString("1")}},
		{name: "setValue max uint64", op: "setValue", args: ir.IRObject{"v": ir.Uint(18446744073709551615)}},
		{name: "incrementPrivate", op: "incrementPrivate", args: ir.IRObject{"n": ir.IRInt(10)}},

		{name: "unknown operation", op: "reset", args: ir.IRObject{}, wantErr: "unknown operation"},
		{name: "missing arg", op: "decrement", args: ir.IRObject{}, wantErr: "missing required argument"},
		{name: "extra arg", op: "increment", args: ir.IRObject{"n": ir.IRInt(1)}, wantErr: "unknown argument"},
		{name: "negative", op: "decrement", args: ir.IRObject{"n": ir.IRInt(-1)}, wantErr: "not a valid uint64"},
		{name: "above uint64", op: "setValue", args: ir.IRObject{"v": ir.IRString("18446744073709551616")}, wantErr: "not a valid uint64"},
		{name: "not a number", op: "setValue", args: ir.IRObject{"v": ir.IRString("forty-two")}, wantErr: "not an integer"},
		{name: "bool", op: "setValue", args: ir.IRObject{"v": ir.IRBool(true)}, wantErr: "not a valid uint64"},
		{name: "array", op: "setValue", args: ir.IRObject{"v": ir.IRArray{}}, wantErr: "unsupported value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.ValidateArgs(tt.op, tt.args)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			var ae *ArgError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, tt.op, ae.Operation)
		})
	}
}

func TestValidateArgs_StringAndBoolTypes(t *testing.T) {
	c, err := Load([]byte(`
		contract: Tagged: {
			purpose: "x"
			operation: tag: {
				args: {label: "string", on: "bool"}
				outputs: [{case: "Success"}]
			}
		}
	`), "tagged.cue", "Tagged")
	require.NoError(t, err)

	assert.NoError(t, c.ValidateArgs("tag", ir.IRObject{"label": ir.IRString("a"), "on": ir.IRBool(true)}))
	assert.Error(t, c.ValidateArgs("tag", ir.IRObject{"label": ir.IRInt(1), "on": ir.IRBool(true)}))
	assert.Error(t, c.ValidateArgs("tag", ir.IRObject{"label": ir.IRString("a"), "on": ir.IRString("yes")}))
}
