package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContractSpec_Operation(t *testing.T) {
	spec := ContractSpec{Operations: []OperationSig{
		{Name: "increment", Visibility: VisibilityPublic},
		{Name: "incrementPrivate", Visibility: VisibilityPrivate},
	}}

	op, ok := spec.Operation("incrementPrivate")
	require.True(t, ok)
	assert.True(t, op.IsPrivate())

	op, ok = spec.Operation("increment")
	require.True(t, ok)
	assert.False(t, op.IsPrivate())

	_, ok = spec.Operation("reset")
	assert.False(t, ok)
}

func TestTransition_JSONFieldNaming(t *testing.T) {
	tr := Transition{
		ID:           "id",
		SessionID:    "s",
		Operation:    "setValue",
		Visibility:   VisibilityPublic,
		Args:         IRObject{"v": Uint(42)},
		OutputCase:   CaseSuccess,
		Result:       IRObject{"round": Uint(42)},
		LedgerBefore: LedgerHash(0),
		LedgerAfter:  LedgerHash(42),
		Seq:          1,
	}

	data, err := json.Marshal(tr)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	for _, key := range []string{"id", "session_id", "operation", "visibility", "args", "output_case", "result", "ledger_before", "ledger_after", "seq"} {
		assert.Contains(t, fields, key)
	}

	var back Transition
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, tr, back)
}

func TestContractSpec_ToIR(t *testing.T) {
	spec := ContractSpec{
		Name:    "Counter",
		Ledger:  []StateField{{Name: "round", Type: "uint64"}},
		Private: []StateField{{Name: "private_counter", Type: "uint256"}},
		Operations: []OperationSig{{
			Name:       "decrement",
			Visibility: VisibilityPublic,
			Args:       []NamedArg{{Name: "n", Type: "uint64"}},
			Outputs:    []OutputCase{{Case: CaseSuccess, Fields: map[string]string{"round": "uint64"}}},
		}},
	}

	got, err := MarshalCanonical(spec.ToIR())
	require.NoError(t, err)
	assert.Equal(t,
		`{"ledger":[{"name":"round","type":"uint64"}],"name":"Counter","operations":[{"args":[{"name":"n","type":"uint64"}],"name":"decrement","outputs":[{"case":"Success","fields":{"round":"uint64"}}],"visibility":"public"}],"private":[{"name":"private_counter","type":"uint256"}],"purpose":""}`,
		string(got))
}
