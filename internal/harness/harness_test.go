package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/countersim/internal/ir"
	"github.com/roach88/countersim/internal/testutil"
)

func mustParse(t *testing.T, src string) *Scenario {
	t.Helper()
	s, err := ParseScenario([]byte(src))
	require.NoError(t, err)
	return s
}

func TestRun_Minimal(t *testing.T) {
	result, err := Run(mustParse(t, minimalScenario))
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, testutil.DefaultSessionToken, result.SessionID)
	assert.Equal(t, "undeployed", result.Network)
	assert.Equal(t, uint64(1), result.Ledger.Round)

	require.Len(t, result.Trace, 1)
	event := result.Trace[0]
	assert.Equal(t, int64(1), event.Seq)
	assert.Equal(t, "increment", event.Operation)
	assert.Equal(t, ir.MustTransitionID(testutil.DefaultSessionToken, "increment", ir.IRObject{}, 1), event.ID)
	assert.Equal(t, ir.LedgerHash(1), event.LedgerAfter)
}

func TestRun_SetupConsumesSeqButIsNotTraced(t *testing.T) {
	result, err := Run(mustParse(t, `
name: setup_seq
description: "setup steps advance the clock"
setup:
  - invoke: setValue
    args: { v: 5 }
  - invoke: increment
    args: {}
flow:
  - invoke: decrement
    args: { n: 6 }
    expect:
      case: Success
      result: { round: 0 }
assertions:
  - type: final_ledger
    expect: { round: 0 }
`))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Trace, 1)
	assert.Equal(t, int64(3), result.Trace[0].Seq)
}

func TestRun_ExpectMismatchFails(t *testing.T) {
	result, err := Run(mustParse(t, `
name: wrong_expect
description: "expectations are checked against the real engine"
flow:
  - invoke: increment
    args: {}
    expect:
      case: RangeViolation
      result: { round: 7 }
assertions:
  - type: final_ledger
    expect: { round: 1 }
`))
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "expected case RangeViolation, got Success")
	assert.Contains(t, result.Errors[1], `result field "round": expected 7, got "1"`)
}

func TestRun_PrivateStepExpectsReturnedValue(t *testing.T) {
	result, err := Run(mustParse(t, `
name: private_expect
description: "private results are compared with what the caller received"
flow:
  - invoke: incrementPrivate
    args: { n: 10 }
    expect:
      case: Success
      result: { private_counter: 11 }
assertions:
  - type: final_private
    expect: { private_counter: 10 }
`))
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], `expected 11, got "10"`)

	require.Len(t, result.Trace, 1)
	assert.Empty(t, result.Trace[0].Args)
	assert.Empty(t, result.Trace[0].Result)
}

func TestRun_RejectedStepIsReportedNotTraced(t *testing.T) {
	result, err := Run(mustParse(t, `
name: rejected
description: "unknown operations are rejected before they reach the journal"
flow:
  - invoke: reset
    args: {}
  - invoke: increment
    args: {}
assertions:
  - type: final_ledger
    expect: { round: 1 }
`))
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "flow[0] reset: rejected")
	require.Len(t, result.Trace, 1)
	assert.Equal(t, int64(1), result.Trace[0].Seq, "rejected step must not consume a seq")
}

func TestRun_SetupFailureIsAnError(t *testing.T) {
	_, err := Run(mustParse(t, `
name: bad_setup
description: "setup must succeed"
setup:
  - invoke: decrement
    args: { n: 1 }
flow:
  - invoke: increment
    args: {}
assertions:
  - type: deterministic
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to execute setup")
}

func TestRun_IsolatedScenariosShareNothing(t *testing.T) {
	s := mustParse(t, minimalScenario)

	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)

	assert.Equal(t, first.Trace, second.Trace)
	assert.Equal(t, uint64(1), second.Ledger.Round)
}

func TestRunContext_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunContext(ctx, mustParse(t, minimalScenario))
	require.Error(t, err)
}
