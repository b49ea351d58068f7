// Package harness runs conformance scenarios against the counter engine.
//
// A scenario is a YAML file describing a session: the network, setup steps,
// a flow of operations with expected output cases, and assertions over the
// resulting public trace and final state.
//
// # Scenario Format
//
//	name: increment_twice
//	description: "Increment is not idempotent"
//	network: undeployed
//	session: test-session-increment-twice
//	setup:
//	  - invoke: setValue
//	    args: { v: 0 }
//	flow:
//	  - invoke: increment
//	    args: {}
//	    expect:
//	      case: Success
//	      result: { round: 1 }
//	assertions:
//	  - type: trace_count
//	    operation: increment
//	    count: 1
//	  - type: final_ledger
//	    expect: { round: 1 }
//
// # Assertion Types
//
//   - trace_contains: an operation appears in the trace with matching args
//   - trace_order: operations appear in the given order
//   - trace_count: an operation (optionally with a given case) appears N times
//   - final_ledger: the public ledger holds the expected fields
//   - final_private: the caller's private state holds the expected fields
//   - deterministic: a second run and a journal replay reproduce the trace
//   - isolated: running the flow leaves a separate simulator untouched
//
// # Deterministic Testing
//
// Every run uses a fresh in-memory store, a testutil.DeterministicClock and
// a fixed session token, so the same scenario always yields byte-identical
// traces. RunWithGolden compares that trace with testdata/golden.
//
// Private values never appear in the trace. A private step may still check
// its result through expect.result.private_counter, which is compared with
// the value returned to the caller.
package harness
