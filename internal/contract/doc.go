// Package contract implements the counter contract state machine.
//
// The contract has two pieces of state:
//   - LedgerState: the public round counter, visible to every party
//   - PrivateState: the caller-local private counter, never part of the ledger
//
// A Simulator owns exactly one of each and applies the contract operations
// (increment, decrement, setValue, incrementPrivate) as pure transitions.
// Proof generation and ledger submission are not modelled; the Simulator is
// what a proof-carrying transaction would attest to.
//
// # Range Policy
//
// Arithmetic is checked. A transition that would leave the representable
// range returns a *RangeError (errors.Is(err, ErrRange)) and the Simulator
// keeps its previous state:
//   - Increment at math.MaxUint64
//   - Decrement(n) with n > round
//   - IncrementPrivate(n) past 2^256-1
//
// SetValue takes a uint64 and cannot be out of range.
//
// # Concurrency
//
// A Simulator is not safe for concurrent use. Operations on one instance
// are applied in call order; callers that share an instance must serialize
// access themselves. Distinct instances share nothing.
package contract
