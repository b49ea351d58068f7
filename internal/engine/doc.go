// Package engine drives a contract.Simulator from named operations and
// journals every applied transition.
//
// Each Apply call:
//  1. looks the operation up in the compiled contract and validates its args
//  2. stamps it with the next seq from a logical clock
//  3. applies it to the simulator
//  4. writes a content-addressed ir.Transition to the store, if one is set
//
// Private operations are journaled with their name and seq only. Their
// arguments and the private counter never reach the store or the logs.
//
// Replay rebuilds a fresh simulator from a journaled session and checks that
// every public transition produces the same ledger hash and output case.
//
// An Engine is single-threaded, like the Simulator it owns.
package engine
