package contract

import "github.com/holiman/uint256"

// PrivateState is the caller-local portion of the contract state.
//
// The counter is a 256-bit unsigned integer held by value, so a PrivateState
// is comparable with == and copying it never aliases another instance.
// PrivateState has no JSON form and must not be written next to a
// LedgerState; report it as its own labelled value.
type PrivateState struct {
	counter uint256.Int
}

// InitialPrivateState returns the private state every new Simulator starts from.
func InitialPrivateState() PrivateState {
	return PrivateState{}
}

// NewPrivateState builds a PrivateState holding n.
func NewPrivateState(n uint64) PrivateState {
	var p PrivateState
	p.counter.SetUint64(n)
	return p
}

// PrivateCounter returns a copy of the private counter.
func (p PrivateState) PrivateCounter() uint256.Int {
	return p.counter
}

// Equal reports whether both states hold the same private counter.
func (p PrivateState) Equal(other PrivateState) bool {
	return p.counter.Eq(&other.counter)
}

// String renders the counter in decimal. It deliberately carries no ledger data.
func (p PrivateState) String() string {
	return "privateCounter=" + p.counter.Dec()
}
