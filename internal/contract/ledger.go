package contract

import "strconv"

// LedgerState is the public portion of the contract state.
//
// It is a value type: transitions return a new LedgerState and never modify
// one a caller already holds. Two ledger states are equal iff their rounds are.
type LedgerState struct {
	Round uint64 `json:"round"`
}

// InitialLedger returns the ledger every new Simulator starts from.
func InitialLedger() LedgerState {
	return LedgerState{Round: 0}
}

// Equal reports whether both ledgers hold the same round.
func (l LedgerState) Equal(other LedgerState) bool {
	return l.Round == other.Round
}

func (l LedgerState) String() string {
	return "round=" + strconv.FormatUint(l.Round, 10)
}
