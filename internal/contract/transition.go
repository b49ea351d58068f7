package contract

import (
	"math"
	"strconv"

	"github.com/holiman/uint256"
)

// Operation names as they appear in journals, scenarios and the contract spec.
const (
	OpIncrement        = "increment"
	OpDecrement        = "decrement"
	OpSetValue         = "setValue"
	OpIncrementPrivate = "incrementPrivate"
)

// Increment moves the public round forward by one.
func Increment(l LedgerState) (LedgerState, error) {
	if l.Round == math.MaxUint64 {
		return l, &RangeError{
			Op:      OpIncrement,
			Current: strconv.FormatUint(l.Round, 10),
			Operand: "1",
			Limit:   limitMax,
		}
	}
	return LedgerState{Round: l.Round + 1}, nil
}

// Decrement moves the public round back by n.
func Decrement(l LedgerState, n uint64) (LedgerState, error) {
	if n > l.Round {
		return l, &RangeError{
			Op:      OpDecrement,
			Current: strconv.FormatUint(l.Round, 10),
			Operand: strconv.FormatUint(n, 10),
			Limit:   limitZero,
		}
	}
	return LedgerState{Round: l.Round - n}, nil
}

// SetValue overwrites the public round with v regardless of its previous value.
func SetValue(_ LedgerState, v uint64) LedgerState {
	return LedgerState{Round: v}
}

// IncrementPrivate adds n to the private counter.
func IncrementPrivate(p PrivateState, n uint64) (PrivateState, error) {
	delta := uint256.NewInt(n)
	var next PrivateState
	if _, overflow := next.counter.AddOverflow(&p.counter, delta); overflow {
		return p, &RangeError{
			Op:      OpIncrementPrivate,
			Current: p.counter.Dec(),
			Operand: delta.Dec(),
			Limit:   limitMax,
		}
	}
	return next, nil
}
