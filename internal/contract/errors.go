package contract

import (
	"errors"
	"fmt"
)

// ErrRange is matched by every *RangeError via errors.Is.
var ErrRange = errors.New("counter out of range")

// RangeError reports a transition that would leave the representable range.
// The state the transition was applied to is left untouched.
type RangeError struct {
	// Op is the operation name ("increment", "decrement", "incrementPrivate").
	Op string

	// Current is the counter value the operation was applied to, in decimal.
	Current string

	// Operand is the delta that was requested, in decimal.
	Operand string

	// Limit names the bound that was crossed: "zero" or "max".
	Limit string
}

func (e *RangeError) Error() string {
	switch e.Limit {
	case limitZero:
		return fmt.Sprintf("%s: %s - %s would underflow below zero", e.Op, e.Current, e.Operand)
	default:
		return fmt.Sprintf("%s: %s + %s would overflow the counter width", e.Op, e.Current, e.Operand)
	}
}

// Is makes errors.Is(err, ErrRange) true for any RangeError.
func (e *RangeError) Is(target error) bool {
	return target == ErrRange
}

// IsRangeError returns true if err is, or wraps, a *RangeError.
func IsRangeError(err error) bool {
	var re *RangeError
	return errors.As(err, &re)
}

const (
	limitZero = "zero"
	limitMax  = "max"
)
