package engine

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/roach88/countersim/internal/contract"
	"github.com/roach88/countersim/internal/ir"
)

var errUnsupported = errors.New("operation is not supported by the simulator")

// supported lists the operations execute knows how to apply.
var supported = map[string]bool{
	contract.OpIncrement:        true,
	contract.OpDecrement:        true,
	contract.OpSetValue:         true,
	contract.OpIncrementPrivate: true,
}

type uintArgs map[string]uint64

// decodeArgs parses an operation's args into unsigned integers and returns
// them alongside their normalized IR form, so 1 and "1" hash the same.
func decodeArgs(sig ir.OperationSig, args ir.IRObject) (uintArgs, ir.IRObject, error) {
	decoded := make(uintArgs, len(sig.Args))
	normalized := make(ir.IRObject, len(sig.Args))
	for _, a := range sig.Args {
		if a.Type != "uint64" {
			return nil, nil, fmt.Errorf("arg %q: unsupported type %q", a.Name, a.Type)
		}
		n, err := ir.ParseUint(args[a.Name])
		if err != nil {
			return nil, nil, fmt.Errorf("arg %q: %w", a.Name, err)
		}
		decoded[a.Name] = n
		normalized[a.Name] = ir.Uint(n)
	}
	return decoded, normalized, nil
}

// execute applies one operation to sim. The returned private counter is only
// meaningful for private operations.
func execute(sim *contract.Simulator, name string, args uintArgs) (contract.LedgerState, uint256.Int, error) {
	switch name {
	case contract.OpIncrement:
		l, err := sim.Increment()
		return l, uint256.Int{}, err
	case contract.OpDecrement:
		l, err := sim.Decrement(args["n"])
		return l, uint256.Int{}, err
	case contract.OpSetValue:
		return sim.SetValue(args["v"]), uint256.Int{}, nil
	case contract.OpIncrementPrivate:
		p, err := sim.IncrementPrivate(args["n"])
		return sim.GetLedger(), p, err
	default:
		return sim.GetLedger(), uint256.Int{}, errUnsupported
	}
}

// outputCase maps an execute error to the journaled output case.
func outputCase(err error) string {
	if contract.IsRangeError(err) {
		return ir.CaseRangeViolation
	}
	return ir.CaseSuccess
}

// buildTransition assembles the public journal record for one operation.
// Private operations keep neither args nor result.
func buildTransition(sessionID string, sig ir.OperationSig, args ir.IRObject, seq int64, before, after contract.LedgerState, execErr error) (ir.Transition, error) {
	tr := ir.Transition{
		SessionID:    sessionID,
		Operation:    sig.Name,
		Visibility:   sig.Visibility,
		OutputCase:   outputCase(execErr),
		LedgerBefore: ir.LedgerHash(before.Round),
		LedgerAfter:  ir.LedgerHash(after.Round),
		Seq:          seq,
	}

	if sig.IsPrivate() {
		tr.Args = ir.IRObject{}
		tr.Result = ir.IRObject{}
	} else {
		tr.Args = args
		tr.Result = ir.IRObject{"round": ir.Uint(after.Round)}
		var re *contract.RangeError
		if errors.As(execErr, &re) {
			tr.Result["limit"] = ir.IRString(re.Limit)
		}
	}

	id, err := ir.TransitionID(sessionID, sig.Name, tr.Args, seq)
	if err != nil {
		return ir.Transition{}, err
	}
	tr.ID = id
	return tr, nil
}
