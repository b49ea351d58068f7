package harness

import (
	"github.com/roach88/countersim/internal/contract"
	"github.com/roach88/countersim/internal/ir"
)

// TraceEvent is one public transition as seen by the harness. Private
// operations carry empty args and result.
type TraceEvent struct {
	Seq         int64       `json:"seq"`
	ID          string      `json:"id"`
	Operation   string      `json:"operation"`
	Visibility  string      `json:"visibility"`
	Args        ir.IRObject `json:"args"`
	OutputCase  string      `json:"output_case"`
	Result      ir.IRObject `json:"result"`
	LedgerAfter string      `json:"ledger_after"`
}

func traceEventFrom(tr ir.Transition) TraceEvent {
	return TraceEvent{
		Seq:         tr.Seq,
		ID:          tr.ID,
		Operation:   tr.Operation,
		Visibility:  tr.Visibility,
		Args:        tr.Args,
		OutputCase:  tr.OutputCase,
		Result:      tr.Result,
		LedgerAfter: tr.LedgerAfter,
	}
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	SessionID string `json:"session_id"`
	Network   string `json:"network"`

	// Trace holds the flow's transitions in seq order. Setup steps are
	// executed but not traced.
	Trace []TraceEvent `json:"trace"`

	// Errors explains every failed expectation or assertion.
	Errors []string `json:"errors,omitempty"`

	// Ledger is the public state after the flow.
	Ledger contract.LedgerState `json:"final_ledger"`

	// Private is the caller's private state after the flow. It is kept for
	// final_private assertions and never serialized.
	Private contract.PrivateState `json:"-"`
}

// NewResult creates a passing result with an empty trace.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
