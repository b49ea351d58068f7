package harness

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/holiman/uint256"

	"github.com/roach88/countersim/internal/engine"
	"github.com/roach88/countersim/internal/ir"
	"github.com/roach88/countersim/internal/store"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s -> %s\n",
				event.Seq, event.Operation, ir.MustMarshalCanonical(event.Args), event.OutputCase)
		}
	}
	return buf.String()
}

// AssertionContext provides what state and replay assertions need beyond
// the trace.
type AssertionContext struct {
	Ctx      context.Context
	Store    *store.Store
	Scenario *Scenario
}

// EvaluateAssertions evaluates all assertions and returns one message per
// failure.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertFinalLedger:
			err = assertFields(AssertFinalLedger, ledgerFields(result), assertion.Expect)
		case AssertFinalPrivate:
			err = assertFields(AssertFinalPrivate, privateFields(result), assertion.Expect)
		case AssertDeterministic:
			if actx == nil || actx.Scenario == nil {
				err = fmt.Errorf("assertion[%d]: deterministic requires a scenario context", i)
			} else {
				err = assertDeterministic(actx, result)
			}
		case AssertIsolated:
			if actx == nil || actx.Scenario == nil {
				err = fmt.Errorf("assertion[%d]: isolated requires a scenario context", i)
			} else {
				err = assertIsolated(actx, result)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}
	return errors
}

// assertTraceContains checks for a transition of the operation whose args
// contain the expected args.
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	want, err := convertArgs(assertion.Args)
	if err != nil {
		return fmt.Errorf("trace_contains: invalid args: %w", err)
	}
	for _, event := range trace {
		if event.Operation == assertion.Operation && matchArgs(event.Args, want) {
			return nil
		}
	}

	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("operation %s with args %s", assertion.Operation, ir.MustMarshalCanonical(want)),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that the operations first appear in the given
// order. Other operations may appear in between.
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	positions := make(map[string]int)
	for i, event := range trace {
		if _, seen := positions[event.Operation]; !seen {
			positions[event.Operation] = i + 1
		}
	}

	for _, op := range assertion.Operations {
		if positions[op] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all operations present: %v", assertion.Operations),
				Actual:   fmt.Sprintf("missing operation: %s", op),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(assertion.Operations); i++ {
		prev := assertion.Operations[i-1]
		curr := assertion.Operations[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("operations in order: %v", assertion.Operations),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}
	return nil
}

// assertTraceCount checks how often the operation appears, optionally
// counting only one output case.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Operation != assertion.Operation {
			continue
		}
		if assertion.Case != "" && event.OutputCase != assertion.Case {
			continue
		}
		count++
	}

	if count != assertion.Count {
		what := assertion.Operation
		if assertion.Case != "" {
			what += " (" + assertion.Case + ")"
		}
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, what),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

func ledgerFields(result *Result) ir.IRObject {
	return ir.IRObject{"round": ir.Uint(result.Ledger.Round)}
}

func privateFields(result *Result) ir.IRObject {
	counter := result.Private.PrivateCounter()
	return ir.IRObject{PrivateCounterField: ir.IRString(counter.Dec())}
}

// assertFields is a subset match of expected against actual state fields.
func assertFields(kind string, actual ir.IRObject, expected map[string]any) error {
	want, err := convertArgs(expected)
	if err != nil {
		return fmt.Errorf("%s: invalid expect: %w", kind, err)
	}

	for _, key := range want.SortedKeys() {
		got, ok := actual[key]
		if !ok {
			return &AssertionError{
				Type:     kind,
				Expected: fmt.Sprintf("field %q to exist", key),
				Actual:   fmt.Sprintf("fields: %v", actual.SortedKeys()),
			}
		}
		if !irValuesEqual(got, want[key]) {
			return &AssertionError{
				Type:     kind,
				Expected: fmt.Sprintf("%s = %s", key, ir.MustMarshalCanonical(want[key])),
				Actual:   fmt.Sprintf("%s = %s", key, ir.MustMarshalCanonical(got)),
			}
		}
	}
	return nil
}

// assertDeterministic runs the scenario a second time and replays the
// journal of the first run. Both must reproduce the trace exactly.
func assertDeterministic(actx *AssertionContext, result *Result) error {
	again, err := execute(actx.Ctx, actx.Scenario, nil)
	if err != nil {
		return fmt.Errorf("deterministic: second run failed: %w", err)
	}
	if !reflect.DeepEqual(result.Trace, again.Trace) || result.Ledger != again.Ledger {
		return &AssertionError{
			Type:     AssertDeterministic,
			Expected: "identical trace on a second run",
			Actual:   fmt.Sprintf("%d events ending at %s", len(again.Trace), again.Ledger),
			Trace:    result.Trace,
		}
	}

	if actx.Store == nil {
		return nil
	}
	replay, err := engine.Replay(actx.Ctx, actx.Store, result.SessionID, nil)
	if err != nil {
		return fmt.Errorf("deterministic: replay failed: %w", err)
	}
	if !replay.Deterministic() {
		m := replay.Mismatches[0]
		return &AssertionError{
			Type:     AssertDeterministic,
			Expected: fmt.Sprintf("journal replays cleanly (seq %d %s = %s)", m.Seq, m.Field, m.Journaled),
			Actual:   fmt.Sprintf("replayed %s", m.Replayed),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertIsolated runs the scenario on a second engine next to an untouched
// simulator. The bystander must stay at its initial state and the second
// run must end where the first did.
func assertIsolated(actx *AssertionContext, result *Result) error {
	bystander, err := newIsolatedSimulator(actx.Scenario)
	if err != nil {
		return fmt.Errorf("isolated: %w", err)
	}
	ledger, private := bystander.Snapshot()

	other, err := execute(actx.Ctx, actx.Scenario, nil)
	if err != nil {
		return fmt.Errorf("isolated: second run failed: %w", err)
	}

	afterLedger, afterPrivate := bystander.Snapshot()
	if !afterLedger.Equal(ledger) || !afterPrivate.Equal(private) {
		return &AssertionError{
			Type:     AssertIsolated,
			Expected: fmt.Sprintf("bystander unchanged at %s", ledger),
			Actual:   fmt.Sprintf("bystander at %s", afterLedger),
		}
	}
	if other.Ledger != result.Ledger || !other.Private.Equal(result.Private) {
		return &AssertionError{
			Type:     AssertIsolated,
			Expected: fmt.Sprintf("independent run ends at %s", result.Ledger),
			Actual:   fmt.Sprintf("independent run ends at %s", other.Ledger),
		}
	}
	return nil
}

// matchArgs reports whether actual contains every expected arg.
func matchArgs(actual, expected ir.IRObject) bool {
	for key, want := range expected {
		got, ok := actual[key]
		if !ok || !irValuesEqual(got, want) {
			return false
		}
	}
	return true
}

// irValuesEqual compares two IR values. Unsigned quantities match whether
// written as numbers or decimal strings, so 42 equals "42".
func irValuesEqual(actual, expected ir.IRValue) bool {
	if a, ok := decimal(actual); ok {
		if e, ok := decimal(expected); ok {
			return a.Eq(e)
		}
	}
	return reflect.DeepEqual(actual, expected)
}

func decimal(v ir.IRValue) (*uint256.Int, bool) {
	switch val := v.(type) {
	case ir.IRInt:
		if val < 0 {
			return nil, false
		}
		return uint256.NewInt(uint64(val)), true
	case ir.IRString:
		n, err := uint256.FromDecimal(string(val))
		if err != nil {
			return nil, false
		}
		return n, true
	default:
		return nil, false
	}
}
