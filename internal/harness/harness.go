package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/countersim/internal/compiler"
	"github.com/roach88/countersim/internal/contract"
	"github.com/roach88/countersim/internal/engine"
	"github.com/roach88/countersim/internal/ir"
	"github.com/roach88/countersim/internal/store"
	"github.com/roach88/countersim/internal/testutil"
)

// PrivateCounterField is the expect.result key a private step uses to check
// the value returned to the caller.
const PrivateCounterField = "private_counter"

// Harness runs one scenario against one engine.
type Harness struct {
	engine *engine.Engine
	clock  *testutil.DeterministicClock
	logger *slog.Logger
}

// newHarness builds an engine for the scenario. A nil store runs without a
// journal.
func newHarness(scenario *Scenario, st *store.Store) (*Harness, error) {
	cfg, err := scenario.Config()
	if err != nil {
		return nil, err
	}

	h := &Harness{
		clock:  testutil.NewDeterministicClock(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	opts := []engine.EngineOption{
		engine.WithClock(h.clock),
		engine.WithLogger(h.logger),
	}
	if st != nil {
		opts = append(opts, engine.WithStore(st))
	}

	eng, err := engine.New(cfg, testutil.NewFixedSessionGenerator(scenario.Session), opts...)
	if err != nil {
		return nil, err
	}
	h.engine = eng
	return h, nil
}

// Run executes a scenario and evaluates its assertions.
//
// Each scenario runs in a fresh in-memory database. An error is returned
// only when the scenario could not be executed at all; failed expectations
// and assertions are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.OpenMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	result, err := execute(ctx, scenario, st)
	if err != nil {
		return nil, err
	}

	actx := &AssertionContext{
		Ctx:      ctx,
		Store:    st,
		Scenario: scenario,
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}

// execute runs setup and flow without evaluating assertions.
func execute(ctx context.Context, scenario *Scenario, st *store.Store) (*Result, error) {
	h, err := newHarness(scenario, st)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	result.SessionID = h.engine.SessionID()
	result.Network = h.engine.Session().Network

	if err := h.executeSetup(ctx, scenario.Setup); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}
	if err := h.executeFlow(ctx, scenario.Flow, result); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}

	result.Ledger = h.engine.Ledger()
	result.Private = h.engine.PrivateState()
	return result, nil
}

// executeSetup applies setup steps. Any failure, including a range
// violation, aborts the scenario.
func (h *Harness) executeSetup(ctx context.Context, setup []OperationStep) error {
	for i, step := range setup {
		args, err := convertArgs(step.Args)
		if err != nil {
			return fmt.Errorf("setup step %d: failed to convert args: %w", i, err)
		}
		if _, err := h.engine.Apply(ctx, engine.Operation{Name: step.Invoke, Args: args}); err != nil {
			return fmt.Errorf("setup step %d (%s): %w", i, step.Invoke, err)
		}
		h.logger.Debug("setup step completed", "step", i, "operation", step.Invoke)
	}
	return nil
}

// executeFlow applies flow steps and checks their expect clauses.
//
// A range violation is an ordinary outcome and is traced. A rejected step
// (unknown operation, bad args) is recorded as an error and not traced. A
// journal failure aborts the run.
func (h *Harness) executeFlow(ctx context.Context, flow []FlowStep, result *Result) error {
	for i, step := range flow {
		args, err := convertArgs(step.Args)
		if err != nil {
			return fmt.Errorf("flow step %d: failed to convert args: %w", i, err)
		}

		out, err := h.engine.Apply(ctx, engine.Operation{Name: step.Invoke, Args: args})
		switch {
		case err == nil, engine.IsRangeViolation(err):
		case engine.IsUnknownOperation(err), engine.IsInvalidArgument(err):
			result.AddError(fmt.Sprintf("flow[%d] %s: rejected: %v", i, step.Invoke, err))
			continue
		default:
			return fmt.Errorf("flow step %d (%s): %w", i, step.Invoke, err)
		}

		result.Trace = append(result.Trace, traceEventFrom(out.Transition))

		if step.Expect != nil {
			for _, msg := range checkExpect(out, step.Expect) {
				result.AddError(fmt.Sprintf("flow[%d] %s: %s", i, step.Invoke, msg))
			}
		}

		h.logger.Debug("flow step completed",
			"step", i,
			"operation", step.Invoke,
			"transition_id", out.Transition.ID,
			"output_case", out.Transition.OutputCase,
		)
	}
	return nil
}

// checkExpect compares an outcome with an expect clause. For private
// operations the result is the value returned to the caller, not the
// redacted journal record.
func checkExpect(out engine.Outcome, expect *ExpectClause) []string {
	var errs []string
	if out.Transition.OutputCase != expect.Case {
		errs = append(errs, fmt.Sprintf("expected case %s, got %s", expect.Case, out.Transition.OutputCase))
	}
	if len(expect.Result) == 0 {
		return errs
	}

	want, err := convertArgs(expect.Result)
	if err != nil {
		return append(errs, fmt.Sprintf("invalid expected result: %v", err))
	}

	actual := out.Transition.Result
	if out.Transition.Visibility == ir.VisibilityPrivate {
		counter := out.PrivateCounter
		actual = ir.IRObject{PrivateCounterField: ir.IRString(counter.Dec())}
	}

	for _, key := range want.SortedKeys() {
		got, ok := actual[key]
		if !ok {
			errs = append(errs, fmt.Sprintf("result field %q missing", key))
			continue
		}
		if !irValuesEqual(got, want[key]) {
			errs = append(errs, fmt.Sprintf("result field %q: expected %s, got %s",
				key, ir.MustMarshalCanonical(want[key]), ir.MustMarshalCanonical(got)))
		}
	}
	return errs
}

// CheckScenario validates a parsed scenario against a compiled contract:
// every operation must exist, every arg must satisfy its declared type and
// every expected case must be declared. A nil contract means the embedded one.
func CheckScenario(scenario *Scenario, c *compiler.Contract) ([]string, error) {
	if c == nil {
		var err error
		if c, err = compiler.LoadDefault(); err != nil {
			return nil, err
		}
	}

	var problems []string
	checkStep := func(where, op string, rawArgs map[string]any) (ir.OperationSig, bool) {
		sig, ok := c.Spec.Operation(op)
		if !ok {
			problems = append(problems, fmt.Sprintf("%s: unknown operation %q", where, op))
			return sig, false
		}
		args, err := convertArgs(rawArgs)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", where, err))
			return sig, true
		}
		if err := c.ValidateArgs(op, args); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", where, err))
		}
		return sig, true
	}

	for i, step := range scenario.Setup {
		checkStep(fmt.Sprintf("setup[%d]", i), step.Invoke, step.Args)
	}
	for i, step := range scenario.Flow {
		where := fmt.Sprintf("flow[%d]", i)
		sig, ok := checkStep(where, step.Invoke, step.Args)
		if !ok || step.Expect == nil {
			continue
		}
		if !declaresCase(sig, step.Expect.Case) {
			problems = append(problems, fmt.Sprintf("%s: operation %s has no output case %q", where, sig.Name, step.Expect.Case))
		}
	}
	for i, a := range scenario.Assertions {
		ops := a.Operations
		if a.Operation != "" {
			ops = append([]string{a.Operation}, ops...)
		}
		for _, op := range ops {
			if _, ok := c.Spec.Operation(op); !ok {
				problems = append(problems, fmt.Sprintf("assertions[%d]: unknown operation %q", i, op))
			}
		}
	}
	return problems, nil
}

func declaresCase(sig ir.OperationSig, name string) bool {
	for _, out := range sig.Outputs {
		if out.Case == name {
			return true
		}
	}
	return false
}

// convertArgs converts YAML-decoded values to an IR object.
func convertArgs(args map[string]any) (ir.IRObject, error) {
	if args == nil {
		return ir.IRObject{}, nil
	}
	v, err := ir.FromGo(args)
	if err != nil {
		return nil, err
	}
	return v.(ir.IRObject), nil
}

// newIsolatedSimulator is the untouched bystander used by the isolated
// assertion.
func newIsolatedSimulator(scenario *Scenario) (*contract.Simulator, error) {
	cfg, err := scenario.Config()
	if err != nil {
		return nil, err
	}
	return contract.NewSimulator(cfg), nil
}
