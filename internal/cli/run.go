package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/countersim/internal/contract"
	"github.com/roach88/countersim/internal/engine"
	"github.com/roach88/countersim/internal/ir"
	"github.com/roach88/countersim/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string

	// SessionGenerator overrides session tokens (for testing).
	// If nil, defaults to UUIDv7Generator.
	SessionGenerator engine.SessionTokenGenerator
}

// RunStep is one applied operation.
type RunStep struct {
	Seq        int64       `json:"seq"`
	ID         string      `json:"id"`
	Operation  string      `json:"operation"`
	Visibility string      `json:"visibility"`
	Args       ir.IRObject `json:"args"`
	OutputCase string      `json:"output_case"`
	Round      uint64      `json:"round"`
	Error      string      `json:"error,omitempty"`
}

// PrivateReport is the caller's private state, reported apart from the
// ledger.
type PrivateReport struct {
	PrivateCounter string `json:"private_counter"`
}

// RunResult is the output of the run command.
type RunResult struct {
	SessionID string               `json:"session_id"`
	Network   string               `json:"network"`
	Steps     []RunStep            `json:"steps"`
	Ledger    contract.LedgerState `json:"ledger"`
	Private   PrivateReport        `json:"private"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <operation>...",
		Short: "Apply operations to a fresh simulator",
		Long: `Apply a sequence of operations to a fresh simulator and print the final
ledger and, separately, the private state.

An operation is written as name or name:value, where value is bound to the
operation's single argument. A range violation is reported and the run
continues; a rejected operation stops the run.

Examples:
  countersim run increment increment decrement:1
  countersim run setValue:42 incrementPrivate:10 --format json
  countersim run --db ./counter.db --network testnet increment`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperations(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "journal transitions to this SQLite database (default $COUNTERSIM_DB)")

	return cmd
}

func runOperations(opts *RunOptions, args []string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.Formatter(cmd)

	cfg, err := opts.Config()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid network", err)
	}

	engineOpts := []engine.EngineOption{engine.WithLogger(opts.Logger(cmd.ErrOrStderr()))}
	if path := opts.dbPath(opts.Database); path != "" {
		st, err := store.Open(path)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()
		engineOpts = append(engineOpts, engine.WithStore(st))
		formatter.VerboseLog("journaling to %s", path)
	}

	eng, err := engine.New(cfg, opts.SessionGenerator, engineOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start engine", err)
	}

	ops, err := parseOperations(eng.Spec(), args)
	if err != nil {
		_ = formatter.Error(ErrCodeInvalidOp, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid operation", err)
	}

	result := RunResult{
		SessionID: eng.SessionID(),
		Network:   string(cfg.Network),
		Steps:     make([]RunStep, 0, len(ops)),
	}

	for _, op := range ops {
		out, err := eng.Apply(ctx, op)
		if err != nil && !engine.IsRangeViolation(err) {
			_ = formatter.Error(ErrCodeRejected, err.Error(), map[string]any{"completed_steps": result.Steps})
			return WrapExitError(ExitCommandError, fmt.Sprintf("operation %s rejected", op.Name), err)
		}

		step := RunStep{
			Seq:        out.Transition.Seq,
			ID:         out.Transition.ID,
			Operation:  out.Transition.Operation,
			Visibility: out.Transition.Visibility,
			Args:       out.Transition.Args,
			OutputCase: out.Transition.OutputCase,
			Round:      out.Ledger.Round,
		}
		if err != nil {
			step.Error = err.Error()
		}
		result.Steps = append(result.Steps, step)
	}

	result.Ledger = eng.Ledger()
	counter := eng.PrivateState().PrivateCounter()
	result.Private = PrivateReport{PrivateCounter: counter.Dec()}

	if formatter.IsJSON() {
		return formatter.Success(result)
	}
	printRunText(cmd, result)
	return nil
}

// parseOperations turns "name" and "name:value" arguments into operations.
func parseOperations(spec ir.ContractSpec, args []string) ([]engine.Operation, error) {
	ops := make([]engine.Operation, 0, len(args))
	for _, arg := range args {
		name, value, hasValue := strings.Cut(arg, ":")
		sig, ok := spec.Operation(name)
		if !ok {
			return nil, fmt.Errorf("unknown operation %q", name)
		}

		op := engine.Operation{Name: name, Args: ir.IRObject{}}
		switch {
		case hasValue && len(sig.Args) != 1:
			return nil, fmt.Errorf("%s: takes %d arguments, got a value", name, len(sig.Args))
		case hasValue:
			op.Args[sig.Args[0].Name] = ir.IRString(value)
		case len(sig.Args) > 0:
			return nil, fmt.Errorf("%s: missing value (write %s:<%s>)", name, name, sig.Args[0].Name)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func printRunText(cmd *cobra.Command, result RunResult) {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Session %s (%s)\n", result.SessionID, result.Network)
	for _, step := range result.Steps {
		fmt.Fprintf(w, "  [%d] %s", step.Seq, step.Operation)
		if len(step.Args) > 0 {
			fmt.Fprintf(w, " %s", ir.MustMarshalCanonical(step.Args))
		}
		fmt.Fprintf(w, " -> %s", step.OutputCase)
		if step.Visibility == ir.VisibilityPrivate {
			fmt.Fprint(w, " (private)")
		} else {
			fmt.Fprintf(w, " (round=%d)", step.Round)
		}
		fmt.Fprintln(w)
		if step.Error != "" {
			fmt.Fprintf(w, "      %s\n", step.Error)
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Ledger:  %s\n", result.Ledger)
	fmt.Fprintf(w, "Private: privateCounter=%s\n", result.Private.PrivateCounter)
}
