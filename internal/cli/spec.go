package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/countersim/internal/compiler"
	"github.com/roach88/countersim/internal/ir"
)

// SpecOptions holds flags for the spec command.
type SpecOptions struct {
	*RootOptions
	Contract string // optional CUE file; default is the embedded contract
	Name     string
}

// SpecResult is the output of the spec command.
type SpecResult struct {
	Spec     ir.ContractSpec            `json:"spec"`
	SpecHash string                     `json:"spec_hash"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
}

// NewSpecCommand creates the spec command.
func NewSpecCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SpecOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "spec",
		Short: "Print the compiled contract",
		Long: `Compile the counter contract and print its state fields, operations and
spec hash. The embedded contract is used unless --contract names a CUE file.

Exit codes:
  0 - Contract compiled and validated
  1 - Contract compiled but failed validation
  2 - Contract could not be read or compiled

Examples:
  countersim spec
  countersim spec --format json
  countersim spec --contract ./counter.cue --name Counter`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSpec(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Contract, "contract", "", "CUE file to compile instead of the embedded contract")
	cmd.Flags().StringVar(&opts.Name, "name", compiler.DefaultContractName, "contract name under contract:")

	return cmd
}

// loadContract compiles the contract named by the flags.
func loadContract(path, name string) (*compiler.Contract, error) {
	if path == "" {
		return compiler.LoadDefault()
	}
	return compiler.LoadFile(path, name)
}

func runSpec(opts *SpecOptions, cmd *cobra.Command) error {
	formatter := opts.Formatter(cmd)

	c, err := loadContract(opts.Contract, opts.Name)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to compile contract", err)
	}

	hash, err := ir.SpecHash(c.Spec)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to hash contract", err)
	}

	result := SpecResult{Spec: c.Spec, SpecHash: hash, Errors: compiler.Validate(c.Spec)}

	if formatter.IsJSON() {
		var cliErr *CLIError
		if len(result.Errors) > 0 {
			cliErr = &CLIError{Code: ErrCodeGeneric, Message: fmt.Sprintf("%d validation error(s)", len(result.Errors))}
		}
		if err := formatter.Respond(result, cliErr); err != nil {
			return err
		}
	} else {
		printSpecText(cmd, result)
	}

	if len(result.Errors) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("contract %s has %d validation error(s)", c.Spec.Name, len(result.Errors)))
	}
	return nil
}

func printSpecText(cmd *cobra.Command, result SpecResult) {
	w := cmd.OutOrStdout()
	spec := result.Spec

	fmt.Fprintf(w, "Contract %s\n", spec.Name)
	fmt.Fprintf(w, "  %s\n", spec.Purpose)
	fmt.Fprintf(w, "  spec hash: %s\n\n", result.SpecHash)

	fmt.Fprintln(w, "Ledger:")
	for _, f := range spec.Ledger {
		fmt.Fprintf(w, "  %s: %s\n", f.Name, f.Type)
	}
	fmt.Fprintln(w, "Private:")
	for _, f := range spec.Private {
		fmt.Fprintf(w, "  %s: %s\n", f.Name, f.Type)
	}

	fmt.Fprintln(w, "Operations:")
	for _, op := range spec.Operations {
		args := make([]string, len(op.Args))
		for i, a := range op.Args {
			args[i] = a.Name + " " + a.Type
		}
		cases := make([]string, len(op.Outputs))
		for i, out := range op.Outputs {
			cases[i] = out.Case
		}
		fmt.Fprintf(w, "  %s(%s) [%s] -> %s\n", op.Name, strings.Join(args, ", "), op.Visibility, strings.Join(cases, " | "))
	}

	for _, e := range result.Errors {
		fmt.Fprintf(w, "\n✗ %s", e.Error())
	}
	if len(result.Errors) > 0 {
		fmt.Fprintln(w)
	}
}
