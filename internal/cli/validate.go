package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/countersim/internal/compiler"
	"github.com/roach88/countersim/internal/harness"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Contract string
	Name     string
}

// ScenarioValidation lists the problems found in one scenario file.
type ScenarioValidation struct {
	Path     string   `json:"path"`
	Name     string   `json:"name,omitempty"`
	Problems []string `json:"problems,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid          bool                       `json:"valid"`
	ContractErrors []compiler.ValidationError `json:"contract_errors,omitempty"`
	Scenarios      []ScenarioValidation       `json:"scenarios"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <scenarios-dir>",
		Short: "Validate scenarios against the contract without running them",
		Long: `Check every scenario file for structural errors, unknown operations,
arguments that do not satisfy the contract's types, and expected output cases
the contract does not declare. The contract itself is validated first.

Exit codes:
  0 - Contract and all scenarios are valid
  1 - Validation problems found
  2 - Command error (directory not found, contract does not compile)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Contract, "contract", "", "CUE file to validate against instead of the embedded contract")
	cmd.Flags().StringVar(&opts.Name, "name", compiler.DefaultContractName, "contract name under contract:")

	return cmd
}

func runValidate(opts *ValidateOptions, dir string, cmd *cobra.Command) error {
	formatter := opts.Formatter(cmd)

	if _, err := os.Stat(dir); err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "scenarios directory not found", err)
	}

	c, err := loadContract(opts.Contract, opts.Name)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to compile contract", err)
	}

	paths, err := harness.FindScenarios(dir, "")
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}
	formatter.VerboseLog("Found %d scenario file(s) in %s", len(paths), dir)

	result := ValidationResult{
		ContractErrors: compiler.Validate(c.Spec),
		Scenarios:      make([]ScenarioValidation, 0, len(paths)),
	}
	problems := len(result.ContractErrors)

	for _, path := range paths {
		v := ScenarioValidation{Path: path}
		scenario, err := harness.LoadScenario(path)
		if err != nil {
			v.Problems = []string{err.Error()}
		} else {
			v.Name = scenario.Name
			if v.Problems, err = harness.CheckScenario(scenario, c); err != nil {
				return WrapExitError(ExitCommandError, "failed to check scenario", err)
			}
		}
		problems += len(v.Problems)
		result.Scenarios = append(result.Scenarios, v)
	}
	result.Valid = problems == 0

	if formatter.IsJSON() {
		var cliErr *CLIError
		if !result.Valid {
			cliErr = &CLIError{Code: ErrCodeInvalidScenario, Message: fmt.Sprintf("%d problem(s) found", problems)}
		}
		if err := formatter.Respond(result, cliErr); err != nil {
			return err
		}
	} else {
		printValidateText(cmd, result)
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed: %d problem(s)", problems))
	}
	return nil
}

func printValidateText(cmd *cobra.Command, result ValidationResult) {
	w := cmd.OutOrStdout()

	for _, e := range result.ContractErrors {
		fmt.Fprintf(w, "✗ contract: %s\n", e.Error())
	}
	for _, s := range result.Scenarios {
		if len(s.Problems) == 0 {
			fmt.Fprintf(w, "✓ %s\n", s.Path)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", s.Path)
		for _, p := range s.Problems {
			fmt.Fprintf(w, "  %s\n", p)
		}
	}

	if result.Valid {
		fmt.Fprintf(w, "\nAll %d scenario(s) valid\n", len(result.Scenarios))
	}
}
