package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/countersim/internal/contract"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Network string
	DB      string // default for commands with a --db flag
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command with defaults from the
// environment. A malformed environment is reported when the command runs.
func NewRootCommand() *cobra.Command {
	cfg, envErr := LoadConfig()
	cmd := NewRootCommandWithConfig(cfg)
	if envErr != nil {
		cmd.PersistentPreRunE = func(*cobra.Command, []string) error {
			return WrapExitError(ExitCommandError, "invalid environment", envErr)
		}
	}
	return cmd
}

// NewRootCommandWithConfig creates the root command with explicit defaults.
func NewRootCommandWithConfig(cfg Config) *cobra.Command {
	opts := &RootOptions{DB: cfg.DB}

	cmd := &cobra.Command{
		Use:   "countersim",
		Short: "countersim - deterministic counter contract simulator",
		Long: `Simulate a counter contract with a public ledger round and a private
counter held by the caller. Every public transition can be journaled to
SQLite, replayed, and traced.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if _, err := contract.ParseNetworkID(opts.Network); err != nil {
				return WrapExitError(ExitCommandError, "invalid network", err)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", cfg.Verbose, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", cfg.Format, "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Network, "network", cfg.Network, "simulator network (undeployed|devnet|testnet|mainnet)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewSpecCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))

	return cmd
}

// Config returns the simulator configuration for the --network flag.
func (o *RootOptions) Config() (contract.Config, error) {
	network, err := contract.ParseNetworkID(o.Network)
	if err != nil {
		return contract.Config{}, err
	}
	return contract.Config{Network: network}, nil
}

// Logger returns a text logger on w. Debug output needs --verbose.
func (o *RootOptions) Logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Formatter returns an output formatter writing to the command's streams.
func (o *RootOptions) Formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// dbPath returns the --db flag value, falling back to COUNTERSIM_DB.
func (o *RootOptions) dbPath(flag string) string {
	if flag != "" {
		return flag
	}
	return o.DB
}

func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
