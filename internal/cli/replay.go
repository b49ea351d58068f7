package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/countersim/internal/compiler"
	"github.com/roach88/countersim/internal/engine"
	"github.com/roach88/countersim/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database  string
	SessionID string // optional - specific session only
	Contract  string
	Name      string
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Sessions         []engine.ReplayResult `json:"sessions"`
	TotalSessions    int                   `json:"total_sessions"`
	AllDeterministic bool                  `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay journaled sessions and verify determinism",
		Long: `Re-apply every journaled public transition to a fresh simulator and check
that transition IDs, output cases and ledger hashes match the journal.
Private transitions are skipped; they must not have moved the ledger.

Exit codes:
  0 - All sessions are deterministic
  1 - Determinism verification failed (mismatches detected)
  2 - Command error (database not found, unknown session, etc.)

Examples:
  countersim replay --db ./counter.db
  countersim replay --db ./counter.db --session 0190f5c2-...
  countersim replay --db ./counter.db --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default $COUNTERSIM_DB)")
	cmd.Flags().StringVar(&opts.SessionID, "session", "", "replay specific session only")
	cmd.Flags().StringVar(&opts.Contract, "contract", "", "CUE file to replay against instead of the embedded contract")
	cmd.Flags().StringVar(&opts.Name, "name", compiler.DefaultContractName, "contract name under contract:")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := opts.Formatter(cmd)

	path := opts.dbPath(opts.Database)
	if path == "" {
		return NewExitError(ExitCommandError, "--db is required (or set COUNTERSIM_DB)")
	}
	st, err := openExisting(path)
	if err != nil {
		return err
	}
	defer st.Close()

	c, err := loadContract(opts.Contract, opts.Name)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to compile contract", err)
	}

	var sessions []engine.ReplayResult
	if opts.SessionID != "" {
		r, err := engine.Replay(ctx, st, opts.SessionID, c)
		if errors.Is(err, sql.ErrNoRows) {
			return NewExitError(ExitCommandError, fmt.Sprintf("session not found: %s", opts.SessionID))
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "replay failed", err)
		}
		sessions = []engine.ReplayResult{r}
	} else {
		sessions, err = engine.ReplayAll(ctx, st, c)
		if err != nil {
			return WrapExitError(ExitCommandError, "replay failed", err)
		}
	}

	result := ReplayResult{
		Sessions:         sessions,
		TotalSessions:    len(sessions),
		AllDeterministic: true,
	}
	for _, s := range sessions {
		if !s.Deterministic() {
			result.AllDeterministic = false
		}
		formatter.VerboseLog("session %s: %d transitions, %d replayed, %d private skipped",
			s.SessionID, s.Transitions, s.Replayed, s.SkippedPrivate)
	}

	if formatter.IsJSON() {
		var cliErr *CLIError
		if !result.AllDeterministic {
			cliErr = &CLIError{Code: ErrCodeReplayMismatch, Message: "replay does not match the journal"}
		}
		if err := formatter.Respond(result, cliErr); err != nil {
			return err
		}
	} else {
		printReplayText(cmd, result)
	}

	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}

func printReplayText(cmd *cobra.Command, result ReplayResult) {
	w := cmd.OutOrStdout()

	if result.TotalSessions == 0 {
		fmt.Fprintln(w, "No sessions found in database.")
		return
	}

	for _, s := range result.Sessions {
		mark := "✓"
		if !s.Deterministic() {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s %s (%s): %d transitions, %d replayed, %d private skipped, final round=%d\n",
			mark, s.SessionID, s.Network, s.Transitions, s.Replayed, s.SkippedPrivate, s.FinalLedger.Round)
		if s.SpecChanged {
			fmt.Fprintln(w, "  warning: contract changed since this session was journaled")
		}
		for _, m := range s.Mismatches {
			fmt.Fprintf(w, "  seq %d %s: journaled %s, replayed %s\n", m.Seq, m.Field, m.Journaled, m.Replayed)
		}
	}

	fmt.Fprintln(w)
	if result.AllDeterministic {
		fmt.Fprintf(w, "All %d session(s) deterministic\n", result.TotalSessions)
	} else {
		fmt.Fprintln(w, "Determinism verification FAILED")
	}
}

// openExisting opens a journal that must already exist, so a mistyped path
// is not silently created as an empty database.
func openExisting(path string) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, WrapExitError(ExitCommandError, "database not found", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}
