package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/countersim/internal/ir"
	"github.com/roach88/countersim/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database  string
	SessionID string
	Operation string
	Limit     int
}

// TraceSession summarizes one journaled session.
type TraceSession struct {
	ID              string `json:"id"`
	Network         string `json:"network"`
	TransitionCount int    `json:"transition_count"`
	LastSeq         int64  `json:"last_seq"`
	LastLedger      string `json:"last_ledger,omitempty"`
}

// TraceStats holds summary statistics for the listed transitions.
type TraceStats struct {
	Total           int            `json:"total"`
	Public          int            `json:"public"`
	Private         int            `json:"private"`
	RangeViolations int            `json:"range_violations"`
	ByOperation     map[string]int `json:"by_operation"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Sessions    []TraceSession  `json:"sessions"`
	Transitions []ir.Transition `json:"transitions"`
	Stats       TraceStats      `json:"stats"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Print journaled transitions",
		Long: `Print the journal: a summary of each session and its transitions in seq
order. Private transitions show only the operation and output case.

Examples:
  countersim trace --db ./counter.db
  countersim trace --db ./counter.db --session 0190f5c2-...
  countersim trace --db ./counter.db --operation decrement --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default $COUNTERSIM_DB)")
	cmd.Flags().StringVar(&opts.SessionID, "session", "", "only this session")
	cmd.Flags().StringVar(&opts.Operation, "operation", "", "only this operation")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of transitions (0 = all)")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
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

	summaries, err := st.ListSessions(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list sessions", err)
	}

	result := TraceResult{Sessions: []TraceSession{}}
	for _, s := range summaries {
		if opts.SessionID != "" && s.ID != opts.SessionID {
			continue
		}
		result.Sessions = append(result.Sessions, TraceSession{
			ID:              s.ID,
			Network:         s.Network,
			TransitionCount: s.TransitionCount,
			LastSeq:         s.LastSeq,
			LastLedger:      s.LastLedger,
		})
	}
	if opts.SessionID != "" && len(result.Sessions) == 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("session not found: %s", opts.SessionID))
	}

	result.Transitions, err = st.QueryTransitions(ctx, store.TransitionFilter{
		SessionID: opts.SessionID,
		Operation: opts.Operation,
		Limit:     opts.Limit,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to query transitions", err)
	}
	result.Stats = traceStats(result.Transitions)

	if formatter.IsJSON() {
		return formatter.Success(result)
	}
	printTraceText(cmd, result)
	return nil
}

func traceStats(transitions []ir.Transition) TraceStats {
	stats := TraceStats{Total: len(transitions), ByOperation: map[string]int{}}
	for _, tr := range transitions {
		if tr.Visibility == ir.VisibilityPrivate {
			stats.Private++
		} else {
			stats.Public++
		}
		if tr.OutputCase == ir.CaseRangeViolation {
			stats.RangeViolations++
		}
		stats.ByOperation[tr.Operation]++
	}
	return stats
}

func printTraceText(cmd *cobra.Command, result TraceResult) {
	w := cmd.OutOrStdout()

	if len(result.Sessions) == 0 {
		fmt.Fprintln(w, "No sessions found in database.")
		return
	}

	fmt.Fprintln(w, "Sessions:")
	for _, s := range result.Sessions {
		fmt.Fprintf(w, "  %s (%s): %d transitions, last seq %d\n", s.ID, s.Network, s.TransitionCount, s.LastSeq)
	}

	fmt.Fprintln(w, "\nTransitions:")
	for _, s := range result.Sessions {
		fmt.Fprintf(w, "  session %s\n", s.ID)
		for _, tr := range result.Transitions {
			if tr.SessionID != s.ID {
				continue
			}
			fmt.Fprintf(w, "    [%d] %s", tr.Seq, tr.Operation)
			if tr.Visibility == ir.VisibilityPrivate {
				fmt.Fprintf(w, " (private) -> %s\n", tr.OutputCase)
				continue
			}
			fmt.Fprintf(w, " %s -> %s %s\n", ir.MustMarshalCanonical(tr.Args), tr.OutputCase, ir.MustMarshalCanonical(tr.Result))
		}
	}

	fmt.Fprintf(w, "\nStats: %d transitions (%d public, %d private, %d range violations)\n",
		result.Stats.Total, result.Stats.Public, result.Stats.Private, result.Stats.RangeViolations)
}
