package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/countersim/internal/ir"
)

// ErrPrivateLeak is returned when a private transition carries args or a result.
var ErrPrivateLeak = errors.New("private transition must not carry args or result")

// WriteSession records a session. Writing the same ID twice is a no-op.
func (s *Store) WriteSession(ctx context.Context, sess ir.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, network, spec_hash, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		sess.ID,
		sess.Network,
		sess.SpecHash,
		sess.EngineVersion,
		sess.IRVersion,
	)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// WriteTransition appends a transition to its session's journal.
//
// Duplicate IDs are ignored, so re-writing the same transition is safe. The
// session must already exist (foreign key).
func (s *Store) WriteTransition(ctx context.Context, tr ir.Transition) error {
	if tr.Visibility == ir.VisibilityPrivate && (len(tr.Args) > 0 || len(tr.Result) > 0) {
		return fmt.Errorf("write transition %s: %w", tr.Operation, ErrPrivateLeak)
	}

	argsJSON, err := marshalObject("args", tr.Args)
	if err != nil {
		return fmt.Errorf("write transition: %w", err)
	}
	resultJSON, err := marshalObject("result", tr.Result)
	if err != nil {
		return fmt.Errorf("write transition: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO transitions
		(id, session_id, operation, visibility, args, output_case, result, ledger_before, ledger_after, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		tr.ID,
		tr.SessionID,
		tr.Operation,
		tr.Visibility,
		argsJSON,
		tr.OutputCase,
		resultJSON,
		tr.LedgerBefore,
		tr.LedgerAfter,
		tr.Seq,
	)
	if err != nil {
		return fmt.Errorf("write transition: %w", err)
	}
	return nil
}
