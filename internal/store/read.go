package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/roach88/countersim/internal/ir"
)

const transitionColumns = `id, session_id, operation, visibility, args, output_case, result, ledger_before, ledger_after, seq`

// ReadSession returns one session. Returns sql.ErrNoRows if it does not exist.
func (s *Store) ReadSession(ctx context.Context, id string) (ir.Session, error) {
	var sess ir.Session
	err := s.db.QueryRowContext(ctx, `
		SELECT id, network, spec_hash, engine_version, ir_version
		FROM sessions
		WHERE id = ?
	`, id).Scan(&sess.ID, &sess.Network, &sess.SpecHash, &sess.EngineVersion, &sess.IRVersion)
	if err != nil {
		return ir.Session{}, err
	}
	return sess, nil
}

// ReadTransition returns one transition by ID. Returns sql.ErrNoRows if not found.
func (s *Store) ReadTransition(ctx context.Context, id string) (ir.Transition, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+transitionColumns+` FROM transitions WHERE id = ?`, id)
	return scanTransition(row)
}

// ReadTransitions returns a session's transitions in seq order.
// An unknown session yields an empty slice.
func (s *Store) ReadTransitions(ctx context.Context, sessionID string) ([]ir.Transition, error) {
	return s.QueryTransitions(ctx, TransitionFilter{SessionID: sessionID})
}

// TransitionFilter narrows QueryTransitions. Zero fields match everything.
type TransitionFilter struct {
	SessionID string
	Operation string
	Limit     int
}

// QueryTransitions returns the matching transitions ordered by
// seq ASC, id ASC COLLATE BINARY.
func (s *Store) QueryTransitions(ctx context.Context, f TransitionFilter) ([]ir.Transition, error) {
	var (
		where []string
		args  []any
	)
	if f.SessionID != "" {
		where = append(where, "session_id = ?")
		args = append(args, f.SessionID)
	}
	if f.Operation != "" {
		where = append(where, "operation = ?")
		args = append(args, f.Operation)
	}

	query := `SELECT ` + transitionColumns + ` FROM transitions`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY seq ASC, id COLLATE BINARY ASC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	transitions := []ir.Transition{}
	for rows.Next() {
		tr, err := scanTransition(rows)
		if err != nil {
			return nil, err
		}
		transitions = append(transitions, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transitions: %w", err)
	}
	return transitions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransition(row rowScanner) (ir.Transition, error) {
	var (
		tr         ir.Transition
		argsJSON   string
		resultJSON string
	)
	err := row.Scan(
		&tr.ID,
		&tr.SessionID,
		&tr.Operation,
		&tr.Visibility,
		&argsJSON,
		&tr.OutputCase,
		&resultJSON,
		&tr.LedgerBefore,
		&tr.LedgerAfter,
		&tr.Seq,
	)
	if err == sql.ErrNoRows {
		return ir.Transition{}, err
	}
	if err != nil {
		return ir.Transition{}, fmt.Errorf("scan transition: %w", err)
	}

	if tr.Args, err = unmarshalObject("args", argsJSON); err != nil {
		return ir.Transition{}, fmt.Errorf("scan transition %s: %w", tr.ID, err)
	}
	if tr.Result, err = unmarshalObject("result", resultJSON); err != nil {
		return ir.Transition{}, fmt.Errorf("scan transition %s: %w", tr.ID, err)
	}
	return tr, nil
}
