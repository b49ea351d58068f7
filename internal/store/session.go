package store

import (
	"context"
	"database/sql"
	"fmt"
)

// SessionSummary describes one journaled session.
type SessionSummary struct {
	ID              string
	Network         string
	TransitionCount int
	LastSeq         int64
	// LastLedger is the ledger hash after the final transition, or empty
	// when the session has none.
	LastLedger string
}

// ListSessions returns a summary of every session, ordered by ID.
func (s *Store) ListSessions(ctx context.Context) ([]SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.network, COUNT(t.id), COALESCE(MAX(t.seq), 0)
		FROM sessions s
		LEFT JOIN transitions t ON t.session_id = s.id
		GROUP BY s.id, s.network
		ORDER BY s.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	summaries := []SessionSummary{}
	for rows.Next() {
		var sum SessionSummary
		if err := rows.Scan(&sum.ID, &sum.Network, &sum.TransitionCount, &sum.LastSeq); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan session: %w", err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	// Release the single connection before issuing follow-up queries.
	rows.Close()

	for i := range summaries {
		last, err := s.lastLedger(ctx, summaries[i].ID)
		if err != nil {
			return nil, err
		}
		summaries[i].LastLedger = last
	}
	return summaries, nil
}

// TransitionCount returns how many transitions a session has journaled.
func (s *Store) TransitionCount(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transitions WHERE session_id = ?`, sessionID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count transitions: %w", err)
	}
	return n, nil
}

// LastSeq returns the highest seq journaled for a session, or 0.
// Engines resuming a session start their clock from here.
func (s *Store) LastSeq(ctx context.Context, sessionID string) (int64, error) {
	var seq sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(seq) FROM transitions WHERE session_id = ?`, sessionID,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq.Int64, nil
}

func (s *Store) lastLedger(ctx context.Context, sessionID string) (string, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, `
		SELECT ledger_after FROM transitions
		WHERE session_id = ?
		ORDER BY seq DESC, id COLLATE BINARY DESC
		LIMIT 1
	`, sessionID).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("last ledger: %w", err)
	}
	return hash, nil
}
