package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/countersim/internal/ir"
)

// createTestStore opens a fresh on-disk store under t.TempDir().
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestSession writes a session row and returns it.
func createTestSession(t *testing.T, s *Store, id string) ir.Session {
	t.Helper()
	sess := ir.Session{
		ID:            id,
		Network:       "undeployed",
		SpecHash:      "test-hash",
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}
	if err := s.WriteSession(context.Background(), sess); err != nil {
		t.Fatalf("WriteSession() failed: %v", err)
	}
	return sess
}

// createTestTransition builds a public setValue transition at seq.
func createTestTransition(sessionID string, seq int64, before, after uint64) ir.Transition {
	args := ir.IRObject{"v": ir.Uint(after)}
	return ir.Transition{
		ID:           ir.MustTransitionID(sessionID, "setValue", args, seq),
		SessionID:    sessionID,
		Operation:    "setValue",
		Visibility:   ir.VisibilityPublic,
		Args:         args,
		OutputCase:   ir.CaseSuccess,
		Result:       ir.IRObject{"round": ir.Uint(after)},
		LedgerBefore: ir.LedgerHash(before),
		LedgerAfter:  ir.LedgerHash(after),
		Seq:          seq,
	}
}
