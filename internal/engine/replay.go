package engine

import (
	"context"
	"fmt"

	"github.com/roach88/countersim/internal/compiler"
	"github.com/roach88/countersim/internal/contract"
	"github.com/roach88/countersim/internal/ir"
	"github.com/roach88/countersim/internal/store"
)

// Mismatch is one journaled field that replay could not reproduce.
type Mismatch struct {
	Seq          int64  `json:"seq"`
	TransitionID string `json:"transition_id"`
	Field        string `json:"field"`
	Journaled    string `json:"journaled"`
	Replayed     string `json:"replayed"`
}

// ReplayResult summarizes a replay of one journaled session.
type ReplayResult struct {
	SessionID      string               `json:"session_id"`
	Network        string               `json:"network"`
	Transitions    int                  `json:"transitions"`
	Replayed       int                  `json:"replayed"`
	SkippedPrivate int                  `json:"skipped_private"`
	SpecChanged    bool                 `json:"spec_changed"`
	FinalLedger    contract.LedgerState `json:"final_ledger"`
	Mismatches     []Mismatch           `json:"mismatches"`
}

// Deterministic reports whether every public transition was reproduced.
func (r ReplayResult) Deterministic() bool {
	return len(r.Mismatches) == 0
}

// Replay re-applies a journaled session to a fresh simulator and compares
// each transition's ID, output case and ledger hashes with the journal.
//
// Private transitions are skipped: their args were never journaled and they
// cannot move the ledger, which is checked instead. A nil contract means the
// embedded one.
func Replay(ctx context.Context, st *store.Store, sessionID string, c *compiler.Contract) (ReplayResult, error) {
	result := ReplayResult{SessionID: sessionID, Mismatches: []Mismatch{}}

	sess, err := st.ReadSession(ctx, sessionID)
	if err != nil {
		return result, fmt.Errorf("replay %s: read session: %w", sessionID, err)
	}
	result.Network = sess.Network

	network, err := contract.ParseNetworkID(sess.Network)
	if err != nil {
		return result, fmt.Errorf("replay %s: %w", sessionID, err)
	}

	if c == nil {
		if c, err = compiler.LoadDefault(); err != nil {
			return result, fmt.Errorf("replay %s: load contract: %w", sessionID, err)
		}
	}
	hash, err := ir.SpecHash(c.Spec)
	if err != nil {
		return result, fmt.Errorf("replay %s: %w", sessionID, err)
	}
	result.SpecChanged = hash != sess.SpecHash

	transitions, err := st.ReadTransitions(ctx, sessionID)
	if err != nil {
		return result, fmt.Errorf("replay %s: %w", sessionID, err)
	}
	result.Transitions = len(transitions)

	sim := contract.NewSimulator(contract.Config{Network: network})
	for _, tr := range transitions {
		mismatch := func(field, journaled, replayed string) {
			result.Mismatches = append(result.Mismatches, Mismatch{
				Seq:          tr.Seq,
				TransitionID: tr.ID,
				Field:        field,
				Journaled:    journaled,
				Replayed:     replayed,
			})
		}

		before := sim.GetLedger()
		if got := ir.LedgerHash(before.Round); got != tr.LedgerBefore {
			mismatch("ledger_before", tr.LedgerBefore, got)
		}

		if tr.Visibility == ir.VisibilityPrivate {
			result.SkippedPrivate++
			if tr.LedgerAfter != tr.LedgerBefore {
				mismatch("ledger_after", tr.LedgerAfter, tr.LedgerBefore)
			}
			continue
		}

		sig, ok := c.Spec.Operation(tr.Operation)
		if !ok || !supported[tr.Operation] {
			mismatch("operation", tr.Operation, "")
			continue
		}
		args, normalized, err := decodeArgs(sig, tr.Args)
		if err != nil {
			mismatch("args", string(ir.MustMarshalCanonical(tr.Args)), err.Error())
			continue
		}

		after, _, execErr := execute(sim, tr.Operation, args)
		replayed, err := buildTransition(sessionID, sig, normalized, tr.Seq, before, after, execErr)
		if err != nil {
			return result, fmt.Errorf("replay %s seq %d: %w", sessionID, tr.Seq, err)
		}
		result.Replayed++

		if replayed.ID != tr.ID {
			mismatch("id", tr.ID, replayed.ID)
		}
		if replayed.OutputCase != tr.OutputCase {
			mismatch("output_case", tr.OutputCase, replayed.OutputCase)
		}
		if replayed.LedgerAfter != tr.LedgerAfter {
			mismatch("ledger_after", tr.LedgerAfter, replayed.LedgerAfter)
		}
	}

	result.FinalLedger = sim.GetLedger()
	return result, nil
}

// ReplayAll replays every journaled session in ID order.
func ReplayAll(ctx context.Context, st *store.Store, c *compiler.Contract) ([]ReplayResult, error) {
	sessions, err := st.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	if c == nil {
		if c, err = compiler.LoadDefault(); err != nil {
			return nil, fmt.Errorf("load contract: %w", err)
		}
	}

	results := make([]ReplayResult, 0, len(sessions))
	for _, s := range sessions {
		r, err := Replay(ctx, st, s.ID, c)
		if err != nil {
			return results, err
		}
		results = append(results, r)
	}
	return results, nil
}
