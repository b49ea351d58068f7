package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity. The version suffix allows
// the hashed shape to change without colliding with old IDs.
const (
	DomainTransition = "countersim/transition/v1"
	DomainLedger     = "countersim/ledger/v1"
	DomainSpec       = "countersim/spec/v1"
)

// hashWithDomain returns hex(SHA256(domain + 0x00 + data)).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// TransitionID computes the content-addressed ID of a transition. The same
// session, operation, args and seq always yield the same ID.
func TransitionID(sessionID, operation string, args IRObject, seq int64) (string, error) {
	if args == nil {
		args = IRObject{}
	}
	canonical, err := MarshalCanonical(Obj(
		O("session_id", IRString(sessionID)),
		O("operation", IRString(operation)),
		O("args", args),
		O("seq", IRInt(seq)),
	))
	if err != nil {
		return "", fmt.Errorf("TransitionID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTransition, canonical), nil
}

// MustTransitionID is like TransitionID but panics on error.
func MustTransitionID(sessionID, operation string, args IRObject, seq int64) string {
	id, err := TransitionID(sessionID, operation, args, seq)
	if err != nil {
		panic(err)
	}
	return id
}

// LedgerHash fingerprints the public ledger at a given round.
func LedgerHash(round uint64) string {
	return hashWithDomain(DomainLedger, MustMarshalCanonical(Obj(O("round", Uint(round)))))
}

// SpecHash fingerprints a compiled contract spec.
func SpecHash(spec ContractSpec) (string, error) {
	canonical, err := MarshalCanonical(spec.ToIR())
	if err != nil {
		return "", fmt.Errorf("SpecHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSpec, canonical), nil
}
