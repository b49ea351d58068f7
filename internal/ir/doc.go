// Package ir holds the canonical, language-neutral records countersim writes
// to its journal and hashes for identity.
//
// ir imports nothing internal. Numbers are int64 only; unsigned counter
// values travel as decimal strings (see Uint). Sequence numbers come from a
// logical clock, never from wall time.
package ir
