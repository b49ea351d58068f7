// Package store is the SQLite journal of simulator sessions.
//
// Two tables:
//   - sessions: one row per simulator lifetime (network, spec hash, versions)
//   - transitions: one row per applied operation, content-addressed by ID
//
// Writes are idempotent (ON CONFLICT DO NOTHING). Reads are ordered by
// seq ASC, id ASC COLLATE BINARY so replays see the same sequence every time.
//
// Only public data is stored. Private transitions keep their operation name
// and seq; WriteTransition rejects one that carries args or a result.
//
// The database runs in WAL mode with synchronous=NORMAL, a 5 second busy
// timeout and foreign keys enforced.
package store
