package ir

const (
	// IRVersion is the journal record schema version.
	IRVersion = "1"

	// EngineVersion is stamped on every session.
	EngineVersion = "0.1.0"
)
