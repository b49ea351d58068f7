package testutil

// DefaultSessionToken is used when a scenario does not name its session.
const DefaultSessionToken = "test-session-default"

// FixedSessionGenerator returns the same session token on every call. It
// satisfies engine.SessionTokenGenerator.
//
// Scenarios set the token explicitly:
//
//	session: "test-session-00000000-0000-0000-0000-000000000001"
type FixedSessionGenerator struct {
	token string
}

// NewFixedSessionGenerator creates a generator for token. An empty token
// falls back to DefaultSessionToken.
func NewFixedSessionGenerator(token string) *FixedSessionGenerator {
	if token == "" {
		token = DefaultSessionToken
	}
	return &FixedSessionGenerator{token: token}
}

// Generate returns the fixed token.
func (g *FixedSessionGenerator) Generate() string {
	return g.token
}
