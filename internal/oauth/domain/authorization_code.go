package domain

import "time"

// AuthorizationCode is a single-use grant artifact minted by the
// authorization endpoint (external to this service) and consumed exactly
// once by the token endpoint. Whatever the outcome of the exchange, the
// code ends up revoked.
type AuthorizationCode struct {
	// CodeHash is the fingerprint of the opaque handle the client
	// presents. Raw code values are never stored.
	CodeHash  string
	IsRevoked bool

	IssuedAt   time.Time
	ExpiresAt  time.Time
	ValidAfter time.Time

	// Consent captured at authorization time: who approved what for whom.
	ClientID string
	UserID   string
	Scopes   []string

	// Original authorization-request parameters, replayed at exchange time.
	RedirectURI         string
	CodeChallenge       string
	CodeChallengeMethod string
	Nonce               string

	// Session details from the original login, carried into the ID token.
	Session Session
}

// Session describes the authentication event behind a consent.
type Session struct {
	AMR      []string
	ACR      string
	AuthTime time.Time
}
