package domain

import "time"

// AccessToken is the persisted record behind a signed access token. The JWT
// the client receives carries this record's ID as its jti.
type AccessToken struct {
	ID        string
	ClientID  string
	UserID    string // empty for client-only grants
	Scopes    []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// RefreshToken is a stored refresh token record. The opaque value handed to
// the client is fingerprinted before storage.
type RefreshToken struct {
	ID        string
	TokenHash string // fingerprint of the opaque wire value
	IsRevoked bool

	ClientID string
	UserID   string // empty for tokens issued without a resource owner
	Scopes   []string

	IssuedAt   time.Time
	ExpiresAt  time.Time
	ValidAfter time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
