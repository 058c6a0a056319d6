package domain

import (
	"slices"
	"time"
)

// Client is a registered OAuth 2.0 client. Immutable for the duration of a
// token request.
type Client struct {
	ID   string
	Name string

	// Secret is empty for public clients. It doubles as the HMAC key when
	// the client signs JWT assertions with an HS* algorithm, which is why
	// it is stored raw rather than hashed.
	Secret          string
	SecretExpiresAt *time.Time

	RedirectURIs []string
	GrantTypes   []GrantType

	// Scopes the client may be granted, in registration order. The first
	// position matters: when a request names no scope, the client's full
	// registered set is the default.
	Scopes []string

	// JWKS is the client's inline JSON Web Key Set as raw JSON, if
	// registered. JWKSURI points at a remote set instead. At most one is
	// normally present; inline wins when both are.
	JWKS    string
	JWKSURI string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AllowsGrantType reports whether the client registered for the grant.
func (c Client) AllowsGrantType(g GrantType) bool {
	return slices.Contains(c.GrantTypes, g)
}

// AllowsRedirectURI reports whether uri is one of the client's registered
// redirect URIs.
func (c Client) AllowsRedirectURI(uri string) bool {
	return slices.Contains(c.RedirectURIs, uri)
}

// SecretExpired reports whether the client secret has lapsed at now.
// Clients without an expiry never lapse.
func (c Client) SecretExpired(now time.Time) bool {
	return c.SecretExpiresAt != nil && now.After(*c.SecretExpiresAt)
}

// IsConfidential reports whether the client holds a secret.
func (c Client) IsConfidential() bool { return c.Secret != "" }
