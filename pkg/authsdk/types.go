// Package authsdk is a small client SDK for the sable token service. It
// wraps the token endpoint's grant types plus the JWKS and health
// endpoints, and it is what the end-to-end tests drive the service with.
package authsdk

import "github.com/sableauth/sable/pkg/jwtx"

// TokenResponse is the token endpoint success body per RFC 6749 §5.1.
type TokenResponse struct {
	// AccessToken is the signed JWT access token.
	AccessToken string `json:"access_token"`

	// TokenType is always "Bearer".
	TokenType string `json:"token_type"`

	// ExpiresIn is the access token lifetime in whole seconds, rounded up.
	ExpiresIn int64 `json:"expires_in"`

	// Scope is the space-delimited granted scope set.
	Scope string `json:"scope,omitempty"`

	// RefreshToken is the opaque refresh token, when one was issued.
	RefreshToken string `json:"refresh_token,omitempty"`

	// IDToken is the OpenID Connect ID token, when openid was granted on an
	// authorization code exchange.
	IDToken string `json:"id_token,omitempty"`
}

// ErrorResponse is the token endpoint error body per RFC 6749 §5.2.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// JWKSResponse is the body of GET /.well-known/jwks.json.
type JWKSResponse = jwtx.JWKS

// HealthChecks reports the state of the service's critical dependencies.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// HealthResponse is the body of the livez and readyz endpoints.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
