// Package jwtx covers the JWT plumbing the token engine signs with:
// claims shapes for access and ID tokens, JWK/JWKS types, an in-memory
// key set for JWKS publishing and an ephemeral multi-key signing manager.
package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims are the claims embedded in issued access tokens.
type AccessClaims struct {
	jwt.RegisteredClaims

	// ClientID identifies the client the token was issued to.
	ClientID string `json:"client_id,omitempty"`

	// Scopes granted to the token.
	Scopes []string `json:"scope,omitempty"`
}

// NewAccessClaims builds minimally-correct access token claims. The jti is
// supplied by the caller so the signed token can be tied back to its
// persisted record.
func NewAccessClaims(
	jti, subject, clientID, issuer string,
	scopes []string,
	now, expiresAt time.Time,
) AccessClaims {
	return AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{clientID},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		ClientID: clientID,
		Scopes:   scopes,
	}
}

// IDClaims are the OpenID Connect ID token claims issued alongside an
// access token when the openid scope was granted.
type IDClaims struct {
	jwt.RegisteredClaims

	// Nonce echoes the nonce from the original authorization request.
	Nonce string `json:"nonce,omitempty"`

	// AMR lists the authentication methods used at the original login.
	AMR []string `json:"amr,omitempty"`

	// ACR is the authentication context class reference.
	ACR string `json:"acr,omitempty"`

	// AuthTime is when the end user authenticated, as a unix timestamp.
	AuthTime int64 `json:"auth_time,omitempty"`
}

// NewIDClaims builds ID token claims.
func NewIDClaims(
	subject, clientID, issuer, nonce string,
	amr []string,
	acr string,
	authTime time.Time,
	now time.Time,
	ttl time.Duration,
) IDClaims {
	c := IDClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{clientID},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Nonce: nonce,
		AMR:   amr,
		ACR:   acr,
	}
	if !authTime.IsZero() {
		c.AuthTime = authTime.Unix()
	}
	return c
}
