package grant

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sableauth/sable/internal/oauth/domain"
	"github.com/sableauth/sable/pkg/josex"
	"github.com/sableauth/sable/pkg/jwtx"
)

// allowedAssertionAlgorithms is the fixed signature-algorithm allow-list
// for jwt-bearer assertions. "none" is never in it.
var allowedAssertionAlgorithms = []string{
	"ES256", "ES384", "ES512",
	"EdDSA",
	"HS256", "HS384", "HS512",
	"PS256", "PS384", "PS512",
	"RS256", "RS384", "RS512",
}

var (
	errAssertionInvalid = invalidGrant("The provided Assertion is invalid.")
	errAssertionNoneAlg = invalidGrant(`The Authorization Server disallows the "none" algorithm.`)
)

func (s *Server) validateJWTBearer(ctx context.Context, base tokenContext) (jwtBearerContext, error) {
	if base.req.Assertion == "" {
		return jwtBearerContext{}, invalidRequest(`Missing required parameter "assertion".`)
	}

	user, err := s.verifyAssertion(ctx, base.client, base.req.Assertion)
	if err != nil {
		// Anything that is not already a protocol error collapses into the
		// generic assertion failure so cryptographic diagnostics never
		// reach the client.
		var protoErr *Error
		if !errors.As(err, &protoErr) {
			s.log.DebugContext(ctx, "assertion verification failed", "err", err)
			return jwtBearerContext{}, errAssertionInvalid
		}
		return jwtBearerContext{}, err
	}

	scopes, err := s.scopes.resolve(base.client, base.req.Scope)
	if err != nil {
		return jwtBearerContext{}, err
	}

	return jwtBearerContext{tokenContext: base, user: user, scopes: scopes}, nil
}

// handleJWTBearer issues an access token only. The client holds a signing
// key and can mint a fresh assertion, so no refresh token is attached.
func (s *Server) handleJWTBearer(ctx context.Context, c jwtBearerContext) (*TokenResponse, error) {
	record, signed, err := s.issueAccessToken(ctx, c.client, c.user.ID, c.scopes)
	if err != nil {
		return nil, err
	}
	return s.tokenResponse(record, signed, c.scopes), nil
}

// verifyAssertion runs the full assertion pipeline: unverified decode,
// claim checks, key resolution and signature verification, then the user
// lookup by sub.
func (s *Server) verifyAssertion(ctx context.Context, client domain.Client, assertion string) (domain.User, error) {
	header, claims, err := josex.Decode(assertion)
	if err != nil {
		return domain.User{}, err
	}
	if strings.EqualFold(header.Alg, "none") {
		return domain.User{}, errAssertionNoneAlg
	}

	if err := s.checkAssertionClaims(client, claims); err != nil {
		return domain.User{}, err
	}

	key, err := s.resolveAssertionKey(ctx, client, header)
	if err != nil {
		return domain.User{}, err
	}

	if err := josex.Verify(assertion, key, allowedAssertionAlgorithms); err != nil {
		return domain.User{}, err
	}

	user, err := s.store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (s *Server) checkAssertionClaims(client domain.Client, claims jwt.RegisteredClaims) error {
	if claims.Issuer != client.ID {
		return errors.New("grant: assertion iss does not match the client")
	}
	if claims.Subject == "" {
		return errors.New("grant: assertion is missing sub")
	}
	if !slices.Contains(claims.Audience, s.cfg.TokenEndpoint) {
		return errors.New("grant: assertion aud does not name the token endpoint")
	}
	if claims.ExpiresAt == nil {
		return errors.New("grant: assertion is missing exp")
	}
	if s.now().UTC().After(claims.ExpiresAt.Time) {
		return errors.New("grant: assertion is expired")
	}
	return nil
}

// resolveAssertionKey picks the verification key for the assertion. HMAC
// algorithms use the client secret; everything else goes through the
// client's JWKS, inline or fetched from jwks_uri.
func (s *Server) resolveAssertionKey(ctx context.Context, client domain.Client, header josex.Header) (any, error) {
	if strings.HasPrefix(header.Alg, "HS") {
		if client.Secret == "" {
			return nil, errors.New("grant: client has no secret for an HMAC assertion")
		}
		if client.SecretExpired(s.now()) {
			return nil, errors.New("grant: client secret is expired")
		}
		return []byte(client.Secret), nil
	}

	keyset, err := s.clientKeySet(ctx, client)
	if err != nil {
		return nil, err
	}

	for _, k := range keyset.Keys {
		if !assertionKeyMatches(k, header) {
			continue
		}
		return k.ParseKey()
	}
	return nil, errors.New("grant: no key in the client key set matches the assertion header")
}

func (s *Server) clientKeySet(ctx context.Context, client domain.Client) (jwtx.JWKS, error) {
	switch {
	case client.JWKS != "":
		return s.keyLoader.Load([]byte(client.JWKS))
	case client.JWKSURI != "":
		return s.keyLoader.Fetch(ctx, client.JWKSURI)
	default:
		return jwtx.JWKS{}, errors.New("grant: client has no registered key set")
	}
}

// assertionKeyMatches applies the RFC 7517 selection rules: kid, algorithm
// compatibility, key_ops permitting verify (or absent), use sig (or
// absent).
func assertionKeyMatches(k jwtx.JWK, header josex.Header) bool {
	if header.Kid != "" && k.Kid != header.Kid {
		return false
	}
	if k.Alg != "" && k.Alg != header.Alg {
		return false
	}
	if k.Alg == "" && !keyTypeCompatible(k, header.Alg) {
		return false
	}
	if k.KeyOps != nil && !slices.Contains(k.KeyOps, "verify") {
		return false
	}
	if k.Use != "" && k.Use != "sig" {
		return false
	}
	return true
}

func keyTypeCompatible(k jwtx.JWK, alg string) bool {
	switch {
	case strings.HasPrefix(alg, "RS"), strings.HasPrefix(alg, "PS"):
		return k.Kty == "RSA"
	case strings.HasPrefix(alg, "ES"):
		return k.Kty == "EC"
	case alg == "EdDSA":
		return k.Kty == "OKP"
	default:
		return false
	}
}
