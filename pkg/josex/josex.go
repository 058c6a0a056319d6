// Package josex exposes the JOSE primitives the assertion grant needs:
// unverified compact-JWS decoding, signature verification against an
// algorithm allow-list, and key-set loading from raw JSON or a remote
// jwks_uri. It deliberately knows nothing about OAuth semantics; the grant
// layer owns claim and key-selection policy.
package josex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sableauth/sable/pkg/jwtx"
)

var (
	// ErrMalformed reports a token that is not a parseable compact JWS.
	ErrMalformed = errors.New("josex: malformed token")

	// ErrSignature reports a failed signature verification.
	ErrSignature = errors.New("josex: signature verification failed")

	// ErrKeySet reports a key set that could not be loaded or parsed.
	ErrKeySet = errors.New("josex: invalid key set")
)

// Header is the protected JOSE header of a compact JWS.
type Header struct {
	Alg string
	Kid string
	Typ string
}

// Decode splits a compact JWS into its header and registered claims WITHOUT
// verifying the signature. Callers must follow up with Verify before
// trusting anything in the payload.
func Decode(compact string) (Header, jwt.RegisteredClaims, error) {
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()

	token, _, err := parser.ParseUnverified(compact, &claims)
	if err != nil {
		return Header{}, jwt.RegisteredClaims{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	h := Header{}
	if alg, ok := token.Header["alg"].(string); ok {
		h.Alg = alg
	}
	if kid, ok := token.Header["kid"].(string); ok {
		h.Kid = kid
	}
	if typ, ok := token.Header["typ"].(string); ok {
		h.Typ = typ
	}

	return h, claims, nil
}

// Verify checks the compact JWS signature with the given key, accepting
// only the listed algorithms. Claim validation is the caller's concern and
// is intentionally skipped here.
func Verify(compact string, key any, allowedAlgorithms []string) error {
	parser := jwt.NewParser(
		jwt.WithValidMethods(allowedAlgorithms),
		jwt.WithoutClaimsValidation(),
	)

	_, err := parser.Parse(compact, func(*jwt.Token) (any, error) {
		return key, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSignature, err)
	}
	return nil
}

// KeySetLoader resolves JSON Web Key Sets, either from raw JSON or over
// HTTPS. The remote fetch is the only network call on the token path, so
// it always runs under an explicit timeout.
type KeySetLoader struct {
	// Timeout bounds the remote fetch. Defaults to 10 seconds.
	Timeout time.Duration

	// HTTPClient overrides the client used for fetching. Mainly for tests.
	HTTPClient *http.Client
}

const maxKeySetBytes = 1 << 20 // 1 MiB is plenty for any sane JWKS

// Load parses a key set from raw JSON.
func (l *KeySetLoader) Load(raw []byte) (jwtx.JWKS, error) {
	var ks jwtx.JWKS
	if err := json.Unmarshal(raw, &ks); err != nil {
		return jwtx.JWKS{}, fmt.Errorf("%w: %w", ErrKeySet, err)
	}
	if len(ks.Keys) == 0 {
		return jwtx.JWKS{}, fmt.Errorf("%w: no keys", ErrKeySet)
	}
	return ks, nil
}

// Fetch retrieves and parses a key set from a jwks_uri. Transport and
// parse failures are folded into ErrKeySet so raw transport errors never
// reach a client.
func (l *KeySetLoader) Fetch(ctx context.Context, uri string) (jwtx.JWKS, error) {
	timeout := l.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return jwtx.JWKS{}, fmt.Errorf("%w: %w", ErrKeySet, err)
	}

	client := l.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return jwtx.JWKS{}, fmt.Errorf("%w: %w", ErrKeySet, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return jwtx.JWKS{}, fmt.Errorf("%w: unexpected status %d", ErrKeySet, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxKeySetBytes))
	if err != nil {
		return jwtx.JWKS{}, fmt.Errorf("%w: %w", ErrKeySet, err)
	}

	return l.Load(raw)
}
