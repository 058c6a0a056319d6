package josex

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sableauth/sable/pkg/cryptox"
	"github.com/sableauth/sable/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func signedAssertion(t *testing.T, method jwt.SigningMethod, key any, kid string) string {
	t.Helper()

	claims := jwt.RegisteredClaims{
		Issuer:    "client-1",
		Subject:   "user-1",
		Audience:  jwt.ClaimStrings{"https://auth.example/token"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}
	tok := jwt.NewWithClaims(method, claims)
	if kid != "" {
		tok.Header["kid"] = kid
	}
	signed, err := tok.SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestDecodeWithoutVerification(t *testing.T) {
	t.Parallel()

	compact := signedAssertion(t, jwt.SigningMethodHS256, []byte("secret"), "kid-1")

	header, claims, err := Decode(compact)
	require.NoError(t, err)
	require.Equal(t, "HS256", header.Alg)
	require.Equal(t, "kid-1", header.Kid)
	require.Equal(t, "client-1", claims.Issuer)
	require.Equal(t, "user-1", claims.Subject)
	require.NotNil(t, claims.ExpiresAt)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, _, err := Decode("definitely.not-a.jws")
	require.ErrorIs(t, err, ErrMalformed)
}

func TestVerifyAllowList(t *testing.T) {
	t.Parallel()

	secret := []byte("assertion-secret")
	compact := signedAssertion(t, jwt.SigningMethodHS256, secret, "")

	t.Run("accepts listed algorithm with right key", func(t *testing.T) {
		require.NoError(t, Verify(compact, secret, []string{"HS256", "HS384"}))
	})

	t.Run("rejects unlisted algorithm", func(t *testing.T) {
		err := Verify(compact, secret, []string{"RS256"})
		require.ErrorIs(t, err, ErrSignature)
	})

	t.Run("rejects wrong key", func(t *testing.T) {
		err := Verify(compact, []byte("other-secret"), []string{"HS256"})
		require.ErrorIs(t, err, ErrSignature)
	})
}

func testJWKS(t *testing.T) jwtx.JWKS {
	t.Helper()

	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("jwks-key", pemKey)
	require.NoError(t, err)

	return jwtx.JWKS{Keys: []jwtx.JWK{signer.PublicJWK()}}
}

func TestLoadKeySet(t *testing.T) {
	t.Parallel()

	loader := &KeySetLoader{}

	t.Run("parses a valid set", func(t *testing.T) {
		raw, err := json.Marshal(testJWKS(t))
		require.NoError(t, err)

		ks, err := loader.Load(raw)
		require.NoError(t, err)
		require.Len(t, ks.Keys, 1)
		require.Equal(t, "jwks-key", ks.Keys[0].Kid)
	})

	t.Run("rejects empty and malformed sets", func(t *testing.T) {
		_, err := loader.Load([]byte(`{"keys":[]}`))
		require.ErrorIs(t, err, ErrKeySet)

		_, err = loader.Load([]byte(`{not json`))
		require.ErrorIs(t, err, ErrKeySet)
	})
}

func TestFetchKeySet(t *testing.T) {
	t.Parallel()

	t.Run("fetches over http", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(testJWKS(t))
		}))
		defer srv.Close()

		loader := &KeySetLoader{Timeout: 2 * time.Second}
		ks, err := loader.Fetch(context.Background(), srv.URL)
		require.NoError(t, err)
		require.Len(t, ks.Keys, 1)
	})

	t.Run("folds status errors into ErrKeySet", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusForbidden)
		}))
		defer srv.Close()

		loader := &KeySetLoader{Timeout: 2 * time.Second}
		_, err := loader.Fetch(context.Background(), srv.URL)
		require.ErrorIs(t, err, ErrKeySet)
	})

	t.Run("enforces the timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(300 * time.Millisecond)
		}))
		defer srv.Close()

		loader := &KeySetLoader{Timeout: 50 * time.Millisecond}
		_, err := loader.Fetch(context.Background(), srv.URL)
		require.ErrorIs(t, err, ErrKeySet)
	})
}
