package jwtx

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signAndVerify(t *testing.T, algorithm string) {
	t.Helper()

	km, err := NewEphemeralKeyManager(KeyManagerOptions{
		Algorithm: algorithm,
		RSABits:   2048, // keep RSA test fast
		NumKeys:   2,
	})
	require.NoError(t, err)
	require.True(t, km.IsReady())
	require.Len(t, km.KeySet.PublicJWKS().Keys, 2)

	signer := km.GetSigner()
	require.NotNil(t, signer)

	now := time.Now()
	claims := NewAccessClaims(
		"token-id", "user-1", "client-1", "https://auth.example",
		[]string{"foo", "bar"},
		now, now.Add(5*time.Minute),
	)

	signed, err := signer.Sign(claims)
	require.NoError(t, err)

	parsed := AccessClaims{}
	_, err = jwt.ParseWithClaims(signed, &parsed, func(tok *jwt.Token) (any, error) {
		kid, _ := tok.Header["kid"].(string)
		return km.KeySet.Get(kid)
	}, jwt.WithValidMethods([]string{algorithm}))
	require.NoError(t, err)

	require.Equal(t, "token-id", parsed.ID)
	require.Equal(t, "user-1", parsed.Subject)
	require.Equal(t, "client-1", parsed.ClientID)
	require.Equal(t, []string{"foo", "bar"}, parsed.Scopes)
}

func TestSignAndVerifyEdDSA(t *testing.T) { signAndVerify(t, AlgorithmEdDSA) }
func TestSignAndVerifyES256(t *testing.T) { signAndVerify(t, AlgorithmES256) }
func TestSignAndVerifyRS256(t *testing.T) { signAndVerify(t, AlgorithmRS256) }

func TestKeyManagerRejectsUnknownAlgorithm(t *testing.T) {
	t.Parallel()

	_, err := NewEphemeralKeyManager(KeyManagerOptions{Algorithm: "HS256"})
	require.Error(t, err)
}

func TestJWKRoundTrip(t *testing.T) {
	t.Parallel()

	km, err := NewEphemeralKeyManager(KeyManagerOptions{Algorithm: AlgorithmEdDSA, NumKeys: 1})
	require.NoError(t, err)

	jwk := km.GetSigner().PublicJWK()
	require.Equal(t, "OKP", jwk.Kty)
	require.Equal(t, "sig", jwk.Use)
	require.Equal(t, "EdDSA", jwk.Alg)

	key, err := jwk.ParseKey()
	require.NoError(t, err)
	require.NotNil(t, key)
}

func TestKeySetLookupMiss(t *testing.T) {
	t.Parallel()

	ks := NewKeySet()
	_, err := ks.Get("nope")
	require.ErrorIs(t, err, ErrNoKey)
	require.False(t, ks.IsReady())
}

func TestIDClaimsCarrySessionDetails(t *testing.T) {
	t.Parallel()

	authTime := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	c := NewIDClaims(
		"user-1", "client-1", "https://auth.example", "nonce-xyz",
		[]string{"pwd", "mfa"}, "urn:acr:basic",
		authTime, time.Now(), time.Hour,
	)

	require.Equal(t, "nonce-xyz", c.Nonce)
	require.Equal(t, []string{"pwd", "mfa"}, c.AMR)
	require.Equal(t, "urn:acr:basic", c.ACR)
	require.Equal(t, authTime.Unix(), c.AuthTime)
}
