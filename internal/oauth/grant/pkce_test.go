package grant

import (
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPKCEPlain(t *testing.T) {
	v, ok := pkceVerifierFor("plain")
	require.True(t, ok)

	assert.True(t, v.verify("abc123", "abc123"))
	assert.False(t, v.verify("abc123", "other"))
}

func TestPKCES256(t *testing.T) {
	v, ok := pkceVerifierFor("S256")
	require.True(t, ok)

	verifier := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	sum := sha256.Sum256([]byte(verifier))
	challenge := base64.RawURLEncoding.EncodeToString(sum[:])

	assert.True(t, v.verify(verifier, challenge))
	assert.False(t, v.verify("wrong-verifier", challenge))
	assert.False(t, v.verify(verifier, verifier))
}

func TestPKCEDefaultsToPlain(t *testing.T) {
	v, ok := pkceVerifierFor("")
	require.True(t, ok)
	assert.True(t, v.verify("same", "same"))
}

func TestPKCEUnknownMethod(t *testing.T) {
	_, ok := pkceVerifierFor("S512")
	assert.False(t, ok)
}
