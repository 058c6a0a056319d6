package grant

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
)

// PKCE challenge methods (RFC 7636 §4.3).
const (
	PKCEMethodPlain = "plain"
	PKCEMethodS256  = "S256"
)

// pkceVerifier checks a code_verifier against the challenge stored with the
// authorization code.
type pkceVerifier interface {
	verify(verifier, challenge string) bool
}

// pkceVerifierFor selects the verifier by the stored challenge method. An
// absent method means plain (RFC 7636 §4.3). Unknown methods get no
// verifier.
func pkceVerifierFor(method string) (pkceVerifier, bool) {
	switch method {
	case "", PKCEMethodPlain:
		return plainPKCE{}, true
	case PKCEMethodS256:
		return s256PKCE{}, true
	default:
		return nil, false
	}
}

type plainPKCE struct{}

func (plainPKCE) verify(verifier, challenge string) bool {
	return subtle.ConstantTimeCompare([]byte(verifier), []byte(challenge)) == 1
}

type s256PKCE struct{}

func (s256PKCE) verify(verifier, challenge string) bool {
	sum := sha256.Sum256([]byte(verifier))
	derived := base64.RawURLEncoding.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(derived), []byte(challenge)) == 1
}
