package app

import (
	"context"
	"time"

	"github.com/sableauth/sable/internal/oauth/domain"
	"github.com/sableauth/sable/internal/oauth/grant"
	"github.com/sableauth/sable/pkg/jwtx"
)

// idTokenIssuer mints OpenID Connect ID tokens for authorization-code
// exchanges that were granted the openid scope. The nonce and the session
// details recorded at login time are replayed into the token.
type idTokenIssuer struct {
	issuer  string
	ttl     time.Duration
	signers grant.SignerSource
}

var _ grant.IDTokenIssuer = (*idTokenIssuer)(nil)

func (i *idTokenIssuer) GenerateIDToken(
	_ context.Context,
	code domain.AuthorizationCode,
	client domain.Client,
	_ []string,
) (string, error) {
	claims := jwtx.NewIDClaims(
		code.UserID,
		client.ID,
		i.issuer,
		code.Nonce,
		code.Session.AMR,
		code.Session.ACR,
		code.Session.AuthTime,
		time.Now(),
		i.ttl,
	)
	return i.signers.GetSigner().Sign(claims)
}
