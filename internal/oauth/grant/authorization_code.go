package grant

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/url"
	"slices"

	"github.com/sableauth/sable/internal/oauth/store"
	"github.com/sableauth/sable/pkg/cryptox"
)

func (s *Server) validateAuthorizationCode(ctx context.Context, base tokenContext) (authorizationCodeContext, error) {
	req := base.req
	if req.Code == "" {
		return authorizationCodeContext{}, invalidRequest(`Missing required parameter "code".`)
	}
	if req.RedirectURI == "" {
		return authorizationCodeContext{}, invalidRequest(`Missing required parameter "redirect_uri".`)
	}
	if req.CodeVerifier == "" {
		return authorizationCodeContext{}, invalidRequest(`Missing required parameter "code_verifier".`)
	}

	code, err := s.store.AuthorizationCodes().GetAuthorizationCodeByHash(ctx, cryptox.FingerprintToken(req.Code))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return authorizationCodeContext{}, invalidGrant("Invalid Authorization Code.")
		}
		return authorizationCodeContext{}, err
	}

	u, err := url.Parse(req.RedirectURI)
	if err != nil || !u.IsAbs() || u.Fragment != "" {
		return authorizationCodeContext{}, invalidRequest("Invalid Redirect URI.")
	}
	if !base.client.AllowsRedirectURI(req.RedirectURI) {
		return authorizationCodeContext{}, accessDenied("The Redirect URI is not registered for the Client.")
	}

	return authorizationCodeContext{
		tokenContext: base,
		code:         code,
		redirectURI:  req.RedirectURI,
		codeVerifier: req.CodeVerifier,
	}, nil
}

// handleAuthorizationCode exchanges a code for tokens. Whatever happens,
// the code is revoked on the way out, so a code that failed any check can
// never be replayed.
func (s *Server) handleAuthorizationCode(ctx context.Context, c authorizationCodeContext) (_ *TokenResponse, err error) {
	defer func() {
		if revokeErr := s.store.AuthorizationCodes().RevokeAuthorizationCode(ctx, c.code.CodeHash); revokeErr != nil {
			s.log.ErrorContext(ctx, "failed to revoke authorization code", "err", revokeErr)
			if err == nil {
				err = revokeErr
			}
		}
	}()

	now := s.now().UTC()

	if subtle.ConstantTimeCompare([]byte(c.code.ClientID), []byte(c.client.ID)) != 1 {
		return nil, invalidGrant("Mismatching Client Identifier.")
	}
	if now.Before(c.code.ValidAfter) {
		return nil, invalidGrant("Authorization Code not yet valid.")
	}
	if now.After(c.code.ExpiresAt) {
		return nil, invalidGrant("Expired Authorization Code.")
	}
	if c.code.IsRevoked {
		return nil, invalidGrant("Revoked Authorization Code.")
	}
	if subtle.ConstantTimeCompare([]byte(c.code.RedirectURI), []byte(c.redirectURI)) != 1 {
		return nil, invalidGrant("Mismatching Redirect URI.")
	}

	verifier, ok := pkceVerifierFor(c.code.CodeChallengeMethod)
	if !ok || !verifier.verify(c.codeVerifier, c.code.CodeChallenge) {
		return nil, invalidGrant("Invalid PKCE Code Challenge.")
	}

	record, signed, err := s.issueAccessToken(ctx, c.client, c.code.UserID, c.code.Scopes)
	if err != nil {
		return nil, err
	}
	resp := s.tokenResponse(record, signed, c.code.Scopes)

	if clientMayRefresh(c.client) {
		refresh, err := s.mintRefreshToken(ctx, c.client, c.code.UserID, c.code.Scopes)
		if err != nil {
			return nil, err
		}
		resp.RefreshToken = refresh
	}

	if s.idTokens != nil && slices.Contains(c.code.Scopes, "openid") {
		idToken, err := s.idTokens.GenerateIDToken(ctx, c.code, c.client, c.code.Scopes)
		if err != nil {
			return nil, err
		}
		resp.IDToken = idToken
	}

	return resp, nil
}
