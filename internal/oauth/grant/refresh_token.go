package grant

import (
	"context"
	"errors"
	"slices"

	"github.com/sableauth/sable/internal/oauth/domain"
	"github.com/sableauth/sable/internal/oauth/store"
	"github.com/sableauth/sable/pkg/cryptox"
	"github.com/sableauth/sable/pkg/idx"
)

func (s *Server) validateRefreshToken(ctx context.Context, base tokenContext) (refreshTokenContext, error) {
	if base.req.RefreshToken == "" {
		return refreshTokenContext{}, invalidRequest(`Missing required parameter "refresh_token".`)
	}

	token, err := s.store.RefreshTokens().GetRefreshTokenByHash(ctx, cryptox.FingerprintToken(base.req.RefreshToken))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return refreshTokenContext{}, invalidGrant("Invalid Refresh Token.")
		}
		return refreshTokenContext{}, err
	}

	// An empty scope request reuses the token's original scopes verbatim.
	// A narrowing request must stay inside them; a scope the client is
	// allowed but the token never carried is still refused.
	scopes := slices.Clone(token.Scopes)
	if base.req.Scope != "" {
		requested, err := s.scopes.resolve(base.client, base.req.Scope)
		if err != nil {
			return refreshTokenContext{}, err
		}
		for _, sc := range requested {
			if !slices.Contains(token.Scopes, sc) {
				return refreshTokenContext{}, invalidGrant("The scope " + quote(sc) + " was not previously granted.")
			}
		}
		scopes = requested
	}

	return refreshTokenContext{
		tokenContext: base,
		token:        token,
		presented:    base.req.RefreshToken,
		scopes:       scopes,
	}, nil
}

func (s *Server) handleRefreshToken(ctx context.Context, c refreshTokenContext) (*TokenResponse, error) {
	now := s.now().UTC()

	if c.token.ClientID != c.client.ID {
		return nil, invalidGrant("Mismatching Client Identifier.")
	}
	if now.Before(c.token.ValidAfter) {
		return nil, invalidGrant("Refresh Token not yet valid.")
	}
	if now.After(c.token.ExpiresAt) {
		return nil, invalidGrant("Expired Refresh Token.")
	}
	if c.token.IsRevoked {
		return nil, invalidGrant("Revoked Refresh Token.")
	}

	record, signed, err := s.issueAccessToken(ctx, c.client, c.token.UserID, c.scopes)
	if err != nil {
		return nil, err
	}
	resp := s.tokenResponse(record, signed, c.scopes)

	if s.cfg.RotateRefreshTokens {
		rotated, err := s.rotateRefreshToken(ctx, c.token)
		if err != nil {
			return nil, err
		}
		resp.RefreshToken = rotated
	} else {
		resp.RefreshToken = c.presented
	}

	return resp, nil
}

// rotateRefreshToken replaces the presented token with a fresh one carrying
// the same grant. The replacement keeps the original scope set so later
// refreshes can still narrow within it.
func (s *Server) rotateRefreshToken(ctx context.Context, old domain.RefreshToken) (string, error) {
	opaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", err
	}

	now := s.now().UTC()
	replacement := domain.RefreshToken{
		ID:         idx.New().String(),
		TokenHash:  cryptox.FingerprintToken(opaque),
		ClientID:   old.ClientID,
		UserID:     old.UserID,
		Scopes:     old.Scopes,
		IssuedAt:   now,
		ExpiresAt:  now.Add(s.cfg.RefreshTokenTTL),
		ValidAfter: now,
	}
	if err := s.rotator.RotateRefreshToken(ctx, old.TokenHash, replacement); err != nil {
		return "", err
	}
	return opaque, nil
}
