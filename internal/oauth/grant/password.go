package grant

import (
	"context"
	"errors"

	"github.com/sableauth/sable/internal/oauth/store"
)

func (s *Server) validatePassword(ctx context.Context, base tokenContext) (passwordContext, error) {
	req := base.req
	if req.Username == "" {
		return passwordContext{}, invalidRequest(`Missing required parameter "username".`)
	}
	if req.Password == "" {
		return passwordContext{}, invalidRequest(`Missing required parameter "password".`)
	}

	user, err := s.finder.FindByResourceOwnerCredentials(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return passwordContext{}, invalidGrant("Invalid Resource Owner credentials.")
		}
		return passwordContext{}, err
	}

	scopes, err := s.scopes.resolve(base.client, req.Scope)
	if err != nil {
		return passwordContext{}, err
	}

	return passwordContext{tokenContext: base, user: user, scopes: scopes}, nil
}

func (s *Server) handlePassword(ctx context.Context, c passwordContext) (*TokenResponse, error) {
	record, signed, err := s.issueAccessToken(ctx, c.client, c.user.ID, c.scopes)
	if err != nil {
		return nil, err
	}
	resp := s.tokenResponse(record, signed, c.scopes)

	if clientMayRefresh(c.client) {
		refresh, err := s.mintRefreshToken(ctx, c.client, c.user.ID, c.scopes)
		if err != nil {
			return nil, err
		}
		resp.RefreshToken = refresh
	}

	return resp, nil
}
