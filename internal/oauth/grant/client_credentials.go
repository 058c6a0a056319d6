package grant

import "context"

func (s *Server) validateClientCredentials(base tokenContext) (clientCredentialsContext, error) {
	scopes, err := s.scopes.resolve(base.client, base.req.Scope)
	if err != nil {
		return clientCredentialsContext{}, err
	}
	return clientCredentialsContext{tokenContext: base, scopes: scopes}, nil
}

// handleClientCredentials issues a client-only access token. No user is
// involved and no refresh token is ever attached: the client can simply
// authenticate again.
func (s *Server) handleClientCredentials(ctx context.Context, c clientCredentialsContext) (*TokenResponse, error) {
	record, signed, err := s.issueAccessToken(ctx, c.client, "", c.scopes)
	if err != nil {
		return nil, err
	}
	return s.tokenResponse(record, signed, c.scopes), nil
}
