package grant

import (
	"context"
	"strings"
	"time"

	"github.com/sableauth/sable/internal/oauth/domain"
	"github.com/sableauth/sable/pkg/cryptox"
	"github.com/sableauth/sable/pkg/idx"
	"github.com/sableauth/sable/pkg/jwtx"
)

// TokenResponse is the RFC 6749 §5.1 success body.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
}

// expiresIn is the whole-second ceiling of the remaining lifetime.
func expiresIn(expiresAt, now time.Time) int64 {
	d := expiresAt.Sub(now)
	if d <= 0 {
		return 0
	}
	return int64((d + time.Second - 1) / time.Second)
}

// issueAccessToken persists an access token record and signs the matching
// JWT. The record's id becomes the token's jti.
func (s *Server) issueAccessToken(ctx context.Context, client domain.Client, userID string, scopes []string) (domain.AccessToken, string, error) {
	now := s.now().UTC()
	record := domain.AccessToken{
		ID:        idx.New().String(),
		ClientID:  client.ID,
		UserID:    userID,
		Scopes:    scopes,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.cfg.AccessTokenTTL),
	}
	if err := s.store.AccessTokens().CreateAccessToken(ctx, record); err != nil {
		return domain.AccessToken{}, "", err
	}

	subject := userID
	if subject == "" {
		subject = client.ID
	}
	claims := jwtx.NewAccessClaims(
		record.ID, subject, client.ID, s.cfg.Issuer,
		scopes, now, record.ExpiresAt,
	)

	signed, err := s.signers.GetSigner().Sign(claims)
	if err != nil {
		return domain.AccessToken{}, "", err
	}
	return record, signed, nil
}

// mintRefreshToken creates and persists a fresh refresh token, returning
// the opaque wire value. Only the fingerprint is stored.
func (s *Server) mintRefreshToken(ctx context.Context, client domain.Client, userID string, scopes []string) (string, error) {
	opaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", err
	}

	now := s.now().UTC()
	record := domain.RefreshToken{
		ID:         idx.New().String(),
		TokenHash:  cryptox.FingerprintToken(opaque),
		ClientID:   client.ID,
		UserID:     userID,
		Scopes:     scopes,
		IssuedAt:   now,
		ExpiresAt:  now.Add(s.cfg.RefreshTokenTTL),
		ValidAfter: now,
	}
	if err := s.store.RefreshTokens().CreateRefreshToken(ctx, record); err != nil {
		return "", err
	}
	return opaque, nil
}

// tokenResponse assembles the §5.1 body for a freshly issued access token.
func (s *Server) tokenResponse(record domain.AccessToken, signed string, scopes []string) *TokenResponse {
	return &TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn(record.ExpiresAt, s.now().UTC()),
		Scope:       strings.Join(scopes, " "),
	}
}

// clientMayRefresh reports whether the grant may attach a refresh token for
// this client. Client credentials and jwt-bearer never call this.
func clientMayRefresh(client domain.Client) bool {
	return client.AllowsGrantType(domain.GrantRefreshToken)
}
