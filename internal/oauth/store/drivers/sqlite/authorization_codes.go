package sqlite

import (
	"context"
	"database/sql"

	"github.com/sableauth/sable/internal/oauth/domain"
)

type authorizationCodesRepo struct {
	db *sql.DB
}

func (r *authorizationCodesRepo) GetAuthorizationCodeByHash(ctx context.Context, hash string) (domain.AuthorizationCode, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT code_hash, is_revoked, issued_at, expires_at, valid_after,
		       client_id, user_id, scopes,
		       redirect_uri, code_challenge, code_challenge_method, nonce,
		       session_amr, session_acr, session_auth_time
		FROM authorization_codes WHERE code_hash = ?`, hash)

	var (
		c        domain.AuthorizationCode
		scopes   string
		amr      string
		authTime sql.NullTime
	)
	err := row.Scan(
		&c.CodeHash, &c.IsRevoked, &c.IssuedAt, &c.ExpiresAt, &c.ValidAfter,
		&c.ClientID, &c.UserID, &scopes,
		&c.RedirectURI, &c.CodeChallenge, &c.CodeChallengeMethod, &c.Nonce,
		&amr, &c.Session.ACR, &authTime,
	)
	if err != nil {
		return domain.AuthorizationCode{}, mapNotFound(err)
	}

	c.Scopes = splitFields(scopes)
	c.Session.AMR = splitFields(amr)
	if authTime.Valid {
		c.Session.AuthTime = authTime.Time
	}
	return c, nil
}

func (r *authorizationCodesRepo) RevokeAuthorizationCode(ctx context.Context, hash string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE authorization_codes SET is_revoked = TRUE WHERE code_hash = ?`, hash)
	return err
}

func (r *authorizationCodesRepo) CreateAuthorizationCode(ctx context.Context, c domain.AuthorizationCode) error {
	var authTime sql.NullTime
	if !c.Session.AuthTime.IsZero() {
		authTime = sql.NullTime{Time: c.Session.AuthTime, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO authorization_codes (
			code_hash, is_revoked, issued_at, expires_at, valid_after,
			client_id, user_id, scopes,
			redirect_uri, code_challenge, code_challenge_method, nonce,
			session_amr, session_acr, session_auth_time
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.CodeHash, c.IsRevoked, c.IssuedAt, c.ExpiresAt, c.ValidAfter,
		c.ClientID, c.UserID, joinFields(c.Scopes),
		c.RedirectURI, c.CodeChallenge, c.CodeChallengeMethod, c.Nonce,
		joinFields(c.Session.AMR), c.Session.ACR, authTime,
	)
	return err
}
