package sqlite

import (
	"context"
	"database/sql"

	"github.com/sableauth/sable/internal/oauth/domain"
)

type accessTokensRepo struct {
	db *sql.DB
}

func (r *accessTokensRepo) CreateAccessToken(ctx context.Context, t domain.AccessToken) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO access_tokens (id, client_id, user_id, scopes, issued_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.ClientID, mapStringNull(t.UserID), joinFields(t.Scopes),
		t.IssuedAt, t.ExpiresAt,
	)
	return err
}
