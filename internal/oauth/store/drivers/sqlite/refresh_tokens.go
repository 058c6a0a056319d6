package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/sableauth/sable/internal/oauth/domain"
	"github.com/sableauth/sable/internal/oauth/store"
)

type refreshTokensRepo struct {
	db *sql.DB
}

func (r *refreshTokensRepo) GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, token_hash, is_revoked, client_id, user_id, scopes,
		       issued_at, expires_at, valid_after, created_at, updated_at
		FROM refresh_tokens WHERE token_hash = ?`, hash)

	var (
		t      domain.RefreshToken
		userID sql.NullString
		scopes string
	)
	err := row.Scan(
		&t.ID, &t.TokenHash, &t.IsRevoked, &t.ClientID, &userID, &scopes,
		&t.IssuedAt, &t.ExpiresAt, &t.ValidAfter, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}

	t.UserID = mapNullString(userID)
	t.Scopes = splitFields(scopes)
	return t, nil
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	return createRefreshToken(ctx, r.db, t)
}

func (r *refreshTokensRepo) RevokeRefreshToken(ctx context.Context, hash string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE refresh_tokens
		SET is_revoked = TRUE, updated_at = ?
		WHERE token_hash = ?`, time.Now().UTC(), hash)
	return err
}

// RotateRefreshToken revokes the old token and persists its replacement in
// one transaction, so a crash can't leave both live.
func (r *refreshTokensRepo) RotateRefreshToken(ctx context.Context, oldHash string, replacement domain.RefreshToken) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		UPDATE refresh_tokens
		SET is_revoked = TRUE, updated_at = ?
		WHERE token_hash = ?`, time.Now().UTC(), oldHash); err != nil {
		return err
	}

	if err := createRefreshToken(ctx, tx, replacement); err != nil {
		return err
	}

	return tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func createRefreshToken(ctx context.Context, db execer, t domain.RefreshToken) error {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (
			id, token_hash, is_revoked, client_id, user_id, scopes,
			issued_at, expires_at, valid_after, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.TokenHash, t.IsRevoked, t.ClientID, mapStringNull(t.UserID),
		joinFields(t.Scopes), t.IssuedAt, t.ExpiresAt, t.ValidAfter,
		t.CreatedAt, t.UpdatedAt,
	)
	return err
}

var _ store.RefreshTokenRotator = (*refreshTokensRepo)(nil)
