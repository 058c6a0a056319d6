package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/sableauth/sable/internal/oauth/domain"
)

type clientsRepo struct {
	db *sql.DB
}

func (r *clientsRepo) GetClientByID(ctx context.Context, id string) (domain.Client, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, secret, secret_expires_at, redirect_uris,
		       grant_types, scopes, jwks, jwks_uri, created_at, updated_at
		FROM clients WHERE id = ?`, id)

	var (
		c               domain.Client
		secret          sql.NullString
		secretExpiresAt sql.NullTime
		redirectURIs    string
		grantTypes      string
		scopes          string
		jwks            sql.NullString
		jwksURI         sql.NullString
	)
	err := row.Scan(
		&c.ID, &c.Name, &secret, &secretExpiresAt, &redirectURIs,
		&grantTypes, &scopes, &jwks, &jwksURI, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return domain.Client{}, mapNotFound(err)
	}

	c.Secret = mapNullString(secret)
	c.SecretExpiresAt = mapNullTimePtr(secretExpiresAt)
	c.RedirectURIs = splitFields(redirectURIs)
	c.GrantTypes = splitGrantTypes(grantTypes)
	c.Scopes = splitFields(scopes)
	c.JWKS = mapNullString(jwks)
	c.JWKSURI = mapNullString(jwksURI)

	return c, nil
}

func (r *clientsRepo) CreateClient(ctx context.Context, c domain.Client) error {
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clients (
			id, name, secret, secret_expires_at, redirect_uris,
			grant_types, scopes, jwks, jwks_uri, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, mapStringNull(c.Secret), mapOptionalTime(c.SecretExpiresAt),
		joinFields(c.RedirectURIs), joinGrantTypes(c.GrantTypes), joinFields(c.Scopes),
		mapStringNull(c.JWKS), mapStringNull(c.JWKSURI), c.CreatedAt, c.UpdatedAt,
	)
	return err
}
