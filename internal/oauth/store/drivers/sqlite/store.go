// Package sqlite implements the store contracts on an embedded SQLite
// database. SQLite serializes writers, which is what gives concurrent
// device-code pollers a consistent view of revocations and authorization
// decisions.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/sableauth/sable/internal/oauth/domain"
	"github.com/sableauth/sable/internal/oauth/store"
	_ "modernc.org/sqlite"
)

// DefaultMinPollInterval is the minimum spacing between device-code polls
// before the server answers slow_down.
const DefaultMinPollInterval = 5 * time.Second

type Store struct {
	db  *sql.DB
	dsn string

	// MinPollInterval drives ShouldSlowDown. Zero means the default.
	MinPollInterval time.Duration
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Enforce FKs
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, dsn: dsn}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Clients() store.Clients                       { return &clientsRepo{db: s.db} }
func (s *Store) Users() store.Users                           { return &usersRepo{db: s.db} }
func (s *Store) AuthorizationCodes() store.AuthorizationCodes { return &authorizationCodesRepo{db: s.db} }
func (s *Store) DeviceCodes() store.DeviceCodes {
	interval := s.MinPollInterval
	if interval <= 0 {
		interval = DefaultMinPollInterval
	}
	return &deviceCodesRepo{db: s.db, minPollInterval: interval}
}
func (s *Store) RefreshTokens() store.RefreshTokens { return &refreshTokensRepo{db: s.db} }
func (s *Store) AccessTokens() store.AccessTokens   { return &accessTokensRepo{db: s.db} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func joinFields(ss []string) string { return strings.Join(ss, " ") }

func splitFields(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Fields(s)
}

func joinGrantTypes(gs []domain.GrantType) string {
	names := make([]string, len(gs))
	for i, g := range gs {
		names[i] = string(g)
	}
	return strings.Join(names, " ")
}

func splitGrantTypes(s string) []domain.GrantType {
	fields := splitFields(s)
	out := make([]domain.GrantType, 0, len(fields))
	for _, f := range fields {
		if g, ok := domain.ParseGrantType(f); ok {
			out = append(out, g)
		}
	}
	return out
}

func mapNullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func mapStringNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func mapNullTimePtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		val := nt.Time
		return &val
	}
	return nil
}

func mapOptionalTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func mapNullBoolPtr(nb sql.NullBool) *bool {
	if nb.Valid {
		val := nb.Bool
		return &val
	}
	return nil
}

func mapOptionalBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}
