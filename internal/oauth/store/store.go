// Package store declares the persistence contracts the token engine
// consumes. Concrete drivers (sqlite today) implement them. The driver is
// the concurrency boundary: a revocation or device-authorization flip must
// be visible to the next lookup of the same entity.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/sableauth/sable/internal/oauth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface, split into per-entity
// repositories.
type Store interface {
	Clients() Clients
	Users() Users
	AuthorizationCodes() AuthorizationCodes
	DeviceCodes() DeviceCodes
	RefreshTokens() RefreshTokens
	AccessTokens() AccessTokens

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error
}

type Clients interface {
	// GetClientByID fetches a registered client.
	GetClientByID(ctx context.Context, id string) (domain.Client, error)

	// CreateClient inserts a new client registration.
	CreateClient(ctx context.Context, c domain.Client) error
}

type Users interface {
	// GetUserByID returns a user by id. The JWT-bearer grant resolves the
	// assertion's sub claim through here.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// CreateUser inserts a new user.
	CreateUser(ctx context.Context, u domain.User) error
}

// ResourceOwnerCredentialFinder is the optional capability the password
// grant needs. Stores that can't verify credentials simply don't implement
// it, and the grant refuses to construct.
type ResourceOwnerCredentialFinder interface {
	// FindByResourceOwnerCredentials returns the user matching the
	// credentials, or ErrNotFound when either the user is unknown or the
	// password does not verify.
	FindByResourceOwnerCredentials(ctx context.Context, username, password string) (domain.User, error)
}

type AuthorizationCodes interface {
	// GetAuthorizationCodeByHash resolves a code by the fingerprint of its
	// opaque value.
	GetAuthorizationCodeByHash(ctx context.Context, hash string) (domain.AuthorizationCode, error)

	// RevokeAuthorizationCode marks the code revoked. Idempotent.
	RevokeAuthorizationCode(ctx context.Context, hash string) error

	// CreateAuthorizationCode inserts a code minted by the authorization
	// flow.
	CreateAuthorizationCode(ctx context.Context, c domain.AuthorizationCode) error
}

type DeviceCodes interface {
	// GetDeviceCodeByID resolves a device code by the handle the device
	// polls with.
	GetDeviceCodeByID(ctx context.Context, id string) (domain.DeviceCode, error)

	// SaveDeviceCode persists the mutable fields (authorized flag, user,
	// last poll time).
	SaveDeviceCode(ctx context.Context, d domain.DeviceCode) error

	// ShouldSlowDown records a poll against the code and reports whether
	// the device is polling faster than the minimum interval.
	ShouldSlowDown(ctx context.Context, d domain.DeviceCode, now time.Time) (bool, error)

	// CreateDeviceCode inserts a code minted by the device authorization
	// flow.
	CreateDeviceCode(ctx context.Context, d domain.DeviceCode) error
}

type RefreshTokens interface {
	// GetRefreshTokenByHash resolves a token by the fingerprint of its
	// opaque value.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// CreateRefreshToken stores a new refresh token record.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// RevokeRefreshToken marks the token revoked. Idempotent.
	RevokeRefreshToken(ctx context.Context, hash string) error
}

// RefreshTokenRotator is the optional rotation capability. When rotation is
// enabled server-wide the refresh grant requires it at construction time.
type RefreshTokenRotator interface {
	// RotateRefreshToken atomically revokes old and persists replacement.
	RotateRefreshToken(ctx context.Context, oldHash string, replacement domain.RefreshToken) error
}

type AccessTokens interface {
	// CreateAccessToken persists the record behind a freshly issued access
	// token.
	CreateAccessToken(ctx context.Context, t domain.AccessToken) error
}
