package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sableauth/sable/internal/oauth/domain"
	"github.com/sableauth/sable/internal/oauth/store"
	"github.com/sableauth/sable/pkg/cryptox"
	"github.com/sableauth/sable/pkg/idx"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func seedClient(t *testing.T, s *Store) domain.Client {
	t.Helper()

	c := domain.Client{
		ID:           idx.New().String(),
		Name:         "cli",
		Secret:       "s3cret",
		RedirectURIs: []string{"https://app.example/cb"},
		GrantTypes:   []domain.GrantType{domain.GrantAuthorizationCode, domain.GrantRefreshToken},
		Scopes:       []string{"openid", "profile"},
	}
	require.NoError(t, s.Clients().CreateClient(context.Background(), c))
	return c
}

func seedUser(t *testing.T, s *Store, password string) domain.User {
	t.Helper()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	u := domain.User{
		ID:           idx.New().String(),
		Username:     "alice",
		PasswordHash: hash,
	}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

func TestClientsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := seedClient(t, s)

	got, err := s.Clients().GetClientByID(ctx, want.ID)
	require.NoError(t, err)

	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Secret, got.Secret)
	assert.Equal(t, want.RedirectURIs, got.RedirectURIs)
	assert.Equal(t, want.GrantTypes, got.GrantTypes)
	assert.Equal(t, want.Scopes, got.Scopes)
	assert.Nil(t, got.SecretExpiresAt)

	_, err = s.Clients().GetClientByID(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestResourceOwnerCredentialFinder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	finder, ok := s.Users().(store.ResourceOwnerCredentialFinder)
	require.True(t, ok)

	u := seedUser(t, s, "hunter2")

	got, err := finder.FindByResourceOwnerCredentials(ctx, u.Username, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	// A bad password and an unknown username look identical.
	_, err = finder.FindByResourceOwnerCredentials(ctx, u.Username, "wrong")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = finder.FindByResourceOwnerCredentials(ctx, "nobody", "hunter2")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAuthorizationCodeRevocation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	client := seedClient(t, s)
	user := seedUser(t, s, "pw")

	now := time.Now().UTC().Truncate(time.Second)
	code := domain.AuthorizationCode{
		CodeHash:    cryptox.FingerprintToken("raw-code"),
		IssuedAt:    now,
		ExpiresAt:   now.Add(time.Minute),
		ValidAfter:  now,
		ClientID:    client.ID,
		UserID:      user.ID,
		Scopes:      []string{"openid"},
		RedirectURI: "https://app.example/cb",
		Session: domain.Session{
			AMR:      []string{"pwd", "otp"},
			ACR:      "urn:example:loa2",
			AuthTime: now,
		},
	}
	require.NoError(t, s.AuthorizationCodes().CreateAuthorizationCode(ctx, code))

	got, err := s.AuthorizationCodes().GetAuthorizationCodeByHash(ctx, code.CodeHash)
	require.NoError(t, err)
	assert.False(t, got.IsRevoked)
	assert.Equal(t, code.Session.AMR, got.Session.AMR)
	assert.Equal(t, code.Session.ACR, got.Session.ACR)

	require.NoError(t, s.AuthorizationCodes().RevokeAuthorizationCode(ctx, code.CodeHash))
	require.NoError(t, s.AuthorizationCodes().RevokeAuthorizationCode(ctx, code.CodeHash))

	got, err = s.AuthorizationCodes().GetAuthorizationCodeByHash(ctx, code.CodeHash)
	require.NoError(t, err)
	assert.True(t, got.IsRevoked)
}

func TestDeviceCodeLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	client := seedClient(t, s)
	user := seedUser(t, s, "pw")

	now := time.Now().UTC().Truncate(time.Second)
	d := domain.DeviceCode{
		ID:        idx.New().String(),
		UserCode:  "BDWP-HQPK",
		ClientID:  client.ID,
		Scopes:    []string{"openid"},
		IssuedAt:  now,
		ExpiresAt: now.Add(10 * time.Minute),
	}
	require.NoError(t, s.DeviceCodes().CreateDeviceCode(ctx, d))

	got, err := s.DeviceCodes().GetDeviceCodeByID(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, got.Pending())
	assert.False(t, got.Denied())

	approved := true
	got.Authorized = &approved
	got.UserID = user.ID
	require.NoError(t, s.DeviceCodes().SaveDeviceCode(ctx, got))

	got, err = s.DeviceCodes().GetDeviceCodeByID(ctx, d.ID)
	require.NoError(t, err)
	assert.False(t, got.Pending())
	require.NotNil(t, got.Authorized)
	assert.True(t, *got.Authorized)
	assert.Equal(t, user.ID, got.UserID)
}

func TestShouldSlowDown(t *testing.T) {
	s := newTestStore(t)
	s.MinPollInterval = 5 * time.Second
	ctx := context.Background()

	client := seedClient(t, s)

	now := time.Now().UTC().Truncate(time.Second)
	d := domain.DeviceCode{
		ID:        idx.New().String(),
		UserCode:  "TKQR-MMZX",
		ClientID:  client.ID,
		IssuedAt:  now,
		ExpiresAt: now.Add(10 * time.Minute),
	}
	require.NoError(t, s.DeviceCodes().CreateDeviceCode(ctx, d))

	repo := s.DeviceCodes()

	// First poll: no prior stamp, never slow_down.
	slow, err := repo.ShouldSlowDown(ctx, d, now)
	require.NoError(t, err)
	assert.False(t, slow)

	// Second poll one second later, against the freshly stamped record.
	d2, err := repo.GetDeviceCodeByID(ctx, d.ID)
	require.NoError(t, err)
	slow, err = repo.ShouldSlowDown(ctx, d2, now.Add(time.Second))
	require.NoError(t, err)
	assert.True(t, slow)

	// Past the interval the stamp no longer trips.
	d3, err := repo.GetDeviceCodeByID(ctx, d.ID)
	require.NoError(t, err)
	slow, err = repo.ShouldSlowDown(ctx, d3, now.Add(time.Second).Add(6*time.Second))
	require.NoError(t, err)
	assert.False(t, slow)
}

func TestRefreshTokenRotation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	client := seedClient(t, s)
	user := seedUser(t, s, "pw")

	rotator, ok := s.RefreshTokens().(store.RefreshTokenRotator)
	require.True(t, ok)

	now := time.Now().UTC().Truncate(time.Second)
	old := domain.RefreshToken{
		ID:         idx.New().String(),
		TokenHash:  cryptox.FingerprintToken("old"),
		ClientID:   client.ID,
		UserID:     user.ID,
		Scopes:     []string{"openid"},
		IssuedAt:   now,
		ExpiresAt:  now.Add(time.Hour),
		ValidAfter: now,
	}
	require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, old))

	replacement := old
	replacement.ID = idx.New().String()
	replacement.TokenHash = cryptox.FingerprintToken("new")
	require.NoError(t, rotator.RotateRefreshToken(ctx, old.TokenHash, replacement))

	got, err := s.RefreshTokens().GetRefreshTokenByHash(ctx, old.TokenHash)
	require.NoError(t, err)
	assert.True(t, got.IsRevoked)

	got, err = s.RefreshTokens().GetRefreshTokenByHash(ctx, replacement.TokenHash)
	require.NoError(t, err)
	assert.False(t, got.IsRevoked)
	assert.Equal(t, replacement.ID, got.ID)
}

func TestAccessTokenInsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	client := seedClient(t, s)

	now := time.Now().UTC().Truncate(time.Second)
	err := s.AccessTokens().CreateAccessToken(ctx, domain.AccessToken{
		ID:        idx.New().String(),
		ClientID:  client.ID,
		Scopes:    []string{"openid"},
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	})
	require.NoError(t, err)
}
