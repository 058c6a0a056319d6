package grant

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sableauth/sable/internal/oauth/domain"
	"github.com/sableauth/sable/pkg/cryptox"
	"github.com/sableauth/sable/pkg/idx"
)

// seedRefreshToken stores a refresh token and returns the opaque value the
// client would present.
func (e *testEnv) seedRefreshToken(t *testing.T, client domain.Client, user domain.User, scopes []string, mutate ...func(*domain.RefreshToken)) string {
	t.Helper()

	raw := cryptox.MustGenerateToken(cryptox.TokenSize256)
	now := time.Now().UTC()
	token := domain.RefreshToken{
		ID:         idx.New().String(),
		TokenHash:  cryptox.FingerprintToken(raw),
		ClientID:   client.ID,
		UserID:     user.ID,
		Scopes:     scopes,
		IssuedAt:   now,
		ExpiresAt:  now.Add(time.Hour),
		ValidAfter: now.Add(-time.Second),
	}
	for _, m := range mutate {
		m(&token)
	}
	require.NoError(t, e.store.RefreshTokens().CreateRefreshToken(context.Background(), token))
	return raw
}

func refreshReq(client domain.Client, token, scope string) Request {
	return Request{
		GrantType:    "refresh_token",
		ClientID:     client.ID,
		ClientSecret: client.Secret,
		RefreshToken: token,
		Scope:        scope,
	}
}

func refreshClient(t *testing.T, env *testEnv) domain.Client {
	t.Helper()
	return env.createClient(t, domain.Client{
		Secret:     "topsecret",
		GrantTypes: []domain.GrantType{domain.GrantRefreshToken},
		Scopes:     []string{"foo", "bar", "baz"},
	})
}

func TestRefreshTokenWithoutRotation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	client := refreshClient(t, env)
	user := env.createUser(t, "alice", "hunter2")
	raw := env.seedRefreshToken(t, client, user, []string{"foo", "bar"})

	resp, err := env.server.Exchange(ctx, refreshReq(client, raw, ""))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "foo bar", resp.Scope)

	// Rotation is off, so the same token comes back and keeps working.
	assert.Equal(t, raw, resp.RefreshToken)

	_, err = env.server.Exchange(ctx, refreshReq(client, raw, ""))
	require.NoError(t, err)
}

func TestRefreshTokenWithRotation(t *testing.T) {
	env := newTestEnv(t, func(c *Config) { c.RotateRefreshTokens = true })
	ctx := context.Background()

	client := refreshClient(t, env)
	user := env.createUser(t, "alice", "hunter2")
	raw := env.seedRefreshToken(t, client, user, []string{"foo", "bar"})

	resp, err := env.server.Exchange(ctx, refreshReq(client, raw, ""))
	require.NoError(t, err)
	require.NotEmpty(t, resp.RefreshToken)
	assert.NotEqual(t, raw, resp.RefreshToken)

	// The old token is revoked by the rotation.
	_, err = env.server.Exchange(ctx, refreshReq(client, raw, ""))
	requireGrantError(t, err, CodeInvalidGrant, "Revoked Refresh Token.")

	// The rotated token works.
	_, err = env.server.Exchange(ctx, refreshReq(client, resp.RefreshToken, ""))
	require.NoError(t, err)
}

func TestRefreshTokenScopeSubset(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	client := refreshClient(t, env)
	user := env.createUser(t, "alice", "hunter2")
	raw := env.seedRefreshToken(t, client, user, []string{"foo"})

	t.Run("narrowing within the original set", func(t *testing.T) {
		resp, err := env.server.Exchange(ctx, refreshReq(client, raw, "foo"))
		require.NoError(t, err)
		assert.Equal(t, "foo", resp.Scope)
	})

	t.Run("scope allowed for the client but never granted", func(t *testing.T) {
		// "bar" is in the client's registered set, yet the token never
		// carried it.
		_, err := env.server.Exchange(ctx, refreshReq(client, raw, "bar"))
		requireGrantError(t, err, CodeInvalidGrant, `The scope "bar" was not previously granted.`)
	})

	t.Run("empty request reuses the original scopes", func(t *testing.T) {
		resp, err := env.server.Exchange(ctx, refreshReq(client, raw, ""))
		require.NoError(t, err)
		assert.Equal(t, "foo", resp.Scope)
	})
}

func TestRefreshTokenChecks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	client := refreshClient(t, env)
	other := env.createClient(t, domain.Client{
		Secret:     "othersecret",
		GrantTypes: []domain.GrantType{domain.GrantRefreshToken},
		Scopes:     []string{"foo"},
	})
	user := env.createUser(t, "alice", "hunter2")

	t.Run("missing parameter", func(t *testing.T) {
		_, err := env.server.Exchange(ctx, refreshReq(client, "", ""))
		requireGrantError(t, err, CodeInvalidRequest, "")
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := env.server.Exchange(ctx, refreshReq(client, "no-such-token", ""))
		requireGrantError(t, err, CodeInvalidGrant, "Invalid Refresh Token.")
	})

	t.Run("mismatching client", func(t *testing.T) {
		raw := env.seedRefreshToken(t, other, user, []string{"foo"})
		_, err := env.server.Exchange(ctx, refreshReq(client, raw, ""))
		requireGrantError(t, err, CodeInvalidGrant, "Mismatching Client Identifier.")
	})

	t.Run("not yet valid", func(t *testing.T) {
		raw := env.seedRefreshToken(t, client, user, []string{"foo"}, func(tk *domain.RefreshToken) {
			tk.ValidAfter = time.Now().UTC().Add(time.Hour)
		})
		_, err := env.server.Exchange(ctx, refreshReq(client, raw, ""))
		requireGrantError(t, err, CodeInvalidGrant, "Refresh Token not yet valid.")
	})

	t.Run("expired", func(t *testing.T) {
		raw := env.seedRefreshToken(t, client, user, []string{"foo"}, func(tk *domain.RefreshToken) {
			tk.ExpiresAt = time.Now().UTC().Add(-time.Minute)
		})
		_, err := env.server.Exchange(ctx, refreshReq(client, raw, ""))
		requireGrantError(t, err, CodeInvalidGrant, "Expired Refresh Token.")
	})

	t.Run("revoked", func(t *testing.T) {
		raw := env.seedRefreshToken(t, client, user, []string{"foo"}, func(tk *domain.RefreshToken) {
			tk.IsRevoked = true
		})
		_, err := env.server.Exchange(ctx, refreshReq(client, raw, ""))
		requireGrantError(t, err, CodeInvalidGrant, "Revoked Refresh Token.")
	})
}

func TestRotationRequiresCapability(t *testing.T) {
	// The sqlite store rotates, so constructing with rotation on works.
	env := newTestEnv(t, func(c *Config) { c.RotateRefreshTokens = true })
	assert.NotNil(t, env.server.rotator)
}
