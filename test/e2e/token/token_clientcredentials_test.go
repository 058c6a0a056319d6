package token_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sableauth/sable/pkg/authsdk"
)

func TestClientCredentialsGrant(t *testing.T) {
	baseURL, cleanup := setupTokenContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	ctx := context.Background()

	t.Run("issues a client token", func(t *testing.T) {
		resp, err := client.ClientCredentialsGrant(ctx, seedClientID, seedClientSecret, []string{"foo", "bar"})
		require.NoError(t, err)

		require.NotEmpty(t, resp.AccessToken)
		require.Equal(t, "Bearer", resp.TokenType)
		require.Equal(t, int64(300), resp.ExpiresIn)
		require.Equal(t, "foo bar", resp.Scope)
		require.Empty(t, resp.RefreshToken, "client_credentials must not issue a refresh token")
	})

	t.Run("defaults to the client's registered scopes", func(t *testing.T) {
		resp, err := client.ClientCredentialsGrant(ctx, seedClientID, seedClientSecret, nil)
		require.NoError(t, err)
		require.Equal(t, "openid profile foo bar", resp.Scope)
	})

	t.Run("rejects a wrong secret with 401", func(t *testing.T) {
		_, err := client.ClientCredentialsGrant(ctx, seedClientID, "wrong-secret", nil)
		oauthErr := requireOAuth2Error(t, err, "invalid_client")
		require.Equal(t, http.StatusUnauthorized, oauthErr.StatusCode)
	})

	t.Run("rejects an unknown scope", func(t *testing.T) {
		_, err := client.ClientCredentialsGrant(ctx, seedClientID, seedClientSecret, []string{"nope"})
		oauthErr := requireOAuth2Error(t, err, "invalid_scope")
		require.Equal(t, http.StatusBadRequest, oauthErr.StatusCode)
	})

	t.Run("rejects an unregistered grant type", func(t *testing.T) {
		_, err := client.DeviceCodeGrant(ctx, seedClientID, seedClientSecret, "some-device-code")
		requireOAuth2Error(t, err, "unauthorized_client")
	})
}
