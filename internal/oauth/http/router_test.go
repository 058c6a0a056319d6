package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sableauth/sable/internal/oauth/domain"
	"github.com/sableauth/sable/internal/oauth/grant"
	"github.com/sableauth/sable/internal/oauth/store/drivers/sqlite"
	"github.com/sableauth/sable/pkg/authsdk"
	"github.com/sableauth/sable/pkg/cryptox"
	"github.com/sableauth/sable/pkg/idx"
	"github.com/sableauth/sable/pkg/jwtx"
	"github.com/sableauth/sable/pkg/slogx"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "oauth-http-*")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

type handlerEnv struct {
	store  *sqlite.Store
	server *httptest.Server
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Algorithm: jwtx.AlgorithmEdDSA,
		NumKeys:   1,
	})
	require.NoError(t, err)

	grants, err := grant.New(grant.Config{
		Issuer:          "https://auth.example",
		TokenEndpoint:   "https://auth.example/v1/oauth2/token",
		SupportedScopes: []string{"foo", "bar"},
		AccessTokenTTL:  5 * time.Minute,
		RefreshTokenTTL: time.Hour,
	}, grant.Options{Store: st, Signers: km})
	require.NoError(t, err)

	logger := slogx.New(slogx.Config{Service: "sable-test", Level: "error", Format: "text"})
	router := NewRouter(grants, km.KeySet, st, "test", logger)
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &handlerEnv{store: st, server: srv}
}

func (e *handlerEnv) seedClient(t *testing.T) domain.Client {
	t.Helper()
	c := domain.Client{
		ID:         idx.New().String(),
		Secret:     "topsecret",
		GrantTypes: []domain.GrantType{domain.GrantClientCredentials},
		Scopes:     []string{"foo", "bar"},
	}
	require.NoError(t, e.store.Clients().CreateClient(context.Background(), c))
	return c
}

func postToken(t *testing.T, env *handlerEnv, form url.Values, modify ...func(*http.Request)) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, m := range modify {
		m(req)
	}

	resp, err := env.server.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func TestTokenEndpointSuccess(t *testing.T) {
	env := newHandlerEnv(t)
	client := env.seedClient(t)

	resp := postToken(t, env, url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {client.ID},
		"client_secret": {"topsecret"},
		"scope":         {"foo"},
	})
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	assert.Equal(t, "no-cache", resp.Header.Get("Pragma"))

	var body authsdk.TokenResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body.AccessToken)
	assert.Equal(t, "Bearer", body.TokenType)
	assert.Equal(t, int64(300), body.ExpiresIn)
	assert.Equal(t, "foo", body.Scope)
	assert.Empty(t, body.RefreshToken)
}

func TestTokenEndpointBasicAuth(t *testing.T) {
	env := newHandlerEnv(t)
	client := env.seedClient(t)

	resp := postToken(t, env, url.Values{
		"grant_type": {"client_credentials"},
	}, func(req *http.Request) {
		req.SetBasicAuth(client.ID, "topsecret")
	})
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTokenEndpointErrorMapping(t *testing.T) {
	env := newHandlerEnv(t)
	client := env.seedClient(t)

	t.Run("invalid_client is 401", func(t *testing.T) {
		resp := postToken(t, env, url.Values{
			"grant_type":    {"client_credentials"},
			"client_id":     {client.ID},
			"client_secret": {"wrong"},
		})
		defer func() { _ = resp.Body.Close() }()

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		var body authsdk.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "invalid_client", body.Error)
	})

	t.Run("unauthorized_client is 400", func(t *testing.T) {
		resp := postToken(t, env, url.Values{
			"grant_type":    {"password"},
			"client_id":     {client.ID},
			"client_secret": {"topsecret"},
			"username":      {"alice"},
			"password":      {"x"},
		})
		defer func() { _ = resp.Body.Close() }()

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body authsdk.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "unauthorized_client", body.Error)
	})

	t.Run("wrong content type", func(t *testing.T) {
		resp := postToken(t, env, url.Values{
			"grant_type": {"client_credentials"},
		}, func(req *http.Request) {
			req.Header.Set("Content-Type", "application/json")
		})
		defer func() { _ = resp.Body.Close() }()

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body authsdk.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "invalid_request", body.Error)
	})
}

func TestJWKSEndpoint(t *testing.T) {
	env := newHandlerEnv(t)

	resp, err := env.server.Client().Get(env.server.URL + "/.well-known/jwks.json")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var jwks authsdk.JWKSResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&jwks))
	require.Len(t, jwks.Keys, 1)
	assert.Equal(t, "OKP", jwks.Keys[0].Kty)
	assert.NotEmpty(t, jwks.Keys[0].Kid)
}

func TestHealthEndpoints(t *testing.T) {
	env := newHandlerEnv(t)

	for _, path := range []string{"/livez", "/readyz"} {
		resp, err := env.server.Client().Get(env.server.URL + path)
		require.NoError(t, err)

		var body authsdk.HealthResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		_ = resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Equal(t, "ok", body.Status, path)
	}
}
