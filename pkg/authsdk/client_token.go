package authsdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// OAuth2Error is a decoded RFC 6749 §5.2 error response.
type OAuth2Error struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *OAuth2Error) Error() string {
	if e.Description == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// ClientCredentialsGrant requests a client-only access token. This grant
// never returns a refresh token; the client just authenticates again.
func (c *SDKClient) ClientCredentialsGrant(
	ctx context.Context,
	clientID, clientSecret string,
	scopes []string,
) (*TokenResponse, error) {
	data := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {clientID},
		"client_secret": {clientSecret},
	}
	setScope(data, scopes)

	return c.requestToken(ctx, data)
}

// AuthorizationCodeGrant exchanges an authorization code, presenting the
// PKCE verifier the code was bound to.
func (c *SDKClient) AuthorizationCodeGrant(
	ctx context.Context,
	clientID, clientSecret, code, redirectURI, codeVerifier string,
) (*TokenResponse, error) {
	data := url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {clientID},
		"client_secret": {clientSecret},
		"code":          {code},
		"redirect_uri":  {redirectURI},
		"code_verifier": {codeVerifier},
	}

	return c.requestToken(ctx, data)
}

// DeviceCodeGrant polls the token endpoint with a device code. While the
// user decision is pending the returned *OAuth2Error carries
// authorization_pending or slow_down.
func (c *SDKClient) DeviceCodeGrant(
	ctx context.Context,
	clientID, clientSecret, deviceCode string,
) (*TokenResponse, error) {
	data := url.Values{
		"grant_type":    {"urn:ietf:params:oauth:grant-type:device_code"},
		"client_id":     {clientID},
		"client_secret": {clientSecret},
		"device_code":   {deviceCode},
	}

	return c.requestToken(ctx, data)
}

// RefreshGrant exchanges a refresh token for fresh tokens, optionally
// narrowing the scope.
func (c *SDKClient) RefreshGrant(
	ctx context.Context,
	clientID, clientSecret, refreshToken string,
	scopes []string,
) (*TokenResponse, error) {
	data := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {clientID},
		"client_secret": {clientSecret},
		"refresh_token": {refreshToken},
	}
	setScope(data, scopes)

	return c.requestToken(ctx, data)
}

// PasswordGrant exchanges resource owner credentials for tokens.
func (c *SDKClient) PasswordGrant(
	ctx context.Context,
	clientID, clientSecret, username, password string,
	scopes []string,
) (*TokenResponse, error) {
	data := url.Values{
		"grant_type":    {"password"},
		"client_id":     {clientID},
		"client_secret": {clientSecret},
		"username":      {username},
		"password":      {password},
	}
	setScope(data, scopes)

	return c.requestToken(ctx, data)
}

// JWTBearerGrant exchanges a signed JWT assertion for an access token.
func (c *SDKClient) JWTBearerGrant(
	ctx context.Context,
	clientID, clientSecret, assertion string,
	scopes []string,
) (*TokenResponse, error) {
	data := url.Values{
		"grant_type":    {"urn:ietf:params:oauth:grant-type:jwt-bearer"},
		"client_id":     {clientID},
		"client_secret": {clientSecret},
		"assertion":     {assertion},
	}
	setScope(data, scopes)

	return c.requestToken(ctx, data)
}

func setScope(data url.Values, scopes []string) {
	if len(scopes) > 0 {
		data.Set("scope", strings.Join(scopes, " "))
	}
}

func (c *SDKClient) requestToken(ctx context.Context, data url.Values) (*TokenResponse, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.url("/v1/oauth2/token"),
		strings.NewReader(data.Encode()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil || errResp.Error == "" {
			return nil, fmt.Errorf("token request failed with status %d", resp.StatusCode)
		}
		return nil, &OAuth2Error{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	var tokenResp TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &tokenResp, nil
}
