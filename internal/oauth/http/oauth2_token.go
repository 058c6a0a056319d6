package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sableauth/sable/internal/oauth/grant"
	"github.com/sableauth/sable/pkg/authsdk"
	"github.com/sableauth/sable/pkg/httpx"
	"github.com/sableauth/sable/pkg/slogx"
)

// TokenHandler serves POST /v1/oauth2/token
// Accepts application/x-www-form-urlencoded per the RFC 6749 framework.
type TokenHandler struct {
	Grants *grant.Server
}

// ServeHTTP godoc
//
//	@Summary		OAuth2 Token Endpoint
//	@Description	Issues access and refresh tokens using OAuth2 grant types (authorization_code, urn:ietf:params:oauth:grant-type:device_code, refresh_token, client_credentials, password, urn:ietf:params:oauth:grant-type:jwt-bearer).
//	@Tags			OAuth2
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			grant_type		formData	string					true	"Grant type"
//	@Param			client_id		formData	string					false	"Client identifier (or HTTP Basic auth)"
//	@Param			client_secret	formData	string					false	"Client secret (confidential clients)"
//	@Param			code			formData	string					false	"Authorization code (authorization_code grant)"
//	@Param			redirect_uri	formData	string					false	"Redirect URI (authorization_code grant)"
//	@Param			code_verifier	formData	string					false	"PKCE code_verifier (authorization_code grant)"
//	@Param			device_code		formData	string					false	"Device code (device_code grant)"
//	@Param			refresh_token	formData	string					false	"Refresh token (refresh_token grant)"
//	@Param			username		formData	string					false	"Resource owner username (password grant)"
//	@Param			password		formData	string					false	"Resource owner password (password grant)"
//	@Param			assertion		formData	string					false	"Signed JWT assertion (jwt-bearer grant)"
//	@Param			scope			formData	string					false	"Space-delimited list of scopes"
//	@Success		200				{object}	authsdk.TokenResponse	"access_token, token_type, expires_in, scope, refresh_token, id_token"
//	@Failure		400				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		401				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		500				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Header			200				{string}	Cache-Control			"no-store"
//	@Header			200				{string}	Pragma					"no-cache"
//	@Router			/v1/oauth2/token [post].
func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if ct := r.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		writeOAuthError(w, &grant.Error{
			Code:        grant.CodeInvalidRequest,
			Description: "The request must be application/x-www-form-urlencoded.",
		})
		return
	}

	if err := r.ParseForm(); err != nil {
		writeOAuthError(w, &grant.Error{
			Code:        grant.CodeInvalidRequest,
			Description: "The request body could not be parsed.",
		})
		return
	}

	req := grant.RequestFromForm(r.PostForm)
	if id, secret, ok := r.BasicAuth(); ok {
		req.SetBasicAuth(id, secret)
	}

	resp, err := h.Grants.Exchange(ctx, req)
	if err != nil {
		var oauthErr *grant.Error
		if errors.As(err, &oauthErr) {
			writeOAuthError(w, oauthErr)
			return
		}

		log.Error("token exchange failed", "grant_type", req.GrantType, "err", err)
		httpx.NoCache(w)
		httpx.WriteJSON(w, http.StatusInternalServerError, authsdk.ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "The Authorization Server encountered an unexpected condition.",
		})
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func writeOAuthError(w http.ResponseWriter, err *grant.Error) {
	httpx.NoCache(w)
	httpx.WriteJSON(w, err.HTTPStatus(), authsdk.ErrorResponse{
		Error:            err.Code,
		ErrorDescription: err.Description,
	})
}
