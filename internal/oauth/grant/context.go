package grant

import "github.com/sableauth/sable/internal/oauth/domain"

// tokenContext is the validated bundle a validator hands to its grant
// handler. Built once per request, never mutated after handoff.
type tokenContext struct {
	req       Request
	client    domain.Client
	grantType domain.GrantType
}

type authorizationCodeContext struct {
	tokenContext

	code         domain.AuthorizationCode
	redirectURI  string
	codeVerifier string
}

type deviceCodeContext struct {
	tokenContext

	device domain.DeviceCode
}

type refreshTokenContext struct {
	tokenContext

	token domain.RefreshToken

	// presented is the opaque wire value, echoed back when rotation is off.
	presented string

	// scopes is the granted set after the subset check against the token's
	// original scopes.
	scopes []string
}

type clientCredentialsContext struct {
	tokenContext

	scopes []string
}

type passwordContext struct {
	tokenContext

	user   domain.User
	scopes []string
}

type jwtBearerContext struct {
	tokenContext

	user   domain.User
	scopes []string
}
