package domain

// GrantType names an OAuth 2.0 token-exchange strategy. The set is closed:
// the token pipeline dispatches over these six values exhaustively.
type GrantType string

const (
	GrantAuthorizationCode GrantType = "authorization_code"
	GrantDeviceCode        GrantType = "urn:ietf:params:oauth:grant-type:device_code"
	GrantRefreshToken      GrantType = "refresh_token"
	GrantClientCredentials GrantType = "client_credentials"
	GrantPassword          GrantType = "password"
	GrantJWTBearer         GrantType = "urn:ietf:params:oauth:grant-type:jwt-bearer"
)

// ParseGrantType resolves a grant_type parameter to a known GrantType.
func ParseGrantType(s string) (GrantType, bool) {
	switch GrantType(s) {
	case GrantAuthorizationCode,
		GrantDeviceCode,
		GrantRefreshToken,
		GrantClientCredentials,
		GrantPassword,
		GrantJWTBearer:
		return GrantType(s), true
	default:
		return "", false
	}
}

// String implements fmt.Stringer.
func (g GrantType) String() string { return string(g) }
