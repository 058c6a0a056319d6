package grant

import "net/url"

// Request carries the parsed fields of a token request. The transport layer
// fills it from the form body and the Authorization header; the pipeline
// never touches the wire format.
type Request struct {
	GrantType string

	// Client credentials from the form body (client_secret_post), or just
	// client_id for public clients.
	ClientID     string
	ClientSecret string

	// Client credentials from HTTP Basic auth (client_secret_basic).
	BasicID     string
	BasicSecret string
	HasBasic    bool

	// Grant-specific parameters.
	Code         string
	RedirectURI  string
	CodeVerifier string
	DeviceCode   string
	RefreshToken string
	Scope        string
	Username     string
	Password     string
	Assertion    string
}

// RequestFromForm maps a parsed x-www-form-urlencoded body onto a Request.
// Basic auth credentials are attached separately by the transport.
func RequestFromForm(form url.Values) Request {
	return Request{
		GrantType:    form.Get("grant_type"),
		ClientID:     form.Get("client_id"),
		ClientSecret: form.Get("client_secret"),
		Code:         form.Get("code"),
		RedirectURI:  form.Get("redirect_uri"),
		CodeVerifier: form.Get("code_verifier"),
		DeviceCode:   form.Get("device_code"),
		RefreshToken: form.Get("refresh_token"),
		Scope:        form.Get("scope"),
		Username:     form.Get("username"),
		Password:     form.Get("password"),
		Assertion:    form.Get("assertion"),
	}
}

// SetBasicAuth attaches credentials taken from the Authorization header.
func (r *Request) SetBasicAuth(id, secret string) {
	r.BasicID = id
	r.BasicSecret = secret
	r.HasBasic = true
}
