package grant

import "net/http"

// OAuth 2.0 error codes (RFC 6749 §5.2, RFC 8628 §3.5). The set is closed;
// every failure in the pipeline maps to exactly one of these.
const (
	CodeInvalidRequest       = "invalid_request"
	CodeInvalidClient        = "invalid_client"
	CodeInvalidGrant         = "invalid_grant"
	CodeUnauthorizedClient   = "unauthorized_client"
	CodeInvalidScope         = "invalid_scope"
	CodeAccessDenied         = "access_denied"
	CodeExpiredToken         = "expired_token"
	CodeAuthorizationPending = "authorization_pending"
	CodeSlowDown             = "slow_down"
)

// Error is a protocol-level token endpoint error. The description strings
// are part of the observable contract; existing clients match on them.
type Error struct {
	Code        string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

func (e *Error) Error() string {
	if e.Description == "" {
		return e.Code
	}
	return e.Code + ": " + e.Description
}

// HTTPStatus maps the error code onto a response status. Only a failed
// client authentication gets 401.
func (e *Error) HTTPStatus() int {
	if e.Code == CodeInvalidClient {
		return http.StatusUnauthorized
	}
	return http.StatusBadRequest
}

func newError(code, description string) *Error {
	return &Error{Code: code, Description: description}
}

func invalidRequest(description string) *Error {
	return newError(CodeInvalidRequest, description)
}

func invalidClient(description string) *Error {
	return newError(CodeInvalidClient, description)
}

func invalidGrant(description string) *Error {
	return newError(CodeInvalidGrant, description)
}

func unauthorizedClient(description string) *Error {
	return newError(CodeUnauthorizedClient, description)
}

func invalidScope(description string) *Error {
	return newError(CodeInvalidScope, description)
}

func accessDenied(description string) *Error {
	return newError(CodeAccessDenied, description)
}
