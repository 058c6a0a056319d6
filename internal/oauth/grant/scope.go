package grant

import (
	"slices"

	"github.com/sableauth/sable/internal/oauth/domain"
	"github.com/sableauth/sable/pkg/httpx"
)

// scopeHandler negotiates scope between a request and a client's
// registration. Unknown scopes and scopes outside the client's registered
// set both fail with invalid_scope.
type scopeHandler struct {
	// supported is the server-wide scope vocabulary.
	supported []string
}

// resolve computes the granted scope set. An empty request defaults to the
// client's full registered set, in registration order.
func (h *scopeHandler) resolve(client domain.Client, requested string) ([]string, error) {
	fields := httpx.ParseSpaceDelimitedFields(requested)
	if len(fields) == 0 {
		return slices.Clone(client.Scopes), nil
	}

	for _, s := range fields {
		if !slices.Contains(h.supported, s) {
			return nil, invalidScope("Unknown scope " + quote(s) + ".")
		}
		if !slices.Contains(client.Scopes, s) {
			return nil, invalidScope("The scope " + quote(s) + " is not allowed for the Client.")
		}
	}
	return fields, nil
}

func quote(s string) string { return `"` + s + `"` }
