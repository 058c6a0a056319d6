package grant

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/sableauth/sable/internal/oauth/domain"
	"github.com/sableauth/sable/internal/oauth/store"
)

// clientAuthenticator resolves and authenticates the client behind a token
// request. Supported methods are client_secret_basic, client_secret_post
// and, for clients registered without a secret, none.
type clientAuthenticator struct {
	clients store.Clients
	now     nowFunc
}

var errClientAuth = invalidClient("Client authentication failed.")

// authenticate returns the authenticated client or an invalid_client error.
// Presenting credentials through more than one method is ambiguous and
// rejected outright.
func (a *clientAuthenticator) authenticate(ctx context.Context, req Request) (domain.Client, error) {
	if req.HasBasic && req.ClientSecret != "" {
		return domain.Client{}, errClientAuth
	}

	id := req.ClientID
	secret := req.ClientSecret
	if req.HasBasic {
		id = req.BasicID
		secret = req.BasicSecret
	}
	if id == "" {
		return domain.Client{}, errClientAuth
	}

	client, err := a.clients.GetClientByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Client{}, errClientAuth
		}
		return domain.Client{}, err
	}

	if !client.IsConfidential() {
		// Public client: only the bare client_id is acceptable.
		if secret != "" {
			return domain.Client{}, errClientAuth
		}
		return client, nil
	}

	if secret == "" || client.SecretExpired(a.now()) {
		return domain.Client{}, errClientAuth
	}
	if subtle.ConstantTimeCompare([]byte(secret), []byte(client.Secret)) != 1 {
		return domain.Client{}, errClientAuth
	}

	return client, nil
}
