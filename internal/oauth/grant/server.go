// Package grant implements the token-issuance pipeline: client
// authentication, per-grant validation and the state transitions that turn
// an authorization grant into tokens. Six grant types are supported and the
// dispatch over them is exhaustive.
package grant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sableauth/sable/internal/oauth/domain"
	"github.com/sableauth/sable/internal/oauth/store"
	"github.com/sableauth/sable/pkg/josex"
	"github.com/sableauth/sable/pkg/jwtx"
)

type nowFunc func() time.Time

// SignerSource hands out a signing key per issuance. jwtx.KeyManager
// satisfies it.
type SignerSource interface {
	GetSigner() jwtx.Signer
}

// IDTokenIssuer mints an OpenID Connect ID token for an authorization-code
// exchange whose granted scopes include openid.
type IDTokenIssuer interface {
	GenerateIDToken(ctx context.Context, code domain.AuthorizationCode, client domain.Client, scopes []string) (string, error)
}

// Config is the pipeline's static configuration.
type Config struct {
	// Issuer is the iss claim of every signed token.
	Issuer string

	// TokenEndpoint is the absolute URL of the token endpoint. JWT-bearer
	// assertions must name it in their aud claim.
	TokenEndpoint string

	// SupportedScopes is the server-wide scope vocabulary.
	SupportedScopes []string

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// RotateRefreshTokens enables server-wide refresh token rotation. The
	// store must provide the rotation capability when set.
	RotateRefreshTokens bool
}

// Server runs the grant processing pipeline.
type Server struct {
	store   store.Store
	finder  store.ResourceOwnerCredentialFinder
	rotator store.RefreshTokenRotator

	signers   SignerSource
	idTokens  IDTokenIssuer
	keyLoader *josex.KeySetLoader

	auth   clientAuthenticator
	scopes scopeHandler

	cfg Config
	log *slog.Logger
	now nowFunc
}

// Options carries the pipeline's collaborators. IDTokens and KeyLoader are
// optional; everything else is required.
type Options struct {
	Store    store.Store
	Signers  SignerSource
	IDTokens IDTokenIssuer

	// KeyLoader resolves client JWKS documents for the jwt-bearer grant.
	// Nil gets a default loader with a 10 second fetch timeout.
	KeyLoader *josex.KeySetLoader

	Logger *slog.Logger

	// Now overrides the clock. Nil means time.Now.
	Now func() time.Time
}

// New wires the pipeline and verifies at construction time that the store
// carries every capability the configuration demands. Optional store
// capabilities are not discovered at request time.
func New(cfg Config, opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, errors.New("grant: store is required")
	}
	if opts.Signers == nil {
		return nil, errors.New("grant: signer source is required")
	}
	if cfg.Issuer == "" || cfg.TokenEndpoint == "" {
		return nil, errors.New("grant: issuer and token endpoint are required")
	}

	finder, ok := opts.Store.Users().(store.ResourceOwnerCredentialFinder)
	if !ok {
		return nil, errors.New("grant: password grant requires a credential lookup capability on the user store")
	}

	var rotator store.RefreshTokenRotator
	if cfg.RotateRefreshTokens {
		rotator, ok = opts.Store.RefreshTokens().(store.RefreshTokenRotator)
		if !ok {
			return nil, errors.New("grant: refresh token rotation enabled but the store cannot rotate")
		}
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	loader := opts.KeyLoader
	if loader == nil {
		loader = &josex.KeySetLoader{}
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Server{
		store:     opts.Store,
		finder:    finder,
		rotator:   rotator,
		signers:   opts.Signers,
		idTokens:  opts.IDTokens,
		keyLoader: loader,
		auth:      clientAuthenticator{clients: opts.Store.Clients(), now: now},
		scopes:    scopeHandler{supported: cfg.SupportedScopes},
		cfg:       cfg,
		log:       log,
		now:       now,
	}, nil
}

// Exchange processes one token request end to end and returns either a
// token response or a protocol *Error.
func (s *Server) Exchange(ctx context.Context, req Request) (*TokenResponse, error) {
	base, err := s.validateBase(ctx, req)
	if err != nil {
		return nil, err
	}

	switch base.grantType {
	case domain.GrantAuthorizationCode:
		c, err := s.validateAuthorizationCode(ctx, base)
		if err != nil {
			return nil, err
		}
		return s.handleAuthorizationCode(ctx, c)

	case domain.GrantDeviceCode:
		c, err := s.validateDeviceCode(ctx, base)
		if err != nil {
			return nil, err
		}
		return s.handleDeviceCode(ctx, c)

	case domain.GrantRefreshToken:
		c, err := s.validateRefreshToken(ctx, base)
		if err != nil {
			return nil, err
		}
		return s.handleRefreshToken(ctx, c)

	case domain.GrantClientCredentials:
		c, err := s.validateClientCredentials(base)
		if err != nil {
			return nil, err
		}
		return s.handleClientCredentials(ctx, c)

	case domain.GrantPassword:
		c, err := s.validatePassword(ctx, base)
		if err != nil {
			return nil, err
		}
		return s.handlePassword(ctx, c)

	case domain.GrantJWTBearer:
		c, err := s.validateJWTBearer(ctx, base)
		if err != nil {
			return nil, err
		}
		return s.handleJWTBearer(ctx, c)

	default:
		// Unreachable: validateBase only admits the six known values.
		return nil, fmt.Errorf("grant: unhandled grant type %q", base.grantType)
	}
}

// validateBase authenticates the client, resolves the grant type and
// enforces the central registration gate: a grant type is only reachable
// for a client whose registered set includes it.
func (s *Server) validateBase(ctx context.Context, req Request) (tokenContext, error) {
	client, err := s.auth.authenticate(ctx, req)
	if err != nil {
		return tokenContext{}, err
	}

	if req.GrantType == "" {
		return tokenContext{}, invalidRequest(`Missing required parameter "grant_type".`)
	}
	gt, ok := domain.ParseGrantType(req.GrantType)
	if !ok {
		return tokenContext{}, invalidRequest("Unknown grant type " + quote(req.GrantType) + ".")
	}

	if !client.AllowsGrantType(gt) {
		return tokenContext{}, unauthorizedClient("The Client is not authorized to use the grant type " + quote(string(gt)) + ".")
	}

	return tokenContext{req: req, client: client, grantType: gt}, nil
}
