// Package http wires the token engine onto its HTTP surface: the token
// endpoint, JWKS discovery, health probes and the swagger UI.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sableauth/sable/internal/oauth/grant"
	"github.com/sableauth/sable/internal/oauth/store"
	"github.com/sableauth/sable/pkg/httpx"
	"github.com/sableauth/sable/pkg/jwtx"
	"github.com/sableauth/sable/pkg/slogx"

	_ "github.com/sableauth/sable/api/oauth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	grants       *grant.Server
	keys         *jwtx.KeySet
	store        store.Store
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
}

func NewRouter(
	grants *grant.Server,
	keys *jwtx.KeySet,
	st store.Store,
	buildVersion string,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		grants:       grants,
		keys:         keys,
		store:        st,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerOAuth2()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Sable OAuth 2.0 Token Service API
//	@version		0.1.0
//	@description	OAuth 2.0 Authorization Server token endpoint supporting the
//	@description	authorization_code, device_code, refresh_token, client_credentials,
//	@description	password and jwt-bearer grant types.
//	@description
//	@description				Issued access tokens are JWTs and can be verified against the JWKS endpoint.
//
//	@contact.name				Sable Auth
//	@contact.url				https://github.com/sableauth/sable
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerOAuth2() {
	// POST /token - strict rate limit by IP (covers all grant types)
	tokenHandler := &TokenHandler{Grants: r.grants}
	r.Mux.Handle("POST /v1/oauth2/token",
		httpx.Chain(tokenHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// GET /jwks.json - public endpoint with high limit
	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
