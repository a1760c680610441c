package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/vidhub/internal/api/metrics"
	"github.com/aussiebroadwan/vidhub/internal/api/service"
	"github.com/aussiebroadwan/vidhub/pkg/httpx"
	"github.com/aussiebroadwan/vidhub/pkg/jwtx"
	"github.com/aussiebroadwan/vidhub/pkg/slogx"

	_ "github.com/aussiebroadwan/vidhub/api" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// DefaultMaxUploadBytes caps multipart bodies when MaxUploadBytes is unset.
const DefaultMaxUploadBytes = 64 << 20

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	db           Pinger
	metrics      *metrics.Metrics

	SessionService *service.SessionService
	UserService    *service.UserService
	VideoService   *service.VideoService

	// Media serves uploaded files when the disk uploader is in use.
	Media http.Handler

	CookieSecure   bool
	RateLimits     httpx.RateLimits
	MaxUploadBytes int64
}

// NewRouter builds a router with the default rate limits and secure cookies.
// m may be nil to run without instrumentation.
func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	db Pinger,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Router {
	r := &Router{
		Mux:            http.NewServeMux(),
		verifier:       verifier,
		buildVersion:   buildVersion,
		startTime:      time.Now(),
		logger:         logger,
		db:             db,
		metrics:        m,
		CookieSecure:   true,
		RateLimits:     httpx.DefaultRateLimits(),
		MaxUploadBytes: DefaultMaxUploadBytes,
	}

	// The metrics middleware must be innermost so it sees the matched
	// pattern once the mux returns.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger, "/livez", "/readyz", "/metrics"),
	}
	if m != nil {
		r.middlewares = append(r.middlewares, m.Middleware)
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerUsers()
	r.registerVideos()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			vidhub API
//	@version		0.1.0
//	@description	Video hosting backend. Accounts log in with a password and receive a short-lived access token and a single-use refresh token.
//	@description
//	@description				Tokens are HS256 JWTs. Browser clients receive them as HttpOnly cookies; other clients send the access token as a bearer token.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/vidhub
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) cookies() cookieJar { return cookieJar{Secure: r.CookieSecure} }

func (r *Router) maxUploadBytes() int64 {
	if r.MaxUploadBytes <= 0 {
		return DefaultMaxUploadBytes
	}
	return r.MaxUploadBytes
}

func (r *Router) registerUsers() {
	limits := r.RateLimits

	// Credential endpoints - strict rate limit by IP
	r.Mux.Handle("POST /api/v1/users/register",
		httpx.Chain(&RegisterHandler{SessionService: r.SessionService, MaxBytes: r.maxUploadBytes()},
			httpx.RateLimitByIP(limits.Strict),
		),
	)
	r.Mux.Handle("POST /api/v1/users/login",
		httpx.Chain(&LoginHandler{SessionService: r.SessionService, Cookies: r.cookies()},
			httpx.RateLimitByIP(limits.Strict),
		),
	)
	r.Mux.Handle("POST /api/v1/users/refresh-token",
		httpx.Chain(&RefreshHandler{SessionService: r.SessionService, Cookies: r.cookies()},
			httpx.RateLimitByIP(limits.Strict),
		),
	)

	r.Mux.Handle("POST /api/v1/users/logout",
		httpx.Chain(&LogoutHandler{SessionService: r.SessionService, Cookies: r.cookies()},
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(limits.Moderate),
		),
	)
	r.Mux.Handle("GET /api/v1/users/me",
		httpx.Chain(&MeHandler{UserService: r.UserService},
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(limits.Lenient),
		),
	)
}

func (r *Router) registerVideos() {
	limits := r.RateLimits
	h := &VideosHandler{VideoService: r.VideoService, MaxBytes: r.maxUploadBytes()}

	r.Mux.Handle("POST /api/v1/videos",
		httpx.Chain(http.HandlerFunc(h.HandlePublish),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(limits.Moderate),
		),
	)
	r.Mux.Handle("GET /api/v1/videos/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(limits.Lenient),
		),
	)
	r.Mux.Handle("PATCH /api/v1/videos/{id}/publish",
		httpx.Chain(http.HandlerFunc(h.HandleTogglePublish),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(limits.Moderate),
		),
	)
}

func (r *Router) registerSystem() {
	limits := r.RateLimits

	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(limits.Public),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.db),
			httpx.RateLimitByIP(limits.Public),
		),
	)

	if r.metrics != nil {
		r.Mux.Handle("GET /metrics", r.metrics.Handler())
	}
	if r.Media != nil {
		r.Mux.Handle("GET /media/", http.StripPrefix("/media/", r.Media))
	}
}
