package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/femundo/cms/internal/admin/domain"
	"github.com/femundo/cms/internal/admin/service"
	"github.com/femundo/cms/internal/admin/store"
	"github.com/femundo/cms/pkg/httpx"
	"github.com/femundo/cms/pkg/jwtx"
	"github.com/femundo/cms/pkg/metricsx"
	"github.com/femundo/cms/pkg/slogx"

	_ "github.com/femundo/cms/docs" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

const (
	loginPath = "/api/auth/login"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	AuthService     *service.AuthService
	UserService     *service.UserService
	MFAService      *service.MFAService
	ActivityService *service.ActivityService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	allowedOrigins []string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Outermost first: request logging, metrics, then the CORS/CSRF and
	// security-header boundary in front of everything under /api/.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		metricsx.Instrument,
		httpx.BoundaryGuard(httpx.GuardConfig{
			AllowedOrigins: allowedOrigins,
			LoginPath:      loginPath,
		}),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerActivity()
	r.registerModules()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			FEMUNDO Admin API
//	@version		1.0.0
//	@description	Authentication, user management and audit backend for the FEMUNDO CMS admin panel.
//	@description
//	@description	Tokens are stateless HS256 JWTs. Revocation happens through account deactivation, which every authenticated request re-checks.
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

// authenticated wraps h with token verification plus a per-user rate limit.
func (r *Router) authenticated(h http.Handler, limit httpx.RateLimitConfig, extra ...httpx.Middleware) http.Handler {
	mws := append([]httpx.Middleware{
		Authenticate(r.verifier, r.AuthService),
	}, extra...)
	mws = append(mws, httpx.RateLimitByUser(limit))
	return httpx.Chain(h, mws...)
}

func (r *Router) registerAuth() {
	// Login carries its own attempt lockout inside the service; the
	// strict IP limit in front only blunts raw request floods.
	r.Mux.Handle("POST "+loginPath,
		httpx.Chain(&LoginHandler{AuthService: r.AuthService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("GET /api/auth/me",
		r.authenticated(&MeHandler{}, httpx.PublicLimit))

	r.Mux.Handle("PUT /api/auth/change-password",
		r.authenticated(&PasswordHandler{UserService: r.UserService}, httpx.StrictLimit))

	mfa := &MFAHandler{MFAService: r.MFAService}
	r.Mux.Handle("POST /api/auth/mfa/enroll",
		r.authenticated(http.HandlerFunc(mfa.HandleEnroll), httpx.ModerateLimit))
	r.Mux.Handle("POST /api/auth/mfa/activate",
		r.authenticated(http.HandlerFunc(mfa.HandleActivate), httpx.StrictLimit))
	r.Mux.Handle("POST /api/auth/mfa/disable",
		r.authenticated(http.HandlerFunc(mfa.HandleDisable), httpx.StrictLimit))
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	// User management needs the admin role and the "users" module grant.
	// Deleting accounts is stricter: super admins only.
	gates := []httpx.Middleware{
		RequireRole(domain.RoleAdmin),
		RequireModule("users"),
	}
	deleteGates := []httpx.Middleware{
		RequireRole(domain.RoleSuperAdmin),
		RequireModule("users"),
	}

	r.Mux.Handle("GET /api/users",
		r.authenticated(http.HandlerFunc(h.HandleList), httpx.PublicLimit, gates...))
	r.Mux.Handle("POST /api/users",
		r.authenticated(http.HandlerFunc(h.HandleCreate), httpx.ModerateLimit, gates...))
	r.Mux.Handle("GET /api/users/{id}",
		r.authenticated(http.HandlerFunc(h.HandleGet), httpx.PublicLimit, gates...))
	r.Mux.Handle("PUT /api/users/{id}",
		r.authenticated(http.HandlerFunc(h.HandleUpdate), httpx.ModerateLimit, gates...))
	r.Mux.Handle("DELETE /api/users/{id}",
		r.authenticated(http.HandlerFunc(h.HandleDelete), httpx.ModerateLimit, deleteGates...))
}

func (r *Router) registerActivity() {
	r.Mux.Handle("GET /api/activity",
		r.authenticated(&ActivityHandler{ActivityService: r.ActivityService},
			httpx.PublicLimit,
			RequireRole(domain.RoleAdmin),
		),
	)
}

func (r *Router) registerModules() {
	r.Mux.Handle("GET /api/modules",
		r.authenticated(&ModulesHandler{}, httpx.PublicLimit))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
	r.Mux.Handle("GET /metrics", metricsx.Handler())
}
