package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/crmkit/authcore/internal/adapter/http/handler"
	"github.com/crmkit/authcore/internal/adapter/http/middleware"
	"github.com/crmkit/authcore/internal/domain"
	"github.com/crmkit/authcore/internal/infrastructure/auth"
	"github.com/crmkit/authcore/internal/infrastructure/metrics"
	"github.com/crmkit/authcore/internal/usecase"
)

// ExemptPaths are served without authentication or tenant resolution.
var ExemptPaths = []string{
	"/health",
	"/ready",
	"/metrics",
	"/api/v1/auth/login",
	"/api/v1/auth/refresh",
}

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AuthHandler   *handler.AuthHandler
	TenantHandler *handler.TenantHandler
	HealthHandler *handler.HealthHandler
	ConfigHandler *handler.ConfigHandler

	TokenProvider   *auth.TokenProvider
	TenantDirectory usecase.TenantDirectory
	Metrics         *metrics.Metrics
	Logger          zerolog.Logger

	LoginRateLimit float64
	LoginRateBurst int
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	authn := middleware.NewAuthMiddleware(cfg.TokenProvider, cfg.Metrics, cfg.Logger, ExemptPaths...)
	authz := middleware.NewAuthzMiddleware(cfg.Metrics)
	tenant := middleware.NewTenantMiddleware(cfg.TenantDirectory, cfg.Metrics, cfg.Logger)

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Correlation)
	r.Use(middleware.Recovery)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	r.Use(authn.Wrap)

	// Operational endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			loginLimiter := middleware.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateBurst, cfg.Metrics)

			r.With(loginLimiter.Limit).Post("/login", cfg.AuthHandler.Login)
			r.Post("/refresh", cfg.AuthHandler.Refresh)
			r.Post("/logout", cfg.AuthHandler.Logout)
			r.With(authz.Authenticated).Get("/me", cfg.AuthHandler.Me)
			r.With(authz.RequireAll(domain.PermissionSystemAdmin)).
				Post("/service-token", cfg.AuthHandler.ServiceToken)
		})

		// Tenant-scoped surface. Every route in this group requires an
		// authenticated caller and a resolved tenant.
		r.Group(func(r chi.Router) {
			r.Use(authz.Authenticated)
			r.Use(tenant.Wrap)

			r.Get("/tenant", cfg.TenantHandler.Current)
		})

		// Administrative surface.
		r.Route("/admin", func(r chi.Router) {
			r.Use(authz.RequireAll(domain.PermissionSystemAdmin))

			r.Get("/config", cfg.ConfigHandler.Masked)
		})
	})

	return r
}
