package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Token metrics
	TokensIssued          *prometheus.CounterVec
	TokenValidations      *prometheus.CounterVec
	TokenValidationErrors *prometheus.CounterVec

	// Authentication metrics
	AuthAttempts   *prometheus.CounterVec
	AuthFailures   *prometheus.CounterVec
	ActiveSessions prometheus.Gauge

	// Authorization metrics
	AuthzDecisions *prometheus.CounterVec

	// Tenant resolution metrics
	TenantResolutions *prometheus.CounterVec

	// Encryption metrics
	CryptoOperations *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBQueries  *prometheus.CounterVec
	DBDuration *prometheus.HistogramVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Token metrics
		TokensIssued: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authcore_tokens_issued_total",
				Help: "Total tokens issued by type",
			},
			[]string{"type"},
		),
		TokenValidations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authcore_token_validations_total",
				Help: "Total token validations",
			},
			[]string{"result"},
		),
		TokenValidationErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authcore_token_validation_errors_total",
				Help: "Total token validation errors",
			},
			[]string{"reason"},
		),

		// Authentication metrics
		AuthAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authcore_auth_attempts_total",
				Help: "Total authentication attempts",
			},
			[]string{"status"},
		),
		AuthFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authcore_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "authcore_active_sessions",
			Help: "Current number of active sessions",
		}),

		// Authorization metrics
		AuthzDecisions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authcore_authz_decisions_total",
				Help: "Total authorization decisions",
			},
			[]string{"decision"},
		),

		// Tenant resolution metrics
		TenantResolutions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authcore_tenant_resolutions_total",
				Help: "Total tenant resolutions by source",
			},
			[]string{"source", "result"},
		),

		// Encryption metrics
		CryptoOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authcore_crypto_operations_total",
				Help: "Total encryption service operations",
			},
			[]string{"operation", "result"},
		),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authcore_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "authcore_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Database metrics
		DBQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authcore_db_queries_total",
				Help: "Total database queries",
			},
			[]string{"operation", "status"},
		),
		DBDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "authcore_db_duration_seconds",
				Help:    "Database query duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		// Redis metrics
		RedisOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authcore_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authcore_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Rate limiting metrics
		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authcore_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"path"},
		),
	}
}
