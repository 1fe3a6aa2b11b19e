package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/crmkit/authcore/internal/domain"
	"github.com/crmkit/authcore/internal/infrastructure/auth"
	"github.com/crmkit/authcore/internal/infrastructure/metrics"
	"github.com/crmkit/authcore/internal/usecase"
)

// TenantMiddleware resolves the tenant a request operates under and installs
// it on the request context.
//
// Identifier precedence: X-Tenant-ID header, then the token claim, then the
// tenant_id query parameter. Subdomain precedence: X-Tenant-Subdomain
// header, then the Host subdomain, then the subdomain query parameter. An
// identifier always wins over a subdomain. A malformed header identifier is
// logged and treated as absent rather than failing the request here.
type TenantMiddleware struct {
	directory usecase.TenantDirectory
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	exempt    []string
}

// NewTenantMiddleware creates a new TenantMiddleware.
func NewTenantMiddleware(directory usecase.TenantDirectory, m *metrics.Metrics, logger zerolog.Logger, exempt ...string) *TenantMiddleware {
	return &TenantMiddleware{directory: directory, metrics: m, logger: logger, exempt: exempt}
}

// Wrap wraps an http.Handler with tenant resolution.
func (m *TenantMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.isExempt(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		if id, source := m.tenantID(r); id != "" {
			tenant, err := m.directory.GetByID(r.Context(), id)
			if err != nil || !tenant.Active {
				m.observe(source, "invalid")
				writeJSONError(w, http.StatusForbidden, "tenant_invalid")
				return
			}
			m.observe(source, "ok")
			next.ServeHTTP(w, r.WithContext(auth.WithTenant(r.Context(), tenant)))
			return
		}

		if sub, source := m.subdomain(r); sub != "" {
			tenant, err := m.directory.GetBySubdomain(r.Context(), sub)
			if err != nil || !tenant.Active {
				m.observe(source, "invalid")
				writeJSONError(w, http.StatusForbidden, "tenant_invalid")
				return
			}
			m.observe(source, "ok")
			next.ServeHTTP(w, r.WithContext(auth.WithTenant(r.Context(), tenant)))
			return
		}

		m.observe("none", "missing")
		writeJSONError(w, http.StatusBadRequest, "tenant_required")
	})
}

// tenantID picks the first usable tenant identifier and names its source.
func (m *TenantMiddleware) tenantID(r *http.Request) (string, string) {
	if header := r.Header.Get("X-Tenant-ID"); header != "" {
		if _, err := uuid.Parse(header); err == nil {
			return header, "header"
		}
		m.logger.Debug().Str("value", header).Msg("malformed tenant header ignored")
	}

	if sc, ok := auth.SecurityContextFrom(r.Context()); ok && sc.TenantID() != "" {
		// The system tenant marks service principals, which act across
		// tenants rather than under one.
		if sc.TenantID() != domain.SystemTenantID {
			return sc.TenantID(), "token"
		}
	}

	if q := r.URL.Query().Get("tenant_id"); q != "" {
		if _, err := uuid.Parse(q); err == nil {
			return q, "query"
		}
		m.logger.Debug().Str("value", q).Msg("malformed tenant query parameter ignored")
	}

	return "", ""
}

// subdomain picks the first usable subdomain label and names its source.
func (m *TenantMiddleware) subdomain(r *http.Request) (string, string) {
	if header := r.Header.Get("X-Tenant-Subdomain"); header != "" {
		sub := strings.ToLower(header)
		if domain.ValidateSubdomain(sub) == nil {
			return sub, "subdomain_header"
		}
		m.logger.Debug().Str("value", header).Msg("malformed subdomain header ignored")
	}

	if sub := hostSubdomain(r.Host); sub != "" {
		return sub, "host"
	}

	if q := r.URL.Query().Get("subdomain"); q != "" {
		sub := strings.ToLower(q)
		if domain.ValidateSubdomain(sub) == nil {
			return sub, "subdomain_query"
		}
		m.logger.Debug().Str("value", q).Msg("malformed subdomain query parameter ignored")
	}

	return "", ""
}

func (m *TenantMiddleware) isExempt(path string) bool {
	for _, prefix := range m.exempt {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (m *TenantMiddleware) observe(source, result string) {
	if m.metrics != nil {
		m.metrics.TenantResolutions.WithLabelValues(source, result).Inc()
	}
}

// hostSubdomain extracts the tenant label from a host like
// acme.crm.example.com. Bare hosts and the www/api labels carry no tenant.
func hostSubdomain(host string) string {
	if idx := strings.IndexByte(host, ':'); idx >= 0 {
		host = host[:idx]
	}
	parts := strings.Split(host, ".")
	if len(parts) < 3 {
		return ""
	}
	label := strings.ToLower(parts[0])
	if domain.ValidateSubdomain(label) != nil {
		return ""
	}
	return label
}
