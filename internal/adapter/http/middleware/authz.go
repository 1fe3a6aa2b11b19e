package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/crmkit/authcore/internal/domain"
	"github.com/crmkit/authcore/internal/infrastructure/auth"
	"github.com/crmkit/authcore/internal/infrastructure/metrics"
)

// AuthzMiddleware enforces declarative access requirements. Unlike the
// authentication stage it is fail-closed: any unmet requirement ends the
// request with 401 or 403.
type AuthzMiddleware struct {
	metrics *metrics.Metrics
}

// NewAuthzMiddleware creates a new AuthzMiddleware.
func NewAuthzMiddleware(m *metrics.Metrics) *AuthzMiddleware {
	return &AuthzMiddleware{metrics: m}
}

// guardedHandler is the enforcement point for one requirement. Its concrete
// type marks a handler as already guarded, which is how an outer declaration
// detects an inner one at wrap time.
type guardedHandler struct {
	m    *AuthzMiddleware
	req  domain.Requirement
	next http.Handler
}

func (g *guardedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sc, _ := auth.SecurityContextFrom(r.Context())
	if err := g.req.Evaluate(sc); err != nil {
		g.m.deny(w, err)
		return
	}
	g.m.observe("allow")
	g.next.ServeHTTP(w, r)
}

// Require builds a middleware enforcing the given requirement. A requirement
// declared closer to the route supersedes one inherited from its group: when
// the wrapped handler already carries a guard, this declaration steps aside
// instead of stacking an additional check.
func (m *AuthzMiddleware) Require(req domain.Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if _, ok := next.(*guardedHandler); ok {
			return next
		}
		return &guardedHandler{m: m, req: req, next: next}
	}
}

// RequireAll is shorthand for Require over a set of mandatory permissions.
func (m *AuthzMiddleware) RequireAll(perms ...domain.Permission) func(http.Handler) http.Handler {
	return m.Require(domain.RequireAll(perms...))
}

// RequireAny is shorthand for Require over a set of alternative permissions.
func (m *AuthzMiddleware) RequireAny(perms ...domain.Permission) func(http.Handler) http.Handler {
	return m.Require(domain.RequireAny(perms...))
}

// RequireAnyRole is shorthand for Require over a set of alternative roles.
func (m *AuthzMiddleware) RequireAnyRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return m.Require(domain.RequireAnyRole(roles...))
}

// Authenticated demands a valid security context and nothing more.
func (m *AuthzMiddleware) Authenticated(next http.Handler) http.Handler {
	return m.Require(domain.Requirement{CheckTenant: false})(next)
}

func (m *AuthzMiddleware) deny(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrAuthenticationRequired) {
		m.observe("unauthenticated")
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var denied *domain.AccessDeniedError
	if errors.As(err, &denied) {
		m.observe("deny")
		writeJSONError(w, http.StatusForbidden, denied.Error())
		return
	}

	m.observe("deny")
	writeJSONError(w, http.StatusForbidden, "access denied")
}

func (m *AuthzMiddleware) observe(decision string) {
	if m.metrics != nil {
		m.metrics.AuthzDecisions.WithLabelValues(decision).Inc()
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
