package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/crmkit/authcore/internal/domain"
	"github.com/crmkit/authcore/internal/infrastructure/auth"
	"github.com/crmkit/authcore/internal/infrastructure/metrics"
)

// AuthMiddleware authenticates requests from bearer tokens. It is the one
// fail-open stage in the pipeline: a missing, malformed or invalid token
// leaves the request anonymous and lets authorization reject it later, so
// public endpoints keep working behind the same stack. Every rejected token
// is counted and debug-logged before the request proceeds anonymously.
type AuthMiddleware struct {
	tokens  *auth.TokenProvider
	metrics *metrics.Metrics
	logger  zerolog.Logger
	exempt  []string
}

// NewAuthMiddleware creates a new AuthMiddleware. Paths under any exempt
// prefix skip token parsing entirely.
func NewAuthMiddleware(tokens *auth.TokenProvider, m *metrics.Metrics, logger zerolog.Logger, exempt ...string) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, metrics: m, logger: logger, exempt: exempt}
}

// Wrap wraps an http.Handler with authentication.
func (m *AuthMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.isExempt(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := BearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.tokens.Parse(token)
		if err != nil {
			m.rejected(r, "invalid", err)
			next.ServeHTTP(w, r)
			return
		}
		if claims.ExpiresAt == nil || !claims.ExpiresAt.After(time.Now()) {
			m.rejected(r, "expired", nil)
			next.ServeHTTP(w, r)
			return
		}
		// Refresh tokens never authenticate API calls.
		if claims.TokenType != string(auth.TokenTypeAccess) && claims.TokenType != string(auth.TokenTypeService) {
			m.rejected(r, "wrong_type", nil)
			next.ServeHTTP(w, r)
			return
		}

		roles, err := auth.DecodeRoles(claims.Roles)
		if err != nil {
			m.rejected(r, "invalid", err)
			next.ServeHTTP(w, r)
			return
		}
		perms, err := auth.DecodePermissions(claims.Permissions)
		if err != nil {
			m.rejected(r, "invalid", err)
			next.ServeHTTP(w, r)
			return
		}

		sc := domain.NewSecurityContext(domain.SecurityContextParams{
			UserID:      claims.Subject,
			TenantID:    claims.TenantID,
			Roles:       roles,
			Permissions: perms,
			SessionID:   claims.SessionID,
			DeviceID:    claims.DeviceID,
			ClientIP:    clientIP(r),
			UserAgent:   r.UserAgent(),
			IssuedAt:    claims.IssuedAtMillis(),
			ExpiresAt:   claims.ExpiresAtMillis(),
		})

		m.observe("ok")
		ctx := auth.WithSecurityContext(r.Context(), sc)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) isExempt(path string) bool {
	for _, prefix := range m.exempt {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (m *AuthMiddleware) observe(result string) {
	if m.metrics != nil {
		m.metrics.TokenValidations.WithLabelValues(result).Inc()
	}
}

// rejected records a token that failed validation. The token itself is
// never logged.
func (m *AuthMiddleware) rejected(r *http.Request, reason string, err error) {
	m.observe(reason)
	ev := m.logger.Debug().
		Str("reason", reason).
		Str("path", r.URL.Path).
		Str("client_ip", clientIP(r))
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg("token rejected, proceeding unauthenticated")
}

// BearerToken extracts the bearer token from the Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// clientIP extracts the client IP from the request.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if idx := strings.IndexByte(forwarded, ','); idx >= 0 {
			return strings.TrimSpace(forwarded[:idx])
		}
		return forwarded
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}
