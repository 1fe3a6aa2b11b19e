package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/crmkit/authcore/internal/infrastructure/auth"
)

// LoggingMiddleware logs HTTP requests with the caller's identity fields
// when the request is authenticated.
type LoggingMiddleware struct {
	logger zerolog.Logger
}

// NewLoggingMiddleware creates a new LoggingMiddleware.
func NewLoggingMiddleware(logger zerolog.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{logger: logger}
}

// Wrap wraps an http.Handler with logging.
func (m *LoggingMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		evt := m.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapped.statusCode).
			Dur("duration", time.Since(start)).
			Str("remote_addr", r.RemoteAddr)

		if id, ok := auth.CorrelationIDFrom(r.Context()); ok {
			evt = evt.Str("correlation_id", id)
		}
		if sc, ok := auth.SecurityContextFrom(r.Context()); ok {
			evt = evt.Str("user_id", sc.UserID()).Str("tenant_id", sc.TenantID())
		}

		evt.Msg("request completed")
	})
}

type statusRecorder struct {
	http.ResponseWriter

	statusCode int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
