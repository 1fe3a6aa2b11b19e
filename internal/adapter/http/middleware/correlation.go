package middleware

import (
	"net/http"

	"github.com/oklog/ulid/v2"

	"github.com/crmkit/authcore/internal/infrastructure/auth"
)

// CorrelationIDHeader is the request/response header carrying the
// correlation identifier.
const CorrelationIDHeader = "X-Correlation-ID"

// Correlation attaches a correlation ID to every request. An inbound header
// value is trusted; otherwise a fresh ULID is minted. The ID is echoed on
// the response so clients can quote it.
func Correlation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(CorrelationIDHeader)
		if id == "" {
			id = ulid.Make().String()
		}

		w.Header().Set(CorrelationIDHeader, id)
		ctx := auth.WithCorrelationID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
