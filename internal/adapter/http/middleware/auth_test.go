package middleware_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crmkit/authcore/internal/adapter/http/middleware"
	"github.com/crmkit/authcore/internal/domain"
	"github.com/crmkit/authcore/internal/infrastructure/auth"
)

func newProvider() *auth.TokenProvider {
	return auth.NewTokenProvider("middleware-test-secret", 15*time.Minute, time.Hour)
}

func accessToken(t *testing.T, provider *auth.TokenProvider, roles ...domain.Role) string {
	t.Helper()
	perms := domain.ExpandPermissions(roles, nil)
	list := make([]domain.Permission, 0, len(perms))
	for p := range perms {
		list = append(list, p)
	}
	token, err := provider.CreateAccessToken(
		"550e8400-e29b-41d4-a716-446655440000",
		"7c9e6679-7425-40de-944b-e07fc1f90ae7",
		roles, list,
		auth.SessionMeta{SessionID: "sess-1", DeviceID: "dev-1"},
	)
	require.NoError(t, err)
	return token
}

// capture records whether a security context reached the inner handler.
func capture(sc **domain.SecurityContext) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got, ok := auth.SecurityContextFrom(r.Context()); ok {
			*sc = got
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddlewareInstallsContext(t *testing.T) {
	t.Parallel()

	provider := newProvider()
	var sc *domain.SecurityContext
	handler := middleware.NewAuthMiddleware(provider, nil, zerolog.Nop()).Wrap(capture(&sc))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/deals", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken(t, provider, domain.RoleSalesRep))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.NotNil(t, sc, "expected security context to be installed")
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", sc.UserID())
	assert.True(t, sc.HasRole(domain.RoleSalesRep))
	assert.True(t, sc.HasPermission(domain.PermissionDealRead))
	assert.False(t, sc.HasPermission(domain.PermissionSystemAdmin))
}

func TestAuthMiddlewareFailOpen(t *testing.T) {
	t.Parallel()

	provider := newProvider()

	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not bearer", "Basic dXNlcjpwYXNz"},
		{"garbage token", "Bearer not.a.token"},
		{"wrong key", "Bearer " + func() string {
			other := auth.NewTokenProvider("some-other-secret", time.Minute, time.Hour)
			tok, _ := other.CreateAccessToken("u", "t", nil, nil, auth.SessionMeta{})
			return tok
		}()},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var sc *domain.SecurityContext
			handler := middleware.NewAuthMiddleware(provider, nil, zerolog.Nop()).Wrap(capture(&sc))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/deals", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			// The request goes through anonymously; rejection is the
			// authorization stage's job.
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Nil(t, sc)
		})
	}
}

func TestAuthMiddlewareLogsRejectedToken(t *testing.T) {
	t.Parallel()

	provider := newProvider()

	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	var sc *domain.SecurityContext
	handler := middleware.NewAuthMiddleware(provider, nil, logger).Wrap(capture(&sc))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/deals", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, sc)

	out := buf.String()
	assert.Contains(t, out, "token rejected")
	assert.Contains(t, out, `"reason":"invalid"`)
	assert.Contains(t, out, `"path":"/api/v1/deals"`)
	assert.NotContains(t, out, "not.a.token", "the raw token must never be logged")
}

func TestAuthMiddlewareRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	shortLived := auth.NewTokenProvider("middleware-test-secret", time.Millisecond, time.Hour)
	token, err := shortLived.CreateAccessToken("u", "t", []domain.Role{domain.RoleReadOnly}, nil, auth.SessionMeta{})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	var sc *domain.SecurityContext
	handler := middleware.NewAuthMiddleware(shortLived, nil, zerolog.Nop()).Wrap(capture(&sc))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/deals", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, sc, "expired token must not authenticate")
}

func TestAuthMiddlewareRejectsRefreshToken(t *testing.T) {
	t.Parallel()

	provider := newProvider()
	refresh, err := provider.CreateRefreshToken("u", "t")
	require.NoError(t, err)

	var sc *domain.SecurityContext
	handler := middleware.NewAuthMiddleware(provider, nil, zerolog.Nop()).Wrap(capture(&sc))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/deals", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Nil(t, sc, "refresh token must not authenticate API calls")
}

func TestAuthMiddlewareExemptPath(t *testing.T) {
	t.Parallel()

	provider := newProvider()
	var sc *domain.SecurityContext
	handler := middleware.NewAuthMiddleware(provider, nil, zerolog.Nop(), "/health").Wrap(capture(&sc))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken(t, provider, domain.RoleAdmin))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, sc, "exempt paths skip token parsing")
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	cases := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc.def.ghi", "abc.def.ghi", true},
		{"Bearer ", "", false},
		{"Token abc", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		got, ok := middleware.BearerToken(req)
		assert.Equal(t, tc.ok, ok, "header %q", tc.header)
		assert.Equal(t, tc.want, got, "header %q", tc.header)
	}
}
