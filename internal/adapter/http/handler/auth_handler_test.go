package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crmkit/authcore/internal/adapter/http/dto"
	"github.com/crmkit/authcore/internal/adapter/http/handler"
	"github.com/crmkit/authcore/internal/domain"
	"github.com/crmkit/authcore/internal/infrastructure/auth"
	"github.com/crmkit/authcore/internal/usecase"
	"github.com/crmkit/authcore/internal/usecase/mocks"
)

const handlerTenantID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"

type fixture struct {
	handler *handler.AuthHandler
	tokens  *auth.TokenProvider
	users   *mocks.MockUserStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	users := mocks.NewMockUserStore()
	tenants := mocks.NewMockTenantStore()
	store := mocks.NewMockTokenStore()
	tokens := auth.NewTokenProvider("handler-test-secret", 15*time.Minute, 24*time.Hour)

	hash, err := usecase.HashPassword("correct-horse-9")
	require.NoError(t, err)
	users.Add(&domain.User{
		ID:             "550e8400-e29b-41d4-a716-446655440000",
		TenantID:       handlerTenantID,
		Email:          "rep@example.com",
		HashedPassword: hash,
		Roles:          []domain.Role{domain.RoleSalesRep},
		Active:         true,
	})
	tenants.Add(&domain.Tenant{ID: handlerTenantID, Subdomain: "acme", Active: true})

	uc := usecase.NewAuthUseCase(users, tenants, store, tokens)
	return &fixture{
		handler: handler.NewAuthHandler(uc, nil, zerolog.Nop(), nil),
		tokens:  tokens,
		users:   users,
	}
}

func postJSON(t *testing.T, h http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestAuthHandlerLogin(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	rec := postJSON(t, f.handler.Login, dto.LoginRequest{Email: "rep@example.com", Password: "correct-horse-9"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, handlerTenantID, resp.TenantID)
	assert.True(t, f.tokens.Validate(resp.AccessToken))
}

func TestAuthHandlerLoginBadCredentials(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	rec := postJSON(t, f.handler.Login, dto.LoginRequest{Email: "rep@example.com", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	// The body never says whether the user exists.
	assert.NotContains(t, rec.Body.String(), "rep@example.com")
}

func TestAuthHandlerLoginValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	rec := postJSON(t, f.handler.Login, dto.LoginRequest{Email: "rep@example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandlerRefreshAndLogout(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	rec := postJSON(t, f.handler.Login, dto.LoginRequest{Email: "rep@example.com", Password: "correct-horse-9"})
	require.Equal(t, http.StatusOK, rec.Code)
	var pair dto.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))

	rec = postJSON(t, f.handler.Refresh, dto.RefreshRequest{RefreshToken: pair.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code)
	var rotated dto.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rotated))
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// The old token was consumed by rotation.
	rec = postJSON(t, f.handler.Refresh, dto.RefreshRequest{RefreshToken: pair.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postJSON(t, f.handler.Logout, dto.LogoutRequest{RefreshToken: rotated.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, f.handler.Refresh, dto.RefreshRequest{RefreshToken: rotated.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandlerRefreshRejectsAccessToken(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	rec := postJSON(t, f.handler.Login, dto.LoginRequest{Email: "rep@example.com", Password: "correct-horse-9"})
	require.Equal(t, http.StatusOK, rec.Code)
	var pair dto.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))

	rec = postJSON(t, f.handler.Refresh, dto.RefreshRequest{RefreshToken: pair.AccessToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandlerServiceToken(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	rec := postJSON(t, f.handler.ServiceToken, dto.ServiceTokenRequest{Service: "billing-sync"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.ServiceTokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	claims, err := f.tokens.Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, string(auth.TokenTypeService), claims.TokenType)
	assert.Equal(t, "billing-sync", claims.DeviceID)
}

func TestAuthHandlerServiceTokenUnknownPermission(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	rec := postJSON(t, f.handler.ServiceToken, dto.ServiceTokenRequest{
		Service:     "billing-sync",
		Permissions: []string{"NOT_A_CODE"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandlerMe(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	sc := domain.NewSecurityContext(domain.SecurityContextParams{
		UserID:   "550e8400-e29b-41d4-a716-446655440000",
		TenantID: handlerTenantID,
		Roles:    []domain.Role{domain.RoleSalesRep},
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(auth.WithSecurityContext(req.Context(), sc))
	rec := httptest.NewRecorder()
	f.handler.Me(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.PrincipalResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"SALES_REP"}, resp.Roles)
	assert.Contains(t, resp.Permissions, "DEAL_READ")

	// Anonymous callers get 401.
	rec = httptest.NewRecorder()
	f.handler.Me(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
