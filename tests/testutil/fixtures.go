package testutil

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	adapterhttp "github.com/crmkit/authcore/internal/adapter/http"
	"github.com/crmkit/authcore/internal/adapter/http/handler"
	redisrepo "github.com/crmkit/authcore/internal/adapter/repository/redis"
	"github.com/crmkit/authcore/internal/domain"
	"github.com/crmkit/authcore/internal/infrastructure/auth"
	"github.com/crmkit/authcore/internal/infrastructure/config"
	"github.com/crmkit/authcore/internal/infrastructure/crypto"
	"github.com/crmkit/authcore/internal/usecase"
	"github.com/crmkit/authcore/internal/usecase/mocks"
)

// Stable fixture identifiers, reused across integration tests.
const (
	TenantID    = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	RepUserID   = "550e8400-e29b-41d4-a716-446655440000"
	AdminUserID = "550e8400-e29b-41d4-a716-446655440001"
	Password    = "integration-pass-1"
	SigningKey  = "integration-test-signing-secret"
)

// Env is a fully assembled service for integration tests: the HTTP router
// served by httptest, a real Redis-backed refresh token store on miniredis,
// and in-memory user and tenant directories.
type Env struct {
	Server *httptest.Server
	Tokens *auth.TokenProvider
	Redis  *miniredis.Miniredis
	Users  *mocks.MockUserStore
}

// NewEnv builds the environment and registers cleanup on t.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := redisrepo.NewTokenStore(client)
	users := mocks.NewMockUserStore()
	tenants := mocks.NewMockTenantStore()
	tokens := auth.NewTokenProvider(SigningKey, 15*time.Minute, 24*time.Hour)

	hash, err := usecase.HashPassword(Password)
	if err != nil {
		t.Fatalf("failed to hash fixture password: %v", err)
	}
	users.Add(&domain.User{
		ID:             RepUserID,
		TenantID:       TenantID,
		Email:          "rep@example.com",
		HashedPassword: hash,
		Roles:          []domain.Role{domain.RoleSalesRep},
		Active:         true,
	})
	users.Add(&domain.User{
		ID:             AdminUserID,
		TenantID:       TenantID,
		Email:          "admin@example.com",
		HashedPassword: hash,
		Roles:          []domain.Role{domain.RoleSuperAdmin},
		Active:         true,
	})
	tenants.Add(&domain.Tenant{ID: TenantID, Subdomain: "acme", Name: "Acme", Active: true})

	uc := usecase.NewAuthUseCase(users, tenants, store, tokens)

	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("failed to generate encryption key: %v", err)
	}
	encryptor, err := crypto.NewEncryptor(key, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to build encryptor: %v", err)
	}
	secure := config.NewSecureConfig(map[string]string{
		"database.password": "integration-db-secret",
		"service.name":      "authcore",
	}, encryptor)

	router := adapterhttp.NewRouter(adapterhttp.RouterConfig{
		AuthHandler:     handler.NewAuthHandler(uc, nil, zerolog.Nop(), nil),
		TenantHandler:   handler.NewTenantHandler(),
		HealthHandler:   handler.NewHealthHandler(nil, nil),
		ConfigHandler:   handler.NewConfigHandler(secure),
		TokenProvider:   tokens,
		TenantDirectory: tenants,
		Logger:          zerolog.Nop(),
		LoginRateLimit:  100,
		LoginRateBurst:  100,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &Env{Server: server, Tokens: tokens, Redis: mr, Users: users}
}
