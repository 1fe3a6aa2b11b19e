package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/crmkit/authcore/internal/domain"
)

// MockUserStore is an in-memory mock implementation of UserRepository.
type MockUserStore struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	GetByIDFunc         func(ctx context.Context, id string) (*domain.User, error)
	GetByEmailFunc      func(ctx context.Context, email string) (*domain.User, error)
	UpdateLastLoginFunc func(ctx context.Context, id string, at time.Time) error
}

func NewMockUserStore() *MockUserStore {
	return &MockUserStore{
		users: make(map[string]*domain.User),
	}
}

// Add seeds a user into the store.
func (m *MockUserStore) Add(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

func (m *MockUserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserStore) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	if m.UpdateLastLoginFunc != nil {
		return m.UpdateLastLoginFunc(ctx, id, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.UpdatedAt = at
	}
	return nil
}

// MockTenantStore is an in-memory mock implementation of TenantDirectory.
type MockTenantStore struct {
	mu      sync.RWMutex
	tenants map[string]*domain.Tenant

	GetByIDFunc        func(ctx context.Context, id string) (*domain.Tenant, error)
	GetBySubdomainFunc func(ctx context.Context, subdomain string) (*domain.Tenant, error)
}

func NewMockTenantStore() *MockTenantStore {
	return &MockTenantStore{
		tenants: make(map[string]*domain.Tenant),
	}
}

// Add seeds a tenant into the store.
func (m *MockTenantStore) Add(tenant *domain.Tenant) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tenants[tenant.ID] = tenant
}

func (m *MockTenantStore) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.tenants[id]; ok {
		return t, nil
	}
	return nil, domain.ErrTenantNotFound
}

func (m *MockTenantStore) GetBySubdomain(ctx context.Context, subdomain string) (*domain.Tenant, error) {
	if m.GetBySubdomainFunc != nil {
		return m.GetBySubdomainFunc(ctx, subdomain)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tenants {
		if t.Subdomain == subdomain {
			return t, nil
		}
	}
	return nil, domain.ErrTenantNotFound
}

// MockTokenStore is an in-memory mock implementation of RefreshTokenStore.
type MockTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]bool

	SaveFunc      func(ctx context.Context, userID, tokenID string, ttl time.Duration) error
	ExistsFunc    func(ctx context.Context, userID, tokenID string) (bool, error)
	RevokeFunc    func(ctx context.Context, userID, tokenID string) error
	RevokeAllFunc func(ctx context.Context, userID string) error
}

func NewMockTokenStore() *MockTokenStore {
	return &MockTokenStore{
		tokens: make(map[string]bool),
	}
}

func (m *MockTokenStore) key(userID, tokenID string) string {
	return userID + ":" + tokenID
}

func (m *MockTokenStore) Save(ctx context.Context, userID, tokenID string, ttl time.Duration) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, userID, tokenID, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[m.key(userID, tokenID)] = true
	return nil
}

func (m *MockTokenStore) Exists(ctx context.Context, userID, tokenID string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, userID, tokenID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tokens[m.key(userID, tokenID)], nil
}

func (m *MockTokenStore) Revoke(ctx context.Context, userID, tokenID string) error {
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, userID, tokenID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, m.key(userID, tokenID))
	return nil
}

func (m *MockTokenStore) RevokeAll(ctx context.Context, userID string) error {
	if m.RevokeAllFunc != nil {
		return m.RevokeAllFunc(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := userID + ":"
	for k := range m.tokens {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(m.tokens, k)
		}
	}
	return nil
}
