package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crmkit/authcore/internal/domain"
)

// TenantRepository implements tenant lookups against PostgreSQL.
type TenantRepository struct {
	pool    *pgxpool.Pool
	retrier *Retrier
}

// NewTenantRepository creates a new tenant repository.
func NewTenantRepository(pool *pgxpool.Pool, retrier *Retrier) *TenantRepository {
	return &TenantRepository{pool: pool, retrier: retrier}
}

// GetByID retrieves a tenant by ID.
func (r *TenantRepository) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	query := `
		SELECT id, subdomain, name, active, created_at, updated_at
		FROM tenants
		WHERE id = $1
	`

	var tenant *domain.Tenant
	err := r.retrier.Retry(ctx, func() error {
		t, err := scanTenant(r.pool.QueryRow(ctx, query, id))
		if err != nil {
			return err
		}
		tenant = t
		return nil
	})
	return tenant, err
}

// GetBySubdomain retrieves a tenant by its subdomain label.
func (r *TenantRepository) GetBySubdomain(ctx context.Context, subdomain string) (*domain.Tenant, error) {
	query := `
		SELECT id, subdomain, name, active, created_at, updated_at
		FROM tenants
		WHERE subdomain = lower($1)
	`

	var tenant *domain.Tenant
	err := r.retrier.Retry(ctx, func() error {
		t, err := scanTenant(r.pool.QueryRow(ctx, query, subdomain))
		if err != nil {
			return err
		}
		tenant = t
		return nil
	})
	return tenant, err
}

func scanTenant(row pgx.Row) (*domain.Tenant, error) {
	var tenant domain.Tenant
	err := row.Scan(
		&tenant.ID,
		&tenant.Subdomain,
		&tenant.Name,
		&tenant.Active,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTenantNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}
