package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crmkit/authcore/internal/domain"
)

// UserRepository implements user lookups against PostgreSQL.
type UserRepository struct {
	pool    *pgxpool.Pool
	retrier *Retrier
}

// NewUserRepository creates a new user repository.
func NewUserRepository(pool *pgxpool.Pool, retrier *Retrier) *UserRepository {
	return &UserRepository{pool: pool, retrier: retrier}
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, tenant_id, email, name, hashed_password, roles, active, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var user *domain.User
	err := r.retrier.Retry(ctx, func() error {
		u, err := scanUser(r.pool.QueryRow(ctx, query, id))
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	return user, err
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, tenant_id, email, name, hashed_password, roles, active, created_at, updated_at
		FROM users
		WHERE lower(email) = lower($1)
	`

	var user *domain.User
	err := r.retrier.Retry(ctx, func() error {
		u, err := scanUser(r.pool.QueryRow(ctx, query, email))
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	return user, err
}

// UpdateLastLogin records a successful login.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE users
		SET last_login_at = $2, updated_at = $2
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query, id, at)
	return err
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	var roleCodes []string

	err := row.Scan(
		&user.ID,
		&user.TenantID,
		&user.Email,
		&user.Name,
		&user.HashedPassword,
		&roleCodes,
		&user.Active,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	user.Roles = make([]domain.Role, 0, len(roleCodes))
	for _, code := range roleCodes {
		role, err := domain.RoleFromCode(code)
		if err != nil {
			// Unknown codes in storage are skipped rather than granted.
			continue
		}
		user.Roles = append(user.Roles, role)
	}
	return &user, nil
}
