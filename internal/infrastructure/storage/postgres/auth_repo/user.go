// Package auth_repo provides PostgreSQL implementations for auth repositories.
package auth_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"agrostock/internal/core/apperror"
	"agrostock/internal/core/id"
	"agrostock/internal/domain/auth"
	"agrostock/internal/infrastructure/storage/postgres"
)

const userCols = `id, tenant_id, email, password_hash, name, role,
	   is_active, last_login_at, failed_login_attempts, locked_until,
	   created_at, updated_at, version`

// UserRepo implements auth.UserRepository.
type UserRepo struct {
	tx *postgres.TxManager
}

// NewUserRepo creates a new user repository.
func NewUserRepo(tx *postgres.TxManager) *UserRepo {
	return &UserRepo{tx: tx}
}

var _ auth.UserRepository = (*UserRepo)(nil)

// Create creates a new user.
func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	query := `
		INSERT INTO users (
			id, tenant_id, email, password_hash, name, role,
			is_active, last_login_at, failed_login_attempts, locked_until,
			created_at, updated_at, version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.tx.GetQuerier(ctx).Exec(ctx, query,
		user.ID, user.TenantID, user.Email, user.PasswordHash, user.Name, user.Role,
		user.IsActive, user.LastLoginAt, user.FailedLoginAttempts, user.LockedUntil,
		user.CreatedAt, user.UpdatedAt, user.Version,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicate("user", "email", user.Email)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// FindByEmail looks up a user across tenants; emails are globally unique.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	query := `SELECT ` + userCols + ` FROM users WHERE LOWER(email) = LOWER($1)`

	user, err := r.scanOne(ctx, query, email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("user", email)
		}
		return nil, err
	}
	return user, nil
}

// GetByID retrieves a user within the tenant.
func (r *UserRepo) GetByID(ctx context.Context, tenantID, userID id.ID) (*auth.User, error) {
	query := `SELECT ` + userCols + ` FROM users WHERE tenant_id = $1 AND id = $2`
	return r.scanOne(ctx, query, tenantID, userID)
}

// Update persists the row with optimistic locking on version.
func (r *UserRepo) Update(ctx context.Context, user *auth.User) error {
	query := `
		UPDATE users
		SET email = $1, password_hash = $2, name = $3, role = $4,
		    is_active = $5, last_login_at = $6, failed_login_attempts = $7,
		    locked_until = $8, updated_at = NOW(), version = version + 1
		WHERE id = $9 AND tenant_id = $10 AND version = $11
	`

	result, err := r.tx.GetQuerier(ctx).Exec(ctx, query,
		user.Email, user.PasswordHash, user.Name, user.Role,
		user.IsActive, user.LastLoginAt, user.FailedLoginAttempts,
		user.LockedUntil,
		user.ID, user.TenantID, user.Version,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("user", user.ID)
	}

	return nil
}

// List returns users of a tenant ordered by creation time.
func (r *UserRepo) List(ctx context.Context, tenantID id.ID, limit, offset int) ([]*auth.User, int64, error) {
	querier := r.tx.GetQuerier(ctx)

	var total int64
	if err := querier.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE tenant_id = $1`, tenantID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	if limit <= 0 {
		limit = 50
	}

	query := `SELECT ` + userCols + `
		FROM users
		WHERE tenant_id = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3`

	rows, err := querier.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []*auth.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}

	return users, total, rows.Err()
}

// ExistsByEmail reports whether a user with the email exists in any tenant.
func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var one int
	err := r.tx.GetQuerier(ctx).QueryRow(ctx,
		`SELECT 1 FROM users WHERE LOWER(email) = LOWER($1) LIMIT 1`, email,
	).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists by email: %w", err)
	}
	return true, nil
}

func (r *UserRepo) scanOne(ctx context.Context, query string, args ...any) (*auth.User, error) {
	row := r.tx.GetQuerier(ctx).QueryRow(ctx, query, args...)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFound("user", "matching query")
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func scanUser(row pgx.Row) (*auth.User, error) {
	var user auth.User
	err := row.Scan(
		&user.ID, &user.TenantID, &user.Email, &user.PasswordHash, &user.Name, &user.Role,
		&user.IsActive, &user.LastLoginAt, &user.FailedLoginAttempts, &user.LockedUntil,
		&user.CreatedAt, &user.UpdatedAt, &user.Version,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
