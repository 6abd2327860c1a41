package auth

import (
	"context"

	"agrostock/internal/core/id"
)

// UserRepository persists users. Lookups are tenant-scoped except
// FindByEmail, which serves login before the tenant is known.
type UserRepository interface {
	Create(ctx context.Context, user *User) error

	// FindByEmail looks up across tenants; emails are globally unique.
	FindByEmail(ctx context.Context, email string) (*User, error)

	GetByID(ctx context.Context, tenantID, userID id.ID) (*User, error)

	// Update persists the row with optimistic locking on Version.
	Update(ctx context.Context, user *User) error

	List(ctx context.Context, tenantID id.ID, limit, offset int) ([]*User, int64, error)

	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
