package ports

import (
	"context"

	"github.com/pixelforge/nexus/internal/core/domain"
)

// UserFilter narrows a user listing. The zero value matches every user.
type UserFilter struct {
	Role        domain.Role // 0 = any role
	EnabledOnly bool
}

// UserRepository is the credential store. Username and email lookups are
// case-insensitive and both are unique across all users.
type UserRepository interface {
	// Create returns domain.ErrUserExists when the username or email is taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]*domain.User, error)
	// Update persists the mutable fields: names, role, enabled flag and password hash.
	Update(ctx context.Context, user *domain.User) error
}
