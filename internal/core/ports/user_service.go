package ports

import (
	"context"

	"github.com/pixelforge/nexus/internal/core/domain"
)

// CreateUserInput carries the fields of a new account.
type CreateUserInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      domain.Role
}

// UserService manages accounts. Every call is made on behalf of caller.
type UserService interface {
	Create(ctx context.Context, caller domain.Principal, in CreateUserInput) (*domain.User, error)
	List(ctx context.Context, caller domain.Principal) ([]*domain.User, error)
	Get(ctx context.Context, caller domain.Principal, id string) (*domain.User, error)
	Profile(ctx context.Context, caller domain.Principal) (*domain.User, error)
	ListByRole(ctx context.Context, caller domain.Principal, role domain.Role) ([]*domain.User, error)
	AvailableDevelopers(ctx context.Context, caller domain.Principal) ([]*domain.User, error)
	ProjectLeads(ctx context.Context, caller domain.Principal) ([]*domain.User, error)
	UpdateRole(ctx context.Context, caller domain.Principal, id string, role domain.Role) (*domain.User, error)
	SetEnabled(ctx context.Context, caller domain.Principal, id string, enabled bool) (*domain.User, error)
}
