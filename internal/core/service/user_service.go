package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pixelforge/nexus/internal/core/access"
	"github.com/pixelforge/nexus/internal/core/domain"
	"github.com/pixelforge/nexus/internal/core/ports"
)

// UserService implements account management.
type UserService struct {
	repo     ports.UserRepository
	projects ports.ProjectRepository
	cost     int
	now      func() time.Time
	log      zerolog.Logger
}

// NewUserService builds a UserService. projects is consulted before a role
// change so that no project keeps a lead who can no longer lead.
func NewUserService(
	repo ports.UserRepository,
	projects ports.ProjectRepository,
	bcryptCost int,
	log zerolog.Logger,
) (*UserService, error) {
	cost, err := validateBcryptCost(bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("new user service: %w", err)
	}
	return &UserService{repo: repo, projects: projects, cost: cost, now: utcNow, log: log}, nil
}

func (s *UserService) Create(ctx context.Context, caller domain.Principal, in ports.CreateUserInput) (*domain.User, error) {
	if err := authorize(caller, access.ManageUsers, access.Facts{}); err != nil {
		return nil, err
	}
	return s.create(ctx, in)
}

// EnsureAdmin creates an enabled ADMIN account unless username already
// exists. It reports whether an account was created.
func (s *UserService) EnsureAdmin(ctx context.Context, username, email, password string) (bool, error) {
	_, err := s.repo.FindByUsername(ctx, domain.NormalizeUsername(username))
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return false, fmt.Errorf("ensure admin: %w", err)
	}

	_, err = s.create(ctx, ports.CreateUserInput{
		Username: username,
		Email:    email,
		Password: password,
		Role:     domain.RoleAdmin,
	})
	if errors.Is(err, domain.ErrUserExists) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ensure admin: %w", err)
	}
	return true, nil
}

func (s *UserService) create(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	if username == "" {
		return nil, fmt.Errorf("create user: %w: username is required", domain.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil || strings.ContainsAny(email, " <>") {
		return nil, fmt.Errorf("create user: %w: invalid email", domain.ErrInvalidInput)
	}
	if !in.Role.Valid() {
		return nil, fmt.Errorf("create user: %w: invalid role", domain.ErrInvalidInput)
	}

	hash, err := hashPassword(in.Password, s.cost)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	now := s.now()
	created, err := s.repo.Create(ctx, &domain.User{
		Username:     username,
		Email:        email,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: hash,
		Role:         in.Role,
		Enabled:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Str("user_id", created.ID).Str("username", created.Username).Str("role", created.Role.String()).Msg("user created")
	return created, nil
}

func (s *UserService) List(ctx context.Context, caller domain.Principal) ([]*domain.User, error) {
	if err := authorize(caller, access.ManageUsers, access.Facts{}); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, ports.UserFilter{})
}

func (s *UserService) Get(ctx context.Context, caller domain.Principal, id string) (*domain.User, error) {
	if err := authorize(caller, access.ManageUsers, access.Facts{}); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

// Profile returns the caller's own account.
func (s *UserService) Profile(ctx context.Context, caller domain.Principal) (*domain.User, error) {
	return s.repo.FindByID(ctx, caller.ID)
}

// ListByRole returns enabled users holding role.
func (s *UserService) ListByRole(ctx context.Context, caller domain.Principal, role domain.Role) ([]*domain.User, error) {
	if err := authorize(caller, access.ListAssignableUsers, access.Facts{}); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, fmt.Errorf("list users: %w: invalid role", domain.ErrInvalidInput)
	}
	return s.repo.List(ctx, ports.UserFilter{Role: role, EnabledOnly: true})
}

func (s *UserService) AvailableDevelopers(ctx context.Context, caller domain.Principal) ([]*domain.User, error) {
	return s.ListByRole(ctx, caller, domain.RoleDeveloper)
}

func (s *UserService) ProjectLeads(ctx context.Context, caller domain.Principal) ([]*domain.User, error) {
	if err := authorize(caller, access.ManageUsers, access.Facts{}); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, ports.UserFilter{Role: domain.RoleProjectLead, EnabledOnly: true})
}

func (s *UserService) UpdateRole(ctx context.Context, caller domain.Principal, id string, role domain.Role) (*domain.User, error) {
	if err := authorize(caller, access.ManageUsers, access.Facts{}); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, fmt.Errorf("update role: %w: invalid role", domain.ErrInvalidInput)
	}
	if !role.CanLeadProjects() {
		if err := s.checkNotLeading(ctx, id); err != nil {
			return nil, err
		}
	}
	return s.mutate(ctx, id, func(u *domain.User) { u.Role = role })
}

// checkNotLeading rejects demoting a user who still leads a project.
func (s *UserService) checkNotLeading(ctx context.Context, id string) error {
	led, err := s.projects.List(ctx, ports.ProjectFilter{LeadID: id})
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	if len(led) > 0 {
		return fmt.Errorf("update role: %w: user leads %d project(s), reassign them first", domain.ErrInvalidAssignment, len(led))
	}
	return nil
}

// SetEnabled enables or disables an account. Admins cannot disable themselves.
func (s *UserService) SetEnabled(ctx context.Context, caller domain.Principal, id string, enabled bool) (*domain.User, error) {
	if err := authorize(caller, access.ManageUsers, access.Facts{}); err != nil {
		return nil, err
	}
	if !enabled && id == caller.ID {
		return nil, fmt.Errorf("disable user: %w: cannot disable own account", domain.ErrInvalidInput)
	}
	return s.mutate(ctx, id, func(u *domain.User) { u.Enabled = enabled })
}

func (s *UserService) mutate(ctx context.Context, id string, apply func(*domain.User)) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(user)
	user.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	s.log.Info().Str("user_id", user.ID).Str("role", user.Role.String()).Bool("enabled", user.Enabled).Msg("user updated")
	return user, nil
}
