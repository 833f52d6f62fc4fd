package ports

import (
	"context"
	"time"

	"github.com/pixelforge/nexus/internal/core/domain"
)

// Session is the result of a successful login or refresh.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (*Session, error)
	// Authenticate verifies a bearer token and reloads the identity it names.
	Authenticate(ctx context.Context, rawToken string) (*domain.User, error)
	Refresh(ctx context.Context, rawToken string) (*Session, error)
	ChangePassword(ctx context.Context, username, current, next string) error
}
