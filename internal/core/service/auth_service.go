package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/pixelforge/nexus/internal/core/domain"
	"github.com/pixelforge/nexus/internal/core/ports"
	"github.com/pixelforge/nexus/internal/core/token"
	"github.com/pixelforge/nexus/internal/pkg/metrics"
)

// dummyPassword is hashed once so that logins for unknown users still pay
// for a bcrypt comparison.
const dummyPassword = "nexus-login-timing-equaliser"

// AuthService implements login, token authentication and password changes.
type AuthService struct {
	users     ports.UserRepository
	codec     *token.Codec
	limiter   ports.LoginLimiter
	cost      int
	dummyHash []byte
	now       func() time.Time
	log       zerolog.Logger
}

// NewAuthService builds an AuthService. limiter may be nil to disable login
// throttling; a zero bcryptCost selects DefaultBcryptCost.
func NewAuthService(
	users ports.UserRepository,
	codec *token.Codec,
	limiter ports.LoginLimiter,
	bcryptCost int,
	log zerolog.Logger,
) (*AuthService, error) {
	cost, err := validateBcryptCost(bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("new auth service: %w", err)
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte(dummyPassword), cost)
	if err != nil {
		return nil, fmt.Errorf("new auth service: %w", err)
	}
	return &AuthService{
		users:     users,
		codec:     codec,
		limiter:   limiter,
		cost:      cost,
		dummyHash: dummy,
		now:       utcNow,
		log:       log,
	}, nil
}

// Login checks credentials and issues a token. Unknown users and wrong
// passwords fail identically with ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.Session, error) {
	key := domain.NormalizeUsername(username)
	if key == "" || password == "" {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	if !s.attemptAllowed(ctx, key) {
		metrics.LoginsTotal.WithLabelValues("throttled").Inc()
		s.log.Warn().Str("username", key).Msg("login throttled")
		return nil, domain.ErrTooManyAttempts
	}

	user, err := s.users.FindByUsername(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			s.rejectLogin(ctx, key, "invalid_credentials")
			return nil, domain.ErrInvalidCredentials
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.rejectLogin(ctx, key, "invalid_credentials")
		return nil, domain.ErrInvalidCredentials
	}

	if !user.Enabled {
		metrics.LoginsTotal.WithLabelValues("account_disabled").Inc()
		s.log.Warn().Str("username", key).Str("reason", "account_disabled").Msg("login rejected")
		return nil, domain.ErrAccountDisabled
	}

	session, err := s.issue(user)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, key); err != nil {
			s.log.Warn().Err(err).Str("username", key).Msg("failed to reset login attempts")
		}
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("username", user.Username).Str("role", user.Role.String()).Msg("login succeeded")
	return session, nil
}

// Authenticate verifies rawToken and reloads the identity it names, so a
// disabled account or a changed role takes effect before the token expires.
func (s *AuthService) Authenticate(ctx context.Context, rawToken string) (*domain.User, error) {
	_, user, err := s.authenticate(ctx, rawToken)
	return user, err
}

// Refresh reissues a currently valid token. Expired tokens are rejected with
// ErrTokenExpired and the holder has to log in again. The new token carries
// the role the identity holds now, not the one embedded in rawToken.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*ports.Session, error) {
	claims, user, err := s.authenticate(ctx, rawToken)
	if err != nil {
		return nil, err
	}

	raw, renewed, err := s.codec.Renew(claims, user.Role, s.now())
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	s.log.Debug().Str("username", user.Username).Msg("token refreshed")
	return &ports.Session{Token: raw, ExpiresAt: renewed.ExpiresAt, User: user}, nil
}

func (s *AuthService) authenticate(ctx context.Context, rawToken string) (domain.Claims, *domain.User, error) {
	claims, err := s.codec.Verify(rawToken, s.now())
	if err != nil {
		metrics.TokenVerificationsTotal.WithLabelValues(verifyResult(err)).Inc()
		return domain.Claims{}, nil, err
	}

	user, err := s.identity(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) || errors.Is(err, domain.ErrAccountDisabled) {
			metrics.TokenVerificationsTotal.WithLabelValues("identity_rejected").Inc()
		}
		return domain.Claims{}, nil, err
	}

	metrics.TokenVerificationsTotal.WithLabelValues("valid").Inc()
	return claims, user, nil
}

// ChangePassword replaces the password of username after checking current.
func (s *AuthService) ChangePassword(ctx context.Context, username, current, next string) error {
	user, err := s.users.FindByUsername(ctx, domain.NormalizeUsername(username))
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return fmt.Errorf("change password: %w: current password is incorrect", domain.ErrInvalidInput)
	}

	hash, err := hashPassword(next, s.cost)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	user.PasswordHash = hash
	user.UpdatedAt = s.now()
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	s.log.Info().Str("username", user.Username).Msg("password changed")
	return nil
}

func (s *AuthService) issue(user *domain.User) (*ports.Session, error) {
	raw, claims, err := s.codec.Issue(user.Username, user.Role, s.now(), s.codec.TTL())
	if err != nil {
		return nil, err
	}
	return &ports.Session{Token: raw, ExpiresAt: claims.ExpiresAt, User: user}, nil
}

func (s *AuthService) identity(ctx context.Context, subject string) (*domain.User, error) {
	user, err := s.users.FindByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load identity: %w", err)
	}
	if !user.Enabled {
		return nil, domain.ErrAccountDisabled
	}
	return user, nil
}

// attemptAllowed fails open: a limiter outage must not lock everyone out.
func (s *AuthService) attemptAllowed(ctx context.Context, key string) bool {
	if s.limiter == nil {
		return true
	}
	ok, err := s.limiter.Allowed(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("username", key).Msg("login limiter unavailable, allowing attempt")
		return true
	}
	return ok
}

func (s *AuthService) rejectLogin(ctx context.Context, key, reason string) {
	metrics.LoginsTotal.WithLabelValues(reason).Inc()
	s.log.Warn().Str("username", key).Str("reason", reason).Msg("login rejected")
	if s.limiter == nil {
		return
	}
	if err := s.limiter.Fail(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("username", key).Msg("failed to record login attempt")
	}
}

func verifyResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrTokenSignatureInvalid):
		return "signature_invalid"
	default:
		return "malformed"
	}
}
