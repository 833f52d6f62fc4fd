package service

import (
	"fmt"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/pixelforge/nexus/internal/core/access"
	"github.com/pixelforge/nexus/internal/core/domain"
	"github.com/pixelforge/nexus/internal/pkg/metrics"
)

const (
	// DefaultBcryptCost is used when no cost is configured.
	DefaultBcryptCost = 12

	// MinPasswordLength is the shortest accepted password.
	MinPasswordLength = 8
	// bcrypt ignores input past 72 bytes; longer passwords are rejected instead.
	maxPasswordBytes = 72
)

// authorize consults the access matrix and records the decision.
func authorize(caller domain.Principal, action access.Action, facts access.Facts) error {
	err := access.Authorize(caller, action, facts)
	decision := access.Allow
	if err != nil {
		decision = access.Deny
	}
	metrics.AccessDecisionsTotal.WithLabelValues(action.String(), decision.String()).Inc()
	return err
}

func validateBcryptCost(cost int) (int, error) {
	if cost == 0 {
		return DefaultBcryptCost, nil
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return 0, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return cost, nil
}

func hashPassword(password string, cost int) (string, error) {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return "", fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, MinPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return "", fmt.Errorf("%w: password must be at most %d bytes", domain.ErrInvalidInput, maxPasswordBytes)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func utcNow() time.Time { return time.Now().UTC() }
