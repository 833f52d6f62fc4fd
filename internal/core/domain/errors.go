package domain

import (
	"errors"
	"fmt"
)

// Authentication failures. InvalidCredentials and AccountDisabled are kept
// apart for logging but presented identically to callers.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrTooManyAttempts    = errors.New("too many login attempts")
)

// Token verification failures.
var (
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")
)

// Authorization and lookup failures.
var (
	ErrForbidden         = errors.New("access forbidden")
	ErrInvalidAssignment = errors.New("invalid assignment")

	ErrNotFound         = errors.New("not found")
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrProjectNotFound  = fmt.Errorf("project %w", ErrNotFound)
	ErrDocumentNotFound = fmt.Errorf("document %w", ErrNotFound)
)

var (
	ErrUserExists   = errors.New("user already exists")
	ErrInvalidInput = errors.New("invalid input")
	ErrFileRejected = errors.New("file rejected")
)
