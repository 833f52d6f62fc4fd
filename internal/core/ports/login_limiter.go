package ports

import "context"

// LoginLimiter throttles repeated failed logins for one normalised username.
type LoginLimiter interface {
	// Allowed reports whether another attempt may be made for key.
	Allowed(ctx context.Context, key string) (bool, error)
	// Fail records a failed attempt.
	Fail(ctx context.Context, key string) error
	// Reset clears the failure count after a successful login.
	Reset(ctx context.Context, key string) error
}
