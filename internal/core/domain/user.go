package domain

import (
	"strings"
	"time"
)

// User models an identity in the credential store.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Enabled      bool      `json:"enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Principal returns the slice of the identity the access evaluator needs.
func (u *User) Principal() Principal {
	return Principal{ID: u.ID, Username: u.Username, Role: u.Role}
}

// Principal is an authenticated caller.
type Principal struct {
	ID       string
	Username string
	Role     Role
}

// NormalizeUsername folds a username or email for case-insensitive comparison.
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
