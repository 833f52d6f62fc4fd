// Package token issues and verifies the HS256 bearer tokens handed to clients
// after login. The codec is immutable once built and safe for concurrent use.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pixelforge/nexus/internal/core/domain"
)

// MinSecretLength is the smallest accepted HS256 key, in bytes.
const MinSecretLength = 32

// Codec signs and verifies tokens with a process-wide symmetric key.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// NewCodec copies secret so later mutation of the caller's slice cannot
// affect signing.
func NewCodec(secret []byte, ttl time.Duration) (*Codec, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("token codec: secret must be at least %d bytes", MinSecretLength)
	}
	if ttl < time.Second {
		return nil, fmt.Errorf("token codec: ttl must be at least 1s, got %s", ttl)
	}
	key := make([]byte, len(secret))
	copy(key, secret)
	return &Codec{secret: key, ttl: ttl}, nil
}

// TTL is the configured token lifetime.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Issue signs a token for subject valid from now until now+ttl. Timestamps are
// truncated to whole seconds, the resolution of the encoded claims.
func (c *Codec) Issue(subject string, role domain.Role, now time.Time, ttl time.Duration) (string, domain.Claims, error) {
	if subject == "" {
		return "", domain.Claims{}, fmt.Errorf("issue token: %w: empty subject", domain.ErrInvalidInput)
	}
	if !role.Valid() {
		return "", domain.Claims{}, fmt.Errorf("issue token: %w: %s", domain.ErrInvalidInput, role)
	}
	if ttl < time.Second {
		return "", domain.Claims{}, fmt.Errorf("issue token: %w: ttl %s", domain.ErrInvalidInput, ttl)
	}

	issued := now.UTC().Truncate(time.Second)
	expires := issued.Add(ttl).Truncate(time.Second)

	tc := tokenClaims{
		Role: role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tc).SignedString(c.secret)
	if err != nil {
		return "", domain.Claims{}, fmt.Errorf("issue token: sign: %w", err)
	}

	return signed, domain.Claims{
		Subject:   subject,
		Role:      role,
		IssuedAt:  issued,
		ExpiresAt: expires,
	}, nil
}

// Verify decodes raw and checks its signature, then its expiry against now.
// The returned error always wraps one of ErrTokenMalformed,
// ErrTokenSignatureInvalid or ErrTokenExpired.
func (c *Codec) Verify(raw string, now time.Time) (domain.Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	var tc tokenClaims
	tkn, err := parser.ParseWithClaims(raw, &tc, c.keyFunc)
	if err != nil {
		return domain.Claims{}, fmt.Errorf("verify token: %w", classify(err))
	}
	if !tkn.Valid {
		return domain.Claims{}, fmt.Errorf("verify token: %w", domain.ErrTokenMalformed)
	}

	claims, err := decode(&tc)
	if err != nil {
		return domain.Claims{}, fmt.Errorf("verify token: %w", err)
	}
	return claims, nil
}

// Refresh reissues a currently valid token with a fresh lifetime. Expired
// tokens are not refreshable; the holder has to log in again.
func (c *Codec) Refresh(raw string, now time.Time) (string, domain.Claims, error) {
	claims, err := c.Verify(raw, now)
	if err != nil {
		return "", domain.Claims{}, err
	}
	return c.Renew(claims, claims.Role, now)
}

// Renew issues a successor to prev for role. The successor is issued no
// earlier than one second after prev so that its expiry is strictly later,
// even when now falls within the second prev was issued in.
func (c *Codec) Renew(prev domain.Claims, role domain.Role, now time.Time) (string, domain.Claims, error) {
	issued := now.UTC().Truncate(time.Second)
	if floor := prev.IssuedAt.Add(time.Second); issued.Before(floor) {
		issued = floor
	}
	return c.Issue(prev.Subject, role, issued, c.ttl)
}

func (c *Codec) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	return c.secret, nil
}

// classify maps jwt parser errors onto the domain taxonomy. Signature errors
// take precedence over expiry because the parser verifies the signature first.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return domain.ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return domain.ErrTokenSignatureInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.ErrTokenExpired
	default:
		return domain.ErrTokenMalformed
	}
}

func decode(tc *tokenClaims) (domain.Claims, error) {
	if tc.Subject == "" || tc.ExpiresAt == nil || tc.IssuedAt == nil {
		return domain.Claims{}, domain.ErrTokenMalformed
	}
	role, err := domain.ParseRole(tc.Role)
	if err != nil {
		return domain.Claims{}, domain.ErrTokenMalformed
	}
	return domain.Claims{
		Subject:   tc.Subject,
		Role:      role,
		IssuedAt:  tc.IssuedAt.Time.UTC(),
		ExpiresAt: tc.ExpiresAt.Time.UTC(),
	}, nil
}
