package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/pixelforge/nexus/internal/core/domain"
	"github.com/pixelforge/nexus/internal/core/ports"
)

func TestAuthHandler_Login_Success(t *testing.T) {
	expires := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	stub := &stubAuthService{
		loginFn: func(_ context.Context, username, password string) (*ports.Session, error) {
			if username != "lena" || password != "secret-pass" {
				t.Fatalf("unexpected args: %s %s", username, password)
			}
			return &ports.Session{Token: "token123", ExpiresAt: expires, User: leadUser}, nil
		},
	}
	c, rec := newContext(t, http.MethodPost, "/auth/login", `{"username":"lena","password":"secret-pass"}`, nil)

	if err := NewAuthHandler(stub).Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Token != "token123" || resp.TokenType != "Bearer" || !resp.ExpiresAt.Equal(expires) {
		t.Fatalf("unexpected session: %+v", resp)
	}
	if resp.User.Username != "lena" || resp.User.Role != "PROJECT_LEAD" || resp.User.RoleDisplayName != "Project Lead" {
		t.Fatalf("unexpected user payload: %+v", resp.User)
	}
}

func TestAuthHandler_Login_ServiceErrorPropagates(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (*ports.Session, error) {
			return nil, domain.ErrAccountDisabled
		},
	}
	c, _ := newContext(t, http.MethodPost, "/auth/login", `{"username":"lena","password":"bad"}`, nil)

	if err := NewAuthHandler(stub).Login(c); !errors.Is(err, domain.ErrAccountDisabled) {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (*ports.Session, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	for _, body := range []string{"{", `{"username":"lena"}`} {
		c, _ := newContext(t, http.MethodPost, "/auth/login", body, nil)
		if code := httpCode(t, NewAuthHandler(stub).Login(c)); code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, code)
		}
	}
}

func TestAuthHandler_Refresh(t *testing.T) {
	stub := &stubAuthService{
		refreshFn: func(_ context.Context, raw string) (*ports.Session, error) {
			if raw != "old-token" {
				t.Fatalf("unexpected token %q", raw)
			}
			return &ports.Session{Token: "new-token", User: leadUser}, nil
		},
	}
	c, rec := newContext(t, http.MethodPost, "/auth/refresh", "", nil)
	c.Request().Header.Set("Authorization", "Bearer old-token")

	if err := NewAuthHandler(stub).Refresh(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp sessionResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Token != "new-token" {
		t.Fatalf("expected refreshed token, got %+v", resp)
	}
}

func TestAuthHandler_Refresh_MissingToken(t *testing.T) {
	c, _ := newContext(t, http.MethodPost, "/auth/refresh", "", nil)
	if code := httpCode(t, NewAuthHandler(&stubAuthService{}).Refresh(c)); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestAuthHandler_ValidateAndMe(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	c, rec := newContext(t, http.MethodGet, "/auth/validate", "", leadUser)
	if err := h.Validate(c); err != nil {
		t.Fatalf("validate: %v", err)
	}
	var v tokenValidResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &v)
	if !v.Valid || v.User.ID != "lead" {
		t.Fatalf("unexpected validate payload: %+v", v)
	}

	c, rec = newContext(t, http.MethodGet, "/auth/me", "", adminUser)
	if err := h.Me(c); err != nil {
		t.Fatalf("me: %v", err)
	}
	var u userResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &u)
	if u.Username != "root" || u.Role != "ADMIN" {
		t.Fatalf("unexpected me payload: %+v", u)
	}

	c, _ = newContext(t, http.MethodGet, "/auth/me", "", nil)
	if code := httpCode(t, h.Me(c)); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without user, got %d", code)
	}
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	var gotUser, gotCurrent, gotNext string
	stub := &stubAuthService{
		changePasswordFn: func(_ context.Context, username, current, next string) error {
			gotUser, gotCurrent, gotNext = username, current, next
			return nil
		},
	}
	body := `{"current_password":"old-secret","new_password":"new-secret","confirm_password":"new-secret"}`
	c, rec := newContext(t, http.MethodPut, "/users/change-password", body, leadUser)

	if err := NewAuthHandler(stub).ChangePassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if gotUser != "lena" || gotCurrent != "old-secret" || gotNext != "new-secret" {
		t.Fatalf("unexpected args: %s %s %s", gotUser, gotCurrent, gotNext)
	}
}

func TestAuthHandler_ChangePassword_Mismatch(t *testing.T) {
	stub := &stubAuthService{
		changePasswordFn: func(context.Context, string, string, string) error {
			t.Fatalf("should not be called")
			return nil
		},
	}
	body := `{"current_password":"old-secret","new_password":"new-secret","confirm_password":"other-secret"}`
	c, _ := newContext(t, http.MethodPut, "/users/change-password", body, leadUser)

	if code := httpCode(t, NewAuthHandler(stub).ChangePassword(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}
