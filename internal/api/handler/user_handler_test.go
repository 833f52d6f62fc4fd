package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/pixelforge/nexus/internal/core/domain"
	"github.com/pixelforge/nexus/internal/core/ports"
)

func TestUserHandler_Create(t *testing.T) {
	stub := &stubUserService{
		createFn: func(_ context.Context, caller domain.Principal, in ports.CreateUserInput) (*domain.User, error) {
			if caller.ID != "admin" {
				t.Fatalf("unexpected caller %+v", caller)
			}
			if in.Username != "dana" || in.Role != domain.RoleDeveloper || in.Password != "long-enough" {
				t.Fatalf("unexpected input %+v", in)
			}
			return &domain.User{ID: "u9", Username: in.Username, Email: in.Email, Role: in.Role, Enabled: true}, nil
		},
	}
	body := `{"username":"dana","email":"dana@example.com","password":"long-enough","role":"developer"}`
	c, rec := newContext(t, http.MethodPost, "/users/create", body, adminUser)

	if err := NewUserHandler(stub).Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var u userResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &u)
	if u.ID != "u9" || u.Role != "DEVELOPER" {
		t.Fatalf("unexpected payload %+v", u)
	}
}

func TestUserHandler_Create_Validation(t *testing.T) {
	stub := &stubUserService{
		createFn: func(context.Context, domain.Principal, ports.CreateUserInput) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	cases := map[string]string{
		"bad email":      `{"username":"dana","email":"nope","password":"long-enough","role":"DEVELOPER"}`,
		"short password": `{"username":"dana","email":"dana@example.com","password":"short","role":"DEVELOPER"}`,
		"missing role":   `{"username":"dana","email":"dana@example.com","password":"long-enough"}`,
	}
	for name, body := range cases {
		c, _ := newContext(t, http.MethodPost, "/users/create", body, adminUser)
		if code := httpCode(t, NewUserHandler(stub).Create(c)); code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", name, code)
		}
	}

	c, _ := newContext(t, http.MethodPost, "/users/create",
		`{"username":"dana","email":"dana@example.com","password":"long-enough","role":"INTERN"}`, adminUser)
	if err := NewUserHandler(stub).Create(c); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("unknown role: expected ErrInvalidInput, got %v", err)
	}
}

func TestUserHandler_ListByRole(t *testing.T) {
	stub := &stubUserService{
		listByRoleFn: func(_ context.Context, _ domain.Principal, role domain.Role) ([]*domain.User, error) {
			if role != domain.RoleProjectLead {
				t.Fatalf("unexpected role %s", role)
			}
			return []*domain.User{leadUser}, nil
		},
	}
	c, rec := newContext(t, http.MethodGet, "/users/role/PROJECT_LEAD", "", adminUser)
	c.SetParamNames("role")
	c.SetParamValues("PROJECT_LEAD")

	if err := NewUserHandler(stub).ListByRole(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var users []userResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &users)
	if len(users) != 1 || users[0].ID != "lead" {
		t.Fatalf("unexpected payload %+v", users)
	}
}

func TestUserHandler_DisableEnable(t *testing.T) {
	var calls []bool
	stub := &stubUserService{
		setEnabledFn: func(_ context.Context, _ domain.Principal, id string, enabled bool) (*domain.User, error) {
			if id != "u9" {
				t.Fatalf("unexpected id %q", id)
			}
			calls = append(calls, enabled)
			return &domain.User{ID: id, Role: domain.RoleDeveloper, Enabled: enabled}, nil
		},
	}
	h := NewUserHandler(stub)

	c, _ := newContext(t, http.MethodPut, "/users/u9/disable", "", adminUser)
	c.SetParamNames("id")
	c.SetParamValues("u9")
	if err := h.Disable(c); err != nil {
		t.Fatalf("disable: %v", err)
	}

	c, _ = newContext(t, http.MethodPut, "/users/u9/enable", "", adminUser)
	c.SetParamNames("id")
	c.SetParamValues("u9")
	if err := h.Enable(c); err != nil {
		t.Fatalf("enable: %v", err)
	}

	if len(calls) != 2 || calls[0] || !calls[1] {
		t.Fatalf("unexpected calls %v", calls)
	}
}

func TestUserHandler_RequiresPrincipal(t *testing.T) {
	c, _ := newContext(t, http.MethodGet, "/users/profile", "", nil)
	if code := httpCode(t, NewUserHandler(&stubUserService{}).Profile(c)); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}
