package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/pixelforge/nexus/internal/core/domain"
	"github.com/pixelforge/nexus/internal/core/ports"
)

type stubAuthService struct {
	authenticateFn func(ctx context.Context, raw string) (*domain.User, error)
}

func (s *stubAuthService) Login(context.Context, string, string) (*ports.Session, error) {
	return nil, nil
}

func (s *stubAuthService) Authenticate(ctx context.Context, raw string) (*domain.User, error) {
	return s.authenticateFn(ctx, raw)
}

func (s *stubAuthService) Refresh(context.Context, string) (*ports.Session, error) {
	return nil, nil
}

func (s *stubAuthService) ChangePassword(context.Context, string, string, string) error {
	return nil
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	stub := &stubAuthService{
		authenticateFn: func(_ context.Context, raw string) (*domain.User, error) {
			if raw != "good-token" {
				t.Fatalf("unexpected token %q", raw)
			}
			return &domain.User{ID: "u1", Username: "alice", Role: domain.RoleProjectLead, Enabled: true}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(stub)(func(c echo.Context) error {
		called = true
		p, ok := Principal(c)
		if !ok {
			t.Fatalf("principal not set")
		}
		if p.ID != "u1" || p.Username != "alice" || p.Role != domain.RoleProjectLead {
			t.Fatalf("unexpected principal: %+v", p)
		}
		if u, _ := c.Get(UserKey).(*domain.User); u == nil || u.Username != "alice" {
			t.Fatalf("user not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Auth(&stubAuthService{})(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_InvalidHeaderFormat(t *testing.T) {
	e := echo.New()
	for _, header := range []string{"Token abc", "Bearer", "Bearer   "} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler := Auth(&stubAuthService{})(func(c echo.Context) error {
			t.Fatalf("should not reach next")
			return nil
		})

		if err := handler(c); err != nil {
			e.HTTPErrorHandler(err, c)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestAuthMiddleware_ServiceErrorPropagates(t *testing.T) {
	e := echo.New()
	stub := &stubAuthService{
		authenticateFn: func(context.Context, string) (*domain.User, error) {
			return nil, domain.ErrTokenExpired
		},
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer stale")
	c := e.NewContext(req, httptest.NewRecorder())

	handler := Auth(stub)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != domain.ErrTokenExpired {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "BEARER abc.def")
	if tok, ok := BearerToken(req); !ok || tok != "abc.def" {
		t.Fatalf("BearerToken = %q, %v", tok, ok)
	}
}
