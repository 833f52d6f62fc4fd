package handler

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/pixelforge/nexus/internal/api/middleware"
	"github.com/pixelforge/nexus/internal/core/domain"
	"github.com/pixelforge/nexus/internal/core/ports"
)

var (
	adminUser = &domain.User{ID: "admin", Username: "root", Email: "root@example.com", Role: domain.RoleAdmin, Enabled: true}
	leadUser  = &domain.User{ID: "lead", Username: "lena", Email: "lena@example.com", Role: domain.RoleProjectLead, Enabled: true}
)

// newContext builds an echo context for a JSON request, optionally
// authenticated as user.
func newContext(t *testing.T, method, target, body string, user *domain.User) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if user != nil {
		c.Set(middleware.UserKey, user)
		c.Set(middleware.PrincipalKey, user.Principal())
	}
	return c, rec
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	return he.Code
}

// --- Auth ---

type stubAuthService struct {
	loginFn          func(ctx context.Context, username, password string) (*ports.Session, error)
	authenticateFn   func(ctx context.Context, raw string) (*domain.User, error)
	refreshFn        func(ctx context.Context, raw string) (*ports.Session, error)
	changePasswordFn func(ctx context.Context, username, current, next string) error
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (*ports.Session, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubAuthService) Authenticate(ctx context.Context, raw string) (*domain.User, error) {
	return s.authenticateFn(ctx, raw)
}

func (s *stubAuthService) Refresh(ctx context.Context, raw string) (*ports.Session, error) {
	return s.refreshFn(ctx, raw)
}

func (s *stubAuthService) ChangePassword(ctx context.Context, username, current, next string) error {
	return s.changePasswordFn(ctx, username, current, next)
}

// --- Users ---

type stubUserService struct {
	ports.UserService
	createFn     func(ctx context.Context, caller domain.Principal, in ports.CreateUserInput) (*domain.User, error)
	listByRoleFn func(ctx context.Context, caller domain.Principal, role domain.Role) ([]*domain.User, error)
	setEnabledFn func(ctx context.Context, caller domain.Principal, id string, enabled bool) (*domain.User, error)
}

func (s *stubUserService) Create(ctx context.Context, caller domain.Principal, in ports.CreateUserInput) (*domain.User, error) {
	return s.createFn(ctx, caller, in)
}

func (s *stubUserService) ListByRole(ctx context.Context, caller domain.Principal, role domain.Role) ([]*domain.User, error) {
	return s.listByRoleFn(ctx, caller, role)
}

func (s *stubUserService) SetEnabled(ctx context.Context, caller domain.Principal, id string, enabled bool) (*domain.User, error) {
	return s.setEnabledFn(ctx, caller, id, enabled)
}

// --- Projects ---

type stubProjectService struct {
	ports.ProjectService
	createFn      func(ctx context.Context, caller domain.Principal, in ports.ProjectInput) (*domain.Project, error)
	listForUserFn func(ctx context.Context, caller domain.Principal) ([]*domain.Project, error)
	assignFn      func(ctx context.Context, caller domain.Principal, id string, devs []string) (*domain.Project, error)
	getFn         func(ctx context.Context, caller domain.Principal, id string) (*domain.Project, error)
	deleteFn      func(ctx context.Context, caller domain.Principal, id string) error
}

func (s *stubProjectService) Create(ctx context.Context, caller domain.Principal, in ports.ProjectInput) (*domain.Project, error) {
	return s.createFn(ctx, caller, in)
}

func (s *stubProjectService) ListForUser(ctx context.Context, caller domain.Principal) ([]*domain.Project, error) {
	return s.listForUserFn(ctx, caller)
}

func (s *stubProjectService) AssignDevelopers(ctx context.Context, caller domain.Principal, id string, devs []string) (*domain.Project, error) {
	return s.assignFn(ctx, caller, id, devs)
}

func (s *stubProjectService) Get(ctx context.Context, caller domain.Principal, id string) (*domain.Project, error) {
	return s.getFn(ctx, caller, id)
}

func (s *stubProjectService) Delete(ctx context.Context, caller domain.Principal, id string) error {
	return s.deleteFn(ctx, caller, id)
}

// --- Documents ---

type stubDocumentService struct {
	ports.DocumentService
	uploadFn   func(ctx context.Context, caller domain.Principal, in ports.UploadInput) (*domain.Document, error)
	downloadFn func(ctx context.Context, caller domain.Principal, id string) (*domain.Document, io.ReadCloser, error)
}

func (s *stubDocumentService) Upload(ctx context.Context, caller domain.Principal, in ports.UploadInput) (*domain.Document, error) {
	return s.uploadFn(ctx, caller, in)
}

func (s *stubDocumentService) Download(ctx context.Context, caller domain.Principal, id string) (*domain.Document, io.ReadCloser, error) {
	return s.downloadFn(ctx, caller, id)
}

