package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pixelforge/nexus/internal/core/domain"
	"github.com/pixelforge/nexus/internal/core/ports"
)

// UserHandler handles account administration and lookups.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Create handles POST /users/create.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "New account"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /users/create [post]
func (h *UserHandler) Create(c echo.Context) error {
	caller, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req createUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return err
	}

	user, err := h.service.Create(c.Request().Context(), caller, ports.CreateUserInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      role,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// List handles GET /users.
//
// @Summary      List all users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   userResponse
// @Failure      403  {object}  errorResponse
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	return h.list(c, h.service.List)
}

// ListByRole handles GET /users/role/:role.
//
// @Summary      List enabled users with a role
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        role  path      string  true  "ADMIN, PROJECT_LEAD or DEVELOPER"
// @Success      200   {array}   userResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /users/role/{role} [get]
func (h *UserHandler) ListByRole(c echo.Context) error {
	role, err := domain.ParseRole(c.Param("role"))
	if err != nil {
		return err
	}
	return h.list(c, func(ctx context.Context, caller domain.Principal) ([]*domain.User, error) {
		return h.service.ListByRole(ctx, caller, role)
	})
}

// AvailableDevelopers handles GET /users/developers.
//
// @Summary      List developers available for assignment
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   userResponse
// @Failure      403  {object}  errorResponse
// @Router       /users/developers [get]
func (h *UserHandler) AvailableDevelopers(c echo.Context) error {
	return h.list(c, h.service.AvailableDevelopers)
}

// ProjectLeads handles GET /users/project-leads.
//
// @Summary      List project leads
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   userResponse
// @Failure      403  {object}  errorResponse
// @Router       /users/project-leads [get]
func (h *UserHandler) ProjectLeads(c echo.Context) error {
	return h.list(c, h.service.ProjectLeads)
}

// Get handles GET /users/:id.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  userResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	caller, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	user, err := h.service.Get(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Profile handles GET /users/profile.
//
// @Summary      Own profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Router       /users/profile [get]
func (h *UserHandler) Profile(c echo.Context) error {
	caller, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	user, err := h.service.Profile(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// UpdateRole handles PUT /users/:id/role.
//
// @Summary      Change a user's role
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User ID"
// @Param        body  body      updateRoleRequest  true  "New role"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /users/{id}/role [put]
func (h *UserHandler) UpdateRole(c echo.Context) error {
	caller, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req updateRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return err
	}

	user, err := h.service.UpdateRole(c.Request().Context(), caller, c.Param("id"), role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Disable handles PUT /users/:id/disable.
//
// @Summary      Disable a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  userResponse
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{id}/disable [put]
func (h *UserHandler) Disable(c echo.Context) error {
	return h.setEnabled(c, false)
}

// Enable handles PUT /users/:id/enable.
//
// @Summary      Enable a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  userResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{id}/enable [put]
func (h *UserHandler) Enable(c echo.Context) error {
	return h.setEnabled(c, true)
}

func (h *UserHandler) setEnabled(c echo.Context, enabled bool) error {
	caller, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	user, err := h.service.SetEnabled(c.Request().Context(), caller, c.Param("id"), enabled)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) list(c echo.Context, fetch func(context.Context, domain.Principal) ([]*domain.User, error)) error {
	caller, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	users, err := fetch(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponses(users))
}
