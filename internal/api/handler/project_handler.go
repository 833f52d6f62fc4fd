package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pixelforge/nexus/internal/core/domain"
	"github.com/pixelforge/nexus/internal/core/ports"
)

// ProjectHandler handles HTTP requests for project operations.
type ProjectHandler struct {
	service ports.ProjectService
	now     func() time.Time
}

func NewProjectHandler(service ports.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service, now: time.Now}
}

func (r projectRequest) toInput() (ports.ProjectInput, error) {
	deadline, err := time.Parse(dateLayout, r.Deadline)
	if err != nil {
		return ports.ProjectInput{}, echo.NewHTTPError(http.StatusBadRequest, "deadline must be a date formatted as 2006-01-02")
	}
	return ports.ProjectInput{
		Name:        r.Name,
		Description: r.Description,
		Deadline:    deadline,
		LeadID:      r.LeadID,
	}, nil
}

// Create handles POST /projects/create.
//
// @Summary      Create a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      projectRequest  true  "Project details"
// @Success      201   {object}  projectResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /projects/create [post]
func (h *ProjectHandler) Create(c echo.Context) error {
	caller, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req projectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in, err := req.toInput()
	if err != nil {
		return err
	}

	p, err := h.service.Create(c.Request().Context(), caller, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toProjectResponse(p, h.now()))
}

// List handles GET /projects. The result is scoped to the caller's role.
//
// @Summary      List visible projects
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  projectResponse
// @Router       /projects [get]
func (h *ProjectHandler) List(c echo.Context) error {
	return h.list(c, h.service.ListForUser)
}

// Active handles GET /projects/active.
//
// @Summary      List active projects
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   projectResponse
// @Failure      403  {object}  errorResponse
// @Router       /projects/active [get]
func (h *ProjectHandler) Active(c echo.Context) error {
	return h.list(c, h.service.ListActive)
}

// Overdue handles GET /projects/overdue.
//
// @Summary      List overdue projects
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   projectResponse
// @Failure      403  {object}  errorResponse
// @Router       /projects/overdue [get]
func (h *ProjectHandler) Overdue(c echo.Context) error {
	return h.list(c, h.service.ListOverdue)
}

// Get handles GET /projects/:id.
//
// @Summary      Get a project
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  projectResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /projects/{id} [get]
func (h *ProjectHandler) Get(c echo.Context) error {
	return h.one(c, http.StatusOK, h.service.Get)
}

// Update handles PUT /projects/:id.
//
// @Summary      Update a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Project ID"
// @Param        body  body      projectRequest  true  "Project details"
// @Success      200   {object}  projectResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /projects/{id} [put]
func (h *ProjectHandler) Update(c echo.Context) error {
	var req projectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in, err := req.toInput()
	if err != nil {
		return err
	}
	return h.one(c, http.StatusOK, func(ctx context.Context, caller domain.Principal, id string) (*domain.Project, error) {
		return h.service.Update(ctx, caller, id, in)
	})
}

// AssignDevelopers handles PUT /projects/:id/assign.
//
// @Summary      Replace the developers assigned to a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                   true  "Project ID"
// @Param        body  body      assignDevelopersRequest  true  "Developer IDs"
// @Success      200   {object}  projectResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /projects/{id}/assign [put]
func (h *ProjectHandler) AssignDevelopers(c echo.Context) error {
	var req assignDevelopersRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	return h.one(c, http.StatusOK, func(ctx context.Context, caller domain.Principal, id string) (*domain.Project, error) {
		return h.service.AssignDevelopers(ctx, caller, id, req.DeveloperIDs)
	})
}

// Complete handles PUT /projects/:id/complete.
//
// @Summary      Mark a project completed
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  projectResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /projects/{id}/complete [put]
func (h *ProjectHandler) Complete(c echo.Context) error {
	return h.one(c, http.StatusOK, h.service.Complete)
}

// Reactivate handles PUT /projects/:id/reactivate.
//
// @Summary      Reactivate a completed project
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  projectResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /projects/{id}/reactivate [put]
func (h *ProjectHandler) Reactivate(c echo.Context) error {
	return h.one(c, http.StatusOK, h.service.Reactivate)
}

// Delete handles DELETE /projects/:id. Documents go with the project.
//
// @Summary      Delete a project
// @Tags         projects
// @Security     BearerAuth
// @Param        id   path  string  true  "Project ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /projects/{id} [delete]
func (h *ProjectHandler) Delete(c echo.Context) error {
	caller, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), caller, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ProjectHandler) list(c echo.Context, fetch func(context.Context, domain.Principal) ([]*domain.Project, error)) error {
	caller, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	projects, err := fetch(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProjectResponses(projects, h.now()))
}

func (h *ProjectHandler) one(c echo.Context, status int, op func(context.Context, domain.Principal, string) (*domain.Project, error)) error {
	caller, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	p, err := op(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(status, toProjectResponse(p, h.now()))
}
