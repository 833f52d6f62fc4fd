package api

import (
	"strconv"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/pixelforge/nexus/internal/api/handler"
	"github.com/pixelforge/nexus/internal/api/middleware"
	"github.com/pixelforge/nexus/internal/core/domain"
	"github.com/pixelforge/nexus/internal/core/ports"

	_ "github.com/pixelforge/nexus/docs"
)

// multipartOverhead leaves room for form boundaries and fields around the file.
const multipartOverhead = 1 << 20

// Dependencies are the services and probes the HTTP layer is built on.
type Dependencies struct {
	Auth      ports.AuthService
	Users     ports.UserService
	Projects  ports.ProjectService
	Documents ports.DocumentService

	Checks         []handler.Check
	MaxUploadBytes int64
	Log            zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddleware("nexus"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	userHandler := handler.NewUserHandler(deps.Users)
	projectHandler := handler.NewProjectHandler(deps.Projects)
	documentHandler := handler.NewDocumentHandler(deps.Documents)
	requireAuth := middleware.Auth(deps.Auth)

	admin := middleware.RBAC(domain.RoleAdmin)
	leads := middleware.RBAC(domain.RoleAdmin, domain.RoleProjectLead)

	// --- Auth ---
	authGroup := e.Group("/auth")
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/refresh", authHandler.Refresh)
	authGroup.GET("/validate", authHandler.Validate, requireAuth)
	authGroup.GET("/me", authHandler.Me, requireAuth)

	// --- Users ---
	users := e.Group("/users", requireAuth)
	users.POST("/create", userHandler.Create, admin)
	users.GET("", userHandler.List, admin)
	users.GET("/role/:role", userHandler.ListByRole, leads)
	users.GET("/developers", userHandler.AvailableDevelopers, leads)
	users.GET("/project-leads", userHandler.ProjectLeads, admin)
	users.GET("/profile", userHandler.Profile)
	users.PUT("/change-password", authHandler.ChangePassword)
	users.GET("/:id", userHandler.Get, admin)
	users.PUT("/:id/role", userHandler.UpdateRole, admin)
	users.PUT("/:id/disable", userHandler.Disable, admin)
	users.PUT("/:id/enable", userHandler.Enable, admin)

	// --- Projects ---
	projects := e.Group("/projects", requireAuth)
	projects.POST("/create", projectHandler.Create, admin)
	projects.GET("", projectHandler.List)
	projects.GET("/active", projectHandler.Active, admin)
	projects.GET("/overdue", projectHandler.Overdue, admin)
	projects.GET("/:id", projectHandler.Get)
	projects.PUT("/:id", projectHandler.Update, admin)
	projects.PUT("/:id/assign", projectHandler.AssignDevelopers, leads)
	projects.PUT("/:id/complete", projectHandler.Complete, admin)
	projects.PUT("/:id/reactivate", projectHandler.Reactivate, admin)
	projects.DELETE("/:id", projectHandler.Delete, admin)

	// --- Documents ---
	documents := e.Group("/documents", requireAuth)
	documents.POST("/projects/:projectId/upload", documentHandler.Upload,
		leads, echomiddleware.BodyLimit(bodyLimit(deps.MaxUploadBytes)))
	documents.GET("/projects/:projectId", documentHandler.ListForProject)
	documents.GET("/my-uploads", documentHandler.MyUploads)
	documents.GET("/:id", documentHandler.Get)
	documents.GET("/:id/download", documentHandler.Download)
	documents.DELETE("/:id", documentHandler.Delete)

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Checks...)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// bodyLimit renders a byte count in the "<n>B" form BodyLimit parses.
func bodyLimit(maxUpload int64) string {
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}
	return strconv.FormatInt(maxUpload+multipartOverhead, 10) + "B"
}
