package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pixelforge/nexus/internal/api/middleware"
	"github.com/pixelforge/nexus/internal/core/domain"
)

// ctxPrincipal returns the caller injected by the Auth middleware. Its
// absence means the route was registered without authentication.
func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	p, ok := middleware.Principal(c)
	if !ok {
		return domain.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return p, nil
}

// bindAndValidate decodes the request body into req and runs the validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
