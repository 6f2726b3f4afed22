package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/platops/tenant-engine/internal/api/middleware"
	"github.com/platops/tenant-engine/internal/core/domain"
)

// requestContext extracts the RequestContext resolved by the middleware
// chain and fast-fails before any service call. Its absence means the
// pipeline did not run — treat as unauthenticated rather than guessing.
func requestContext(c echo.Context) (*domain.RequestContext, error) {
	rc := middleware.RequestContextFrom(c)
	if rc == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authorization context")
	}
	return rc, nil
}
