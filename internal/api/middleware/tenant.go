package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/platops/tenant-engine/internal/api/metrics"
	"github.com/platops/tenant-engine/internal/core/domain"
	"github.com/platops/tenant-engine/internal/core/ports"
)

// TenantHeader is the request header carrying the declared tenant.
const TenantHeader = "X-Tenant-ID"

// TenantContext resolves the declared tenant against the verified claims
// and stores the resulting RequestContext. When required is false the route
// is platform-scoped: an absent header resolves to the reserved platform
// tenant. Runs strictly after Auth; a request without claims is rejected.
func TenantContext(authorizer ports.Authorizer, required bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := ClaimsFromContext(c)
			declared := c.Request().Header.Get(TenantHeader)

			rc, err := authorizer.ResolveContext(c.Request().Context(), claims, declared, required)
			if err != nil {
				metrics.AuthDecisionsTotal.WithLabelValues("denied", denialReason(err)).Inc()
				return err
			}

			c.Set(RequestContextKey, rc)
			return next(c)
		}
	}
}

func denialReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, domain.ErrTenantRequired):
		return "tenant_required"
	case errors.Is(err, domain.ErrTenantAccessDenied), errors.Is(err, domain.ErrTenantNotFound):
		return "tenant_denied"
	case errors.Is(err, domain.ErrTenantNotActive):
		return "tenant_inactive"
	case errors.Is(err, domain.ErrForbidden):
		return "role_denied"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return "upstream"
	default:
		return "error"
	}
}
