package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/platops/tenant-engine/internal/api/metrics"
	"github.com/platops/tenant-engine/internal/core/domain"
)

// RequireRoles is the role authorization gate: it passes when the request's
// role set intersects the required set. An empty required set means
// "authenticated only". Which of a user's roles count is already decided by
// the declared tenant — a platform role opens platform routes, never tenant
// data, and vice versa; this gate only checks the intersection.
func RequireRoles(log zerolog.Logger, requiredRoles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rc := RequestContextFrom(c)
			if rc == nil {
				metrics.AuthDecisionsTotal.WithLabelValues("denied", "unauthenticated").Inc()
				return domain.ErrUnauthenticated
			}

			if !rc.HasAnyRole(requiredRoles...) {
				metrics.AuthDecisionsTotal.WithLabelValues("denied", "role_denied").Inc()
				log.Warn().
					Str("email", rc.Email).
					Str("tenant", rc.Tenant).
					Strs("required_roles", requiredRoles).
					Strs("actual_roles", rc.Roles.Values()).
					Str("path", c.Path()).
					Msg("authorization denied")
				return domain.ErrForbidden
			}

			metrics.AuthDecisionsTotal.WithLabelValues("allowed", "ok").Inc()
			return next(c)
		}
	}
}

// RequirePlatform restricts a route to requests running under the reserved
// platform tenant. A user holding platform roles who declares an ordinary
// tenant is denied here: the declared tenant, not the role set, selects
// which capabilities apply.
func RequirePlatform(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rc := RequestContextFrom(c)
			if rc == nil {
				metrics.AuthDecisionsTotal.WithLabelValues("denied", "unauthenticated").Inc()
				return domain.ErrUnauthenticated
			}
			if !rc.IsPlatform() {
				metrics.AuthDecisionsTotal.WithLabelValues("denied", "tenant_denied").Inc()
				log.Warn().
					Str("email", rc.Email).
					Str("tenant", rc.Tenant).
					Str("path", c.Path()).
					Msg("platform route declared a tenant context")
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
