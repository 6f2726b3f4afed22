package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/platops/tenant-engine/internal/api/metrics"
	"github.com/platops/tenant-engine/internal/core/domain"
	"github.com/platops/tenant-engine/internal/core/ports"
)

// Echo context keys set by the middleware chain.
const (
	// ClaimsKey holds the *domain.Claims of the verified token.
	ClaimsKey = "auth_claims"
	// RequestContextKey holds the resolved *domain.RequestContext.
	RequestContextKey = "request_context"
)

// Auth is the authentication gate: it validates the bearer token and
// injects the typed claims into the request context. It fails closed — a
// missing header, malformed token, bad signature or expired token all
// short-circuit with 401, and the response never says which.
func Auth(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				metrics.TokensRejectedTotal.Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				metrics.TokensRejectedTotal.Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := verifier.Verify(c.Request().Context(), parts[1])
			if err != nil {
				metrics.TokensRejectedTotal.Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(ClaimsKey, claims)
			return next(c)
		}
	}
}

// ClaimsFromContext returns the claims injected by Auth, or nil when the
// middleware did not run.
func ClaimsFromContext(c echo.Context) *domain.Claims {
	claims, _ := c.Get(ClaimsKey).(*domain.Claims)
	return claims
}

// RequestContextFrom returns the RequestContext resolved by the tenant
// middleware, or nil when it is absent.
func RequestContextFrom(c echo.Context) *domain.RequestContext {
	rc, _ := c.Get(RequestContextKey).(*domain.RequestContext)
	return rc
}
