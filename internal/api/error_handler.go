package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/platops/tenant-engine/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps the engine's error taxonomy to deterministic HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
//
// Authentication failures always render the same generic message, whatever
// part of the token was invalid. Authorization messages distinguish "wrong
// role" from "wrong tenant" but never whether another tenant exists.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	// 401 — one opaque message for every authentication failure.
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, domain.ErrMalformedToken):
		return http.StatusUnauthorized, "authentication required"

	// 403
	case errors.Is(err, domain.ErrTenantAccessDenied):
		return http.StatusForbidden, "tenant access denied"
	case errors.Is(err, domain.ErrTenantNotActive):
		return http.StatusForbidden, "tenant is not active"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"

	// 400
	case errors.Is(err, domain.ErrTenantRequired):
		return http.StatusBadRequest, "tenant header required"
	case errors.Is(err, domain.ErrRoleNotAssignable):
		return http.StatusBadRequest, "role is not assignable for this tenant"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, err.Error()

	// 409
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrInvitationPending):
		return http.StatusConflict, "an open invitation already exists for this user"
	case errors.Is(err, domain.ErrTenantExists):
		return http.StatusConflict, "tenant already exists"
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "user already exists"
	case errors.Is(err, domain.ErrModuleRequired):
		return http.StatusConflict, "module cannot be disabled"

	// 404
	case errors.Is(err, domain.ErrTenantNotFound):
		return http.StatusNotFound, "tenant not found"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrInvitationNotFound):
		return http.StatusNotFound, "invitation not found"
	case errors.Is(err, domain.ErrRoleNotFound):
		return http.StatusNotFound, "role not found"

	// 503 — retryable, never confused with a denial.
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable, "upstream unavailable, retry later"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
