package domain

import "errors"

// Authentication failures (HTTP 401). The distinction between a missing
// header, a malformed token and a bad signature is logged server-side but
// never leaked to the client.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrMalformedToken  = errors.New("malformed token")
)

// Authorization failures (HTTP 403). ErrTenantAccessDenied and
// ErrTenantNotActive are kept separate from ErrForbidden so operators can
// tell "wrong tenant" from "wrong role" in logs; neither message reveals
// whether the requested tenant exists.
var (
	ErrForbidden          = errors.New("access forbidden")
	ErrTenantAccessDenied = errors.New("tenant access denied")
	ErrTenantNotActive    = errors.New("tenant is not active")
)

// Validation failures (HTTP 400).
var (
	ErrTenantRequired    = errors.New("tenant header required")
	ErrRoleNotAssignable = errors.New("role is not assignable for this tenant")
	ErrValidation        = errors.New("invalid input")
)

// Conflicts (HTTP 409).
var (
	ErrInvalidTransition = errors.New("invalid invitation status transition")
	ErrTenantExists      = errors.New("tenant already exists")
	ErrUserExists        = errors.New("user already exists")
	ErrInvitationPending = errors.New("an open invitation already exists for this user")
	ErrModuleRequired    = errors.New("module cannot be disabled")
)

// Not found (HTTP 404).
var (
	ErrTenantNotFound     = errors.New("tenant not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrRoleNotFound       = errors.New("role not found")
)

// ErrUpstreamUnavailable marks identity-provider or storage timeouts
// (HTTP 503). Retryable by the caller; never confused with a denial.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

// ErrCredentialGeneration is raised when the random source repeatedly fails
// to produce a policy-compliant temporary credential. It indicates a broken
// RNG configuration, not bad input.
var ErrCredentialGeneration = errors.New("credential generation failed")
