package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/platops/tenant-engine/internal/core/domain"
)

// Authorizer resolves the per-request (identity, tenant, roles) triple and
// enforces role requirements. It is stateless: every request gets a fresh
// RequestContext and nothing is shared across requests.
type Authorizer struct {
	registry *Registry
	logger   zerolog.Logger
}

func NewAuthorizer(registry *Registry, logger zerolog.Logger) *Authorizer {
	return &Authorizer{registry: registry, logger: logger}
}

// ResolveContext validates the declared tenant against the token's claims
// and produces a RequestContext.
//
// The membership check runs against the token's tenant claim, not a live
// directory query: a revoked membership stays usable until the token
// expires and the user re-authenticates. Accepted trade-off.
//
// The reserved platform tenant skips the membership and status checks —
// it has no registry row and no member list; platform access is gated
// purely by platform roles at the role check.
func (a *Authorizer) ResolveContext(ctx context.Context, claims *domain.Claims, declaredTenant string, requireTenant bool) (*domain.RequestContext, error) {
	if claims == nil {
		return nil, domain.ErrUnauthenticated
	}

	tenant := strings.TrimSpace(declaredTenant)
	if tenant == "" {
		if requireTenant {
			return nil, domain.ErrTenantRequired
		}
		tenant = domain.PlatformTenantID
	}

	// The reserved platform tenant holds no business data; declaring it on
	// a tenant-scoped operation is a denial, not a fallback.
	if requireTenant && tenant == domain.PlatformTenantID {
		a.logDenial(claims, tenant, nil, "reserved tenant declared on tenant-scoped operation")
		return nil, fmt.Errorf("%w: reserved tenant", domain.ErrTenantAccessDenied)
	}

	if tenant != domain.PlatformTenantID {
		if !claims.Tenants.Has(tenant) {
			a.logDenial(claims, tenant, nil, "not a member of declared tenant")
			return nil, fmt.Errorf("%w: %s is not a member of the declared tenant", domain.ErrTenantAccessDenied, claims.Email)
		}

		t, err := a.registry.Tenant(ctx, tenant)
		if err != nil {
			// A tenant claimed in the token but missing from the registry
			// reads as a denial, never as 404: responses must not reveal
			// which tenants exist.
			if errors.Is(err, domain.ErrTenantNotFound) {
				a.logDenial(claims, tenant, nil, "declared tenant not registered")
				return nil, fmt.Errorf("%w: tenant not available", domain.ErrTenantAccessDenied)
			}
			return nil, err
		}
		if !t.IsActive() {
			a.logDenial(claims, tenant, nil, "tenant not active")
			return nil, fmt.Errorf("%w: status %s", domain.ErrTenantNotActive, t.Status)
		}
	}

	return &domain.RequestContext{
		Email:       claims.Email,
		Roles:       claims.Groups,
		Tenant:      tenant,
		UserTenants: claims.Tenants,
	}, nil
}

// Authorize is the single entry point route handlers go through: it resolves
// the tenant context and then checks the required role set. An empty
// required set means "authenticated only".
func (a *Authorizer) Authorize(ctx context.Context, claims *domain.Claims, declaredTenant string, requiredRoles []string, requireTenant bool) (*domain.RequestContext, error) {
	rc, err := a.ResolveContext(ctx, claims, declaredTenant, requireTenant)
	if err != nil {
		return nil, err
	}

	if !rc.HasAnyRole(requiredRoles...) {
		a.logDenial(claims, rc.Tenant, requiredRoles, "missing required role")
		return nil, fmt.Errorf("%w: none of the required roles held", domain.ErrForbidden)
	}

	return rc, nil
}

// logDenial records every denial with the acting identity, declared tenant
// and required-vs-actual role sets. Audit requirement; credentials and token
// contents are never logged.
func (a *Authorizer) logDenial(claims *domain.Claims, tenant string, required []string, reason string) {
	a.logger.Warn().
		Str("email", claims.Email).
		Str("tenant", tenant).
		Strs("required_roles", required).
		Strs("actual_roles", claims.Groups.Values()).
		Str("reason", reason).
		Msg("authorization denied")
}
