package ports

import (
	"context"

	"github.com/platops/tenant-engine/internal/core/domain"
)

// Authorizer is the single entry point every route calls before touching
// business logic. ResolveContext turns verified claims plus the declared
// tenant into a RequestContext; Authorize additionally enforces a required
// role set. A failure at either stage is terminal for the request.
type Authorizer interface {
	ResolveContext(ctx context.Context, claims *domain.Claims, declaredTenant string, requireTenant bool) (*domain.RequestContext, error)
	Authorize(ctx context.Context, claims *domain.Claims, declaredTenant string, requiredRoles []string, requireTenant bool) (*domain.RequestContext, error)
}

// RoleCatalog derives the assignable-role surface of a tenant.
type RoleCatalog interface {
	// AvailableRoles returns the roles a tenant administrator may assign:
	// the tenant-admin role plus module roles for enabled modules.
	// Platform-category roles are never included.
	AvailableRoles(ctx context.Context, tenantID string) ([]domain.Role, error)
	// ValidateAssignable rejects roles outside AvailableRoles with an error
	// wrapping domain.ErrRoleNotAssignable.
	ValidateAssignable(ctx context.Context, tenantID, roleName string) error
}
