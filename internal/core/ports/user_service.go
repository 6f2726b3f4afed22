package ports

import (
	"context"

	"github.com/platops/tenant-engine/internal/core/domain"
)

// UserService manages role and tenant-membership assignments against the
// identity provider, scoped by the caller's RequestContext.
type UserService interface {
	ListTenantUsers(ctx context.Context, rc *domain.RequestContext) ([]domain.User, error)
	GetUser(ctx context.Context, rc *domain.RequestContext, email string) (*domain.User, error)
	// AssignRole grants a role after re-validating it against the tenant's
	// assignable set. Assigning a role already held is a no-op.
	AssignRole(ctx context.Context, rc *domain.RequestContext, email, role string) error
	// RemoveRole revokes a role. Removing a role not held is a no-op.
	// Platform-category roles are never removable through a tenant context.
	RemoveRole(ctx context.Context, rc *domain.RequestContext, email, role string) error
	// AddTenantMembership and RemoveTenantMembership edit the user's
	// tenant-list attribute. The replacement is last-writer-wins at the
	// field level; both are idempotent. Changes take effect at the user's
	// next re-authentication.
	AddTenantMembership(ctx context.Context, email, tenantID string) error
	RemoveTenantMembership(ctx context.Context, email, tenantID string) error
}
