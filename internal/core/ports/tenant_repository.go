package ports

import (
	"context"

	"github.com/platops/tenant-engine/internal/core/domain"
)

// TenantRepository defines the persistence contract for tenant records.
// Delete is intentionally absent: tenants are soft-deleted via Update.
type TenantRepository interface {
	Create(ctx context.Context, tenant *domain.Tenant) error
	FindByID(ctx context.Context, id string) (*domain.Tenant, error)
	List(ctx context.Context, includeDeleted bool) ([]domain.Tenant, error)
	Update(ctx context.Context, tenant *domain.Tenant) error
}

// RoleRepository provides read access to the role catalog.
type RoleRepository interface {
	List(ctx context.Context) ([]domain.Role, error)
	FindByName(ctx context.Context, name string) (*domain.Role, error)
}

// TenantCache is a short-TTL read-through cache in front of TenantRepository.
// A miss returns (nil, nil); cache errors are reported but callers fall back
// to the repository rather than failing the request.
type TenantCache interface {
	Get(ctx context.Context, id string) (*domain.Tenant, error)
	Set(ctx context.Context, tenant *domain.Tenant) error
	Invalidate(ctx context.Context, id string) error
}
