package ports

import (
	"context"

	"github.com/platops/tenant-engine/internal/core/domain"
)

// CreateTenantInput carries the fields of a new tenant. Modules beyond the
// always-on tenant-admin module are optional at creation time.
type CreateTenantInput struct {
	ID      string
	Name    string
	Modules []string
	Contact domain.Contact
}

// UpdateTenantInput carries the mutable metadata of a tenant. The ID and
// status are changed through dedicated operations, never here.
type UpdateTenantInput struct {
	Name    string
	Contact domain.Contact
}

// TenantService manages tenant lifecycle and module enablement.
type TenantService interface {
	Create(ctx context.Context, input CreateTenantInput) (*domain.Tenant, error)
	Get(ctx context.Context, id string) (*domain.Tenant, error)
	List(ctx context.Context, includeDeleted bool) ([]domain.Tenant, error)
	Update(ctx context.Context, id string, input UpdateTenantInput) (*domain.Tenant, error)
	Suspend(ctx context.Context, id string) (*domain.Tenant, error)
	Activate(ctx context.Context, id string) (*domain.Tenant, error)
	// SoftDelete marks the tenant deleted. The record is preserved for
	// audit and excluded from all authorization checks.
	SoftDelete(ctx context.Context, id string) error
	// EnableModule and DisableModule toggle a feature module. Neither
	// mutates any user's role assignments. Disabling tenant-admin is
	// rejected.
	EnableModule(ctx context.Context, id, module string) (*domain.Tenant, error)
	DisableModule(ctx context.Context, id, module string) (*domain.Tenant, error)
}
