package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/platops/tenant-engine/internal/core/domain"
	"github.com/platops/tenant-engine/internal/core/ports"
)

// Registry is the read-through accessor over tenant metadata and the role
// catalog. Tenant lookups go through a short-TTL cache; the cache is
// best-effort and every cache failure falls back to the repository.
type Registry struct {
	tenants ports.TenantRepository
	roles   ports.RoleRepository
	cache   ports.TenantCache
	logger  zerolog.Logger
}

func NewRegistry(tenants ports.TenantRepository, roles ports.RoleRepository, cache ports.TenantCache, logger zerolog.Logger) *Registry {
	return &Registry{tenants: tenants, roles: roles, cache: cache, logger: logger}
}

// Tenant returns the tenant record for id, consulting the cache first.
func (r *Registry) Tenant(ctx context.Context, id string) (*domain.Tenant, error) {
	if r.cache != nil {
		cached, err := r.cache.Get(ctx, id)
		if err != nil {
			r.logger.Warn().Err(err).Str("tenant", id).Msg("tenant cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	t, err := r.tenants.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, t); err != nil {
			r.logger.Warn().Err(err).Str("tenant", id).Msg("tenant cache write failed")
		}
	}
	return t, nil
}

// EnabledModules returns the module set of an existing tenant.
func (r *Registry) EnabledModules(ctx context.Context, tenantID string) (domain.StringSet, error) {
	t, err := r.Tenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return t.EnabledModules(), nil
}

// Invalidate drops the cached record for a tenant. Called after every
// tenant mutation so status and module changes are visible within a request
// round-trip rather than a cache TTL.
func (r *Registry) Invalidate(ctx context.Context, tenantID string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Invalidate(ctx, tenantID); err != nil {
		r.logger.Warn().Err(err).Str("tenant", tenantID).Msg("tenant cache invalidation failed")
	}
}

// AvailableRoles derives the assignable-role set of a tenant: the
// tenant-admin role plus every module role whose owning module is enabled.
// Platform-category roles are excluded unconditionally, whatever the
// tenant's modules say.
func (r *Registry) AvailableRoles(ctx context.Context, tenantID string) ([]domain.Role, error) {
	modules, err := r.EnabledModules(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	catalog, err := r.roles.List(ctx)
	if err != nil {
		return nil, err
	}

	available := make([]domain.Role, 0, len(catalog))
	for _, role := range catalog {
		switch role.Category {
		case domain.CategoryTenantAdmin:
			available = append(available, role)
		case domain.CategoryModule:
			if modules.Has(role.Module) {
				available = append(available, role)
			}
		}
	}
	sort.Slice(available, func(i, j int) bool { return available[i].Name < available[j].Name })
	return available, nil
}

// ValidateAssignable enforces server-side what the UI filters client-side:
// a role outside AvailableRoles(tenant) can never be assigned through a
// tenant context, even by a caller that bypasses the UI.
func (r *Registry) ValidateAssignable(ctx context.Context, tenantID, roleName string) error {
	available, err := r.AvailableRoles(ctx, tenantID)
	if err != nil {
		return err
	}
	for _, role := range available {
		if role.Name == roleName {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", domain.ErrRoleNotAssignable, roleName)
}

// Role looks up a single catalog entry by name.
func (r *Registry) Role(ctx context.Context, name string) (*domain.Role, error) {
	return r.roles.FindByName(ctx, name)
}
