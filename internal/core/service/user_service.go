package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/platops/tenant-engine/internal/core/domain"
	"github.com/platops/tenant-engine/internal/core/ports"
)

// UserService manages role and tenant-membership assignments against the
// identity provider. Role changes through a tenant context are re-validated
// against the tenant's assignable set, independent of any UI filtering.
type UserService struct {
	idp      ports.IdentityProvider
	registry *Registry
	logger   zerolog.Logger
}

func NewUserService(idp ports.IdentityProvider, registry *Registry, logger zerolog.Logger) *UserService {
	return &UserService{idp: idp, registry: registry, logger: logger}
}

// ListTenantUsers returns the directory users of the caller's tenant.
func (s *UserService) ListTenantUsers(ctx context.Context, rc *domain.RequestContext) ([]domain.User, error) {
	return s.idp.ListUsersByTenant(ctx, rc.Tenant)
}

// GetUser fetches a single directory user, restricted to members of the
// caller's tenant so one tenant's administrator cannot enumerate another's.
func (s *UserService) GetUser(ctx context.Context, rc *domain.RequestContext, email string) (*domain.User, error) {
	user, err := s.idp.GetUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if !rc.IsPlatform() && !user.HasTenant(rc.Tenant) {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

// AssignRole grants a role to a user. Assigning a role the user already
// holds succeeds as a no-op, which keeps caller-side retries trivial.
func (s *UserService) AssignRole(ctx context.Context, rc *domain.RequestContext, email, role string) error {
	if err := s.validateRoleChange(ctx, rc, role); err != nil {
		return err
	}

	user, err := s.GetUser(ctx, rc, email)
	if err != nil {
		return err
	}
	if user.HasRole(role) {
		return nil
	}

	if err := s.idp.AddUserToGroup(ctx, email, role); err != nil {
		return err
	}
	s.logger.Info().Str("email", email).Str("role", role).Str("tenant", rc.Tenant).Str("actor", rc.Email).Msg("role assigned")
	return nil
}

// RemoveRole revokes a role from a user. Removing a role never held is a
// no-op. Unlike assignment, removal of a module role stays possible after
// its module was disabled — otherwise stale grants could never be cleaned
// up — but platform-category roles are untouchable from a tenant context.
func (s *UserService) RemoveRole(ctx context.Context, rc *domain.RequestContext, email, role string) error {
	catalogRole, err := s.registry.Role(ctx, role)
	if err != nil {
		return err
	}
	if !rc.IsPlatform() && catalogRole.Category == domain.CategoryPlatform {
		return fmt.Errorf("%w: %q", domain.ErrRoleNotAssignable, role)
	}

	user, err := s.GetUser(ctx, rc, email)
	if err != nil {
		return err
	}
	if !user.HasRole(role) {
		return nil
	}

	if err := s.idp.RemoveUserFromGroup(ctx, email, role); err != nil {
		return err
	}
	s.logger.Info().Str("email", email).Str("role", role).Str("tenant", rc.Tenant).Str("actor", rc.Email).Msg("role removed")
	return nil
}

// validateRoleChange applies the assignable-role filter. Platform contexts
// may assign any catalog role; tenant contexts only roles in the tenant's
// derived set.
func (s *UserService) validateRoleChange(ctx context.Context, rc *domain.RequestContext, role string) error {
	if rc.IsPlatform() {
		if _, err := s.registry.Role(ctx, role); err != nil {
			return err
		}
		return nil
	}
	return s.registry.ValidateAssignable(ctx, rc.Tenant, role)
}

// AddTenantMembership adds the tenant to the user's tenant-list attribute.
// The attribute is replaced wholesale (last-writer-wins); adding an existing
// membership is a no-op. The change is visible to the user at next
// re-authentication, not mid-session.
func (s *UserService) AddTenantMembership(ctx context.Context, email, tenantID string) error {
	user, err := s.idp.GetUser(ctx, email)
	if err != nil {
		return err
	}
	if user.HasTenant(tenantID) {
		return nil
	}
	tenants := append(append([]string(nil), user.Tenants...), tenantID)
	if err := s.idp.SetUserTenants(ctx, email, tenants); err != nil {
		return err
	}
	s.logger.Info().Str("email", email).Str("tenant", tenantID).Msg("tenant membership added")
	return nil
}

// RemoveTenantMembership removes the tenant from the user's tenant-list
// attribute. Removing an absent membership is a no-op.
func (s *UserService) RemoveTenantMembership(ctx context.Context, email, tenantID string) error {
	user, err := s.idp.GetUser(ctx, email)
	if err != nil {
		return err
	}
	if !user.HasTenant(tenantID) {
		return nil
	}
	tenants := make([]string, 0, len(user.Tenants))
	for _, t := range user.Tenants {
		if t != tenantID {
			tenants = append(tenants, t)
		}
	}
	if err := s.idp.SetUserTenants(ctx, email, tenants); err != nil {
		return err
	}
	s.logger.Info().Str("email", email).Str("tenant", tenantID).Msg("tenant membership removed")
	return nil
}
