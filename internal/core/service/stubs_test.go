package service

import (
	"context"
	"time"

	"github.com/platops/tenant-engine/internal/core/domain"
)

// In-memory stand-ins for the repositories and the identity provider,
// shared by the service tests.

type stubTenantRepo struct {
	tenants map[string]*domain.Tenant
}

func newStubTenantRepo(tenants ...*domain.Tenant) *stubTenantRepo {
	r := &stubTenantRepo{tenants: make(map[string]*domain.Tenant)}
	for _, t := range tenants {
		clone := *t
		r.tenants[t.ID] = &clone
	}
	return r
}

func (r *stubTenantRepo) Create(_ context.Context, tenant *domain.Tenant) error {
	if _, exists := r.tenants[tenant.ID]; exists {
		return domain.ErrTenantExists
	}
	clone := *tenant
	r.tenants[tenant.ID] = &clone
	return nil
}

func (r *stubTenantRepo) FindByID(_ context.Context, id string) (*domain.Tenant, error) {
	t, ok := r.tenants[id]
	if !ok {
		return nil, domain.ErrTenantNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *stubTenantRepo) List(_ context.Context, includeDeleted bool) ([]domain.Tenant, error) {
	var out []domain.Tenant
	for _, t := range r.tenants {
		if !includeDeleted && t.Status == domain.TenantDeleted {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (r *stubTenantRepo) Update(_ context.Context, tenant *domain.Tenant) error {
	if _, ok := r.tenants[tenant.ID]; !ok {
		return domain.ErrTenantNotFound
	}
	clone := *tenant
	r.tenants[tenant.ID] = &clone
	return nil
}

type stubRoleRepo struct {
	roles []domain.Role
}

func newStubRoleRepo() *stubRoleRepo {
	return &stubRoleRepo{roles: domain.DefaultRoleCatalog}
}

func (r *stubRoleRepo) List(_ context.Context) ([]domain.Role, error) {
	return append([]domain.Role(nil), r.roles...), nil
}

func (r *stubRoleRepo) FindByName(_ context.Context, name string) (*domain.Role, error) {
	for _, role := range r.roles {
		if role.Name == name {
			clone := role
			return &clone, nil
		}
	}
	return nil, domain.ErrRoleNotFound
}

type stubInvitationRepo struct {
	invitations map[string]*domain.Invitation
}

func newStubInvitationRepo() *stubInvitationRepo {
	return &stubInvitationRepo{invitations: make(map[string]*domain.Invitation)}
}

func (r *stubInvitationRepo) Create(_ context.Context, inv *domain.Invitation) error {
	clone := *inv
	r.invitations[inv.ID] = &clone
	return nil
}

func (r *stubInvitationRepo) FindByID(_ context.Context, id string) (*domain.Invitation, error) {
	inv, ok := r.invitations[id]
	if !ok {
		return nil, domain.ErrInvitationNotFound
	}
	clone := *inv
	return &clone, nil
}

func (r *stubInvitationRepo) FindOpen(_ context.Context, tenantID, email string) (*domain.Invitation, error) {
	for _, inv := range r.invitations {
		if inv.TenantID == tenantID && inv.Email == email && inv.Open() {
			clone := *inv
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *stubInvitationRepo) ListByTenant(_ context.Context, tenantID string) ([]domain.Invitation, error) {
	var out []domain.Invitation
	for _, inv := range r.invitations {
		if inv.TenantID == tenantID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *stubInvitationRepo) Update(_ context.Context, inv *domain.Invitation) error {
	if _, ok := r.invitations[inv.ID]; !ok {
		return domain.ErrInvitationNotFound
	}
	clone := *inv
	r.invitations[inv.ID] = &clone
	return nil
}

func (r *stubInvitationRepo) ExpireStale(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, inv := range r.invitations {
		if inv.Status == domain.InvitationSent && inv.ExpiresAt.Before(now) {
			inv.Status = domain.InvitationExpired
			inv.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

// stubIdentityProvider records mutations so tests can assert on calls.
type stubIdentityProvider struct {
	users          map[string]*domain.User
	createdCreds   map[string]string
	replacedCreds  map[string][]string
	groupAdds      []string
	groupRemovals  []string
	tenantReplaces map[string][]string
}

func newStubIdentityProvider(users ...*domain.User) *stubIdentityProvider {
	p := &stubIdentityProvider{
		users:          make(map[string]*domain.User),
		createdCreds:   make(map[string]string),
		replacedCreds:  make(map[string][]string),
		tenantReplaces: make(map[string][]string),
	}
	for _, u := range users {
		clone := *u
		p.users[u.Email] = &clone
	}
	return p
}

func (p *stubIdentityProvider) CreateUser(_ context.Context, email, name, temporaryCredential string) error {
	if _, exists := p.users[email]; exists {
		return domain.ErrUserExists
	}
	p.users[email] = &domain.User{Email: email, Name: name, Enabled: true}
	p.createdCreds[email] = temporaryCredential
	return nil
}

func (p *stubIdentityProvider) SetTemporaryCredential(_ context.Context, email, temporaryCredential string) error {
	if _, ok := p.users[email]; !ok {
		return domain.ErrUserNotFound
	}
	p.replacedCreds[email] = append(p.replacedCreds[email], temporaryCredential)
	return nil
}

func (p *stubIdentityProvider) GetUser(_ context.Context, email string) (*domain.User, error) {
	u, ok := p.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (p *stubIdentityProvider) ListUsersByTenant(_ context.Context, tenantID string) ([]domain.User, error) {
	var out []domain.User
	for _, u := range p.users {
		if u.HasTenant(tenantID) {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (p *stubIdentityProvider) AddUserToGroup(_ context.Context, email, group string) error {
	u, ok := p.users[email]
	if !ok {
		return domain.ErrUserNotFound
	}
	p.groupAdds = append(p.groupAdds, email+":"+group)
	if !u.HasRole(group) {
		u.Roles = append(u.Roles, group)
	}
	return nil
}

func (p *stubIdentityProvider) RemoveUserFromGroup(_ context.Context, email, group string) error {
	u, ok := p.users[email]
	if !ok {
		return domain.ErrUserNotFound
	}
	p.groupRemovals = append(p.groupRemovals, email+":"+group)
	kept := u.Roles[:0]
	for _, r := range u.Roles {
		if r != group {
			kept = append(kept, r)
		}
	}
	u.Roles = kept
	return nil
}

func (p *stubIdentityProvider) SetUserTenants(_ context.Context, email string, tenants []string) error {
	u, ok := p.users[email]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Tenants = append([]string(nil), tenants...)
	p.tenantReplaces[email] = u.Tenants
	return nil
}
