package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/platops/tenant-engine/internal/core/domain"
)

func testRegistry(tenants ...*domain.Tenant) *Registry {
	return NewRegistry(newStubTenantRepo(tenants...), newStubRoleRepo(), nil, zerolog.Nop())
}

func roleNames(roles []domain.Role) []string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.Name
	}
	return names
}

func TestAvailableRolesFollowEnabledModules(t *testing.T) {
	registry := testRegistry(&domain.Tenant{
		ID:      "acme",
		Status:  domain.TenantActive,
		Modules: []string{domain.ModuleTenantAdmin, domain.ModuleFinance},
	})

	roles, err := registry.AvailableRoles(context.Background(), "acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"finance-crud", "finance-export", "finance-read", domain.RoleTenantAdmin}
	got := roleNames(roles)
	if len(got) != len(want) {
		t.Fatalf("expected roles %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected roles %v, got %v", want, got)
		}
	}
}

func TestAvailableRolesNeverIncludePlatform(t *testing.T) {
	// Even a tenant provisioned with every module must not see
	// platform-category roles in its assignable set.
	registry := testRegistry(&domain.Tenant{
		ID:     "acme",
		Status: domain.TenantActive,
		Modules: []string{
			domain.ModuleTenantAdmin,
			domain.ModuleFinance,
			domain.ModuleShortTermRental,
			domain.ModulePlatformAdmin,
		},
	})

	roles, err := registry.AvailableRoles(context.Background(), "acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range roles {
		if r.Category == domain.CategoryPlatform {
			t.Fatalf("platform role %q leaked into the assignable set", r.Name)
		}
	}
}

func TestAvailableRolesGrowWithModuleEnable(t *testing.T) {
	repo := newStubTenantRepo(&domain.Tenant{
		ID:      "acme",
		Status:  domain.TenantActive,
		Modules: []string{domain.ModuleTenantAdmin},
	})
	registry := NewRegistry(repo, newStubRoleRepo(), nil, zerolog.Nop())

	before, err := registry.AvailableRoles(context.Background(), "acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(before) != 1 || before[0].Name != domain.RoleTenantAdmin {
		t.Fatalf("expected only tenant-admin before enable, got %v", roleNames(before))
	}

	acme := repo.tenants["acme"]
	acme.Modules = append(acme.Modules, domain.ModuleShortTermRental)

	after, err := registry.AvailableRoles(context.Background(), "acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := domain.NewStringSet(roleNames(after)...)
	if !got.Has("short-term-rental-read") || !got.Has("short-term-rental-crud") {
		t.Fatalf("expected rental roles after enable, got %v", roleNames(after))
	}
	if got.Has("finance-read") {
		t.Fatalf("finance roles must stay hidden while the module is disabled, got %v", roleNames(after))
	}
}

func TestValidateAssignable(t *testing.T) {
	registry := testRegistry(&domain.Tenant{
		ID:      "acme",
		Status:  domain.TenantActive,
		Modules: []string{domain.ModuleTenantAdmin, domain.ModuleFinance},
	})

	if err := registry.ValidateAssignable(context.Background(), "acme", "finance-read"); err != nil {
		t.Fatalf("expected finance-read assignable, got %v", err)
	}
	if err := registry.ValidateAssignable(context.Background(), "acme", "short-term-rental-read"); !errors.Is(err, domain.ErrRoleNotAssignable) {
		t.Fatalf("expected ErrRoleNotAssignable for disabled module role, got %v", err)
	}
	if err := registry.ValidateAssignable(context.Background(), "acme", domain.RolePlatformAdmin); !errors.Is(err, domain.ErrRoleNotAssignable) {
		t.Fatalf("expected ErrRoleNotAssignable for platform role, got %v", err)
	}
}

type spyCache struct {
	store map[string]*domain.Tenant
	gets  int
	sets  int
}

func newSpyCache() *spyCache {
	return &spyCache{store: make(map[string]*domain.Tenant)}
}

func (c *spyCache) Get(_ context.Context, id string) (*domain.Tenant, error) {
	c.gets++
	return c.store[id], nil
}

func (c *spyCache) Set(_ context.Context, tenant *domain.Tenant) error {
	c.sets++
	clone := *tenant
	c.store[tenant.ID] = &clone
	return nil
}

func (c *spyCache) Invalidate(_ context.Context, id string) error {
	delete(c.store, id)
	return nil
}

func TestTenantReadThroughCache(t *testing.T) {
	cache := newSpyCache()
	registry := NewRegistry(
		newStubTenantRepo(&domain.Tenant{ID: "acme", Status: domain.TenantActive}),
		newStubRoleRepo(), cache, zerolog.Nop(),
	)

	if _, err := registry.Tenant(context.Background(), "acme"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.sets != 1 {
		t.Fatalf("expected miss to populate the cache, sets=%d", cache.sets)
	}

	if _, err := registry.Tenant(context.Background(), "acme"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.sets != 1 {
		t.Fatalf("expected second lookup served from cache, sets=%d", cache.sets)
	}

	registry.Invalidate(context.Background(), "acme")
	if _, ok := cache.store["acme"]; ok {
		t.Fatal("expected invalidation to drop the cached record")
	}
}
