package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/platops/tenant-engine/internal/core/domain"
	"github.com/platops/tenant-engine/internal/core/ports"
)

// TenantService manages tenant lifecycle and module enablement. Every
// mutation invalidates the registry cache so authorization sees the new
// status immediately.
type TenantService struct {
	repo     ports.TenantRepository
	registry *Registry
	logger   zerolog.Logger
	now      func() time.Time
}

func NewTenantService(repo ports.TenantRepository, registry *Registry, logger zerolog.Logger) *TenantService {
	return &TenantService{
		repo:     repo,
		registry: registry,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create registers a new tenant. The id is an immutable slug; the reserved
// platform id is never creatable. The tenant-administration module is
// always enabled, whatever the input says.
func (s *TenantService) Create(ctx context.Context, input ports.CreateTenantInput) (*domain.Tenant, error) {
	if !domain.ValidTenantID(input.ID) {
		return nil, fmt.Errorf("%w: invalid tenant id %q", domain.ErrValidation, input.ID)
	}
	if input.Name == "" {
		return nil, fmt.Errorf("%w: tenant name required", domain.ErrValidation)
	}

	modules := domain.NewStringSet(input.Modules...)
	modules[domain.ModuleTenantAdmin] = struct{}{}
	delete(modules, domain.ModulePlatformAdmin)

	now := s.now()
	tenant := &domain.Tenant{
		ID:        input.ID,
		Name:      input.Name,
		Status:    domain.TenantActive,
		Modules:   modules.Values(),
		Contact:   input.Contact,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, tenant); err != nil {
		return nil, err
	}

	s.logger.Info().Str("tenant", tenant.ID).Msg("tenant created")
	return tenant, nil
}

func (s *TenantService) Get(ctx context.Context, id string) (*domain.Tenant, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *TenantService) List(ctx context.Context, includeDeleted bool) ([]domain.Tenant, error) {
	return s.repo.List(ctx, includeDeleted)
}

// Update changes display metadata only. ID and status are immutable here.
func (s *TenantService) Update(ctx context.Context, id string, input ports.UpdateTenantInput) (*domain.Tenant, error) {
	return s.mutate(ctx, id, func(t *domain.Tenant) error {
		if input.Name != "" {
			t.Name = input.Name
		}
		if input.Contact != (domain.Contact{}) {
			t.Contact = input.Contact
		}
		return nil
	})
}

// Suspend blocks all tenant-scoped operations for the tenant's members.
func (s *TenantService) Suspend(ctx context.Context, id string) (*domain.Tenant, error) {
	return s.setStatus(ctx, id, domain.TenantSuspended)
}

// Activate restores a suspended or inactive tenant.
func (s *TenantService) Activate(ctx context.Context, id string) (*domain.Tenant, error) {
	return s.setStatus(ctx, id, domain.TenantActive)
}

// SoftDelete marks the tenant deleted. The record remains for audit and is
// excluded from every authorization check from here on.
func (s *TenantService) SoftDelete(ctx context.Context, id string) error {
	_, err := s.setStatus(ctx, id, domain.TenantDeleted)
	return err
}

func (s *TenantService) setStatus(ctx context.Context, id string, status domain.TenantStatus) (*domain.Tenant, error) {
	t, err := s.mutate(ctx, id, func(t *domain.Tenant) error {
		t.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("tenant", id).Str("status", string(status)).Msg("tenant status changed")
	return t, nil
}

// EnableModule turns a feature module on. Role assignments of existing
// users are untouched; the module only widens the assignable-role set.
func (s *TenantService) EnableModule(ctx context.Context, id, module string) (*domain.Tenant, error) {
	if module == domain.ModulePlatformAdmin {
		return nil, fmt.Errorf("%w: %q is not a tenant module", domain.ErrValidation, module)
	}
	return s.mutate(ctx, id, func(t *domain.Tenant) error {
		if t.HasModule(module) {
			return nil
		}
		t.Modules = append(t.Modules, module)
		return nil
	})
}

// DisableModule turns a feature module off, narrowing the assignable-role
// set. Existing role assignments are deliberately left in place.
// The tenant-administration module can never be disabled.
func (s *TenantService) DisableModule(ctx context.Context, id, module string) (*domain.Tenant, error) {
	if module == domain.ModuleTenantAdmin {
		return nil, fmt.Errorf("%w: %s", domain.ErrModuleRequired, module)
	}
	return s.mutate(ctx, id, func(t *domain.Tenant) error {
		kept := make([]string, 0, len(t.Modules))
		for _, m := range t.Modules {
			if m != module {
				kept = append(kept, m)
			}
		}
		t.Modules = kept
		return nil
	})
}

func (s *TenantService) mutate(ctx context.Context, id string, apply func(*domain.Tenant) error) (*domain.Tenant, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(t); err != nil {
		return nil, err
	}
	t.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.registry.Invalidate(ctx, id)
	return t, nil
}
