package ports

import (
	"context"
	"time"

	"github.com/platops/tenant-engine/internal/core/domain"
)

// InvitationRepository defines the persistence contract for invitations.
// Rows are append-and-update only; there is no delete.
type InvitationRepository interface {
	Create(ctx context.Context, inv *domain.Invitation) error
	FindByID(ctx context.Context, id string) (*domain.Invitation, error)
	// FindOpen returns the pending or sent invitation for the given
	// (tenant, email) pair, or nil when none exists.
	FindOpen(ctx context.Context, tenantID, email string) (*domain.Invitation, error)
	ListByTenant(ctx context.Context, tenantID string) ([]domain.Invitation, error)
	Update(ctx context.Context, inv *domain.Invitation) error
	// ExpireStale transitions every sent invitation whose expiry has passed
	// to expired and returns the number of rows affected. Idempotent.
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}
