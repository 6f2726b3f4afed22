package ports

import (
	"context"
	"time"

	"github.com/platops/tenant-engine/internal/core/domain"
)

// InvitationResult pairs an invitation with its freshly generated temporary
// credential. The credential appears here exactly once — at creation or
// resend — and must never be persisted or logged by the caller.
type InvitationResult struct {
	Invitation          *domain.Invitation
	TemporaryCredential string
}

// InvitationService drives the invitation state machine.
type InvitationService interface {
	Create(ctx context.Context, tenantID, email, name string) (*InvitationResult, error)
	Get(ctx context.Context, id string) (*domain.Invitation, error)
	ListByTenant(ctx context.Context, tenantID string) ([]domain.Invitation, error)
	MarkSent(ctx context.Context, id string) (*domain.Invitation, error)
	MarkAccepted(ctx context.Context, id string) (*domain.Invitation, error)
	MarkFailed(ctx context.Context, id, reason string) (*domain.Invitation, error)
	// Resend regenerates the credential (invalidating the previous one at
	// the identity provider), resets the expiry window and returns the
	// invitation to sent. Valid only from sent, expired or failed.
	Resend(ctx context.Context, id string) (*InvitationResult, error)
	// ExpireStale sweeps sent invitations past their expiry. Idempotent.
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

// InvitationSender delivers the onboarding message for an invitation. The
// delivery channel (mail, chat, …) is out of the engine's scope.
type InvitationSender interface {
	Send(ctx context.Context, inv *domain.Invitation, temporaryCredential string) error
}
