package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/platops/tenant-engine/internal/api/metrics"
	"github.com/platops/tenant-engine/internal/core/domain"
	"github.com/platops/tenant-engine/internal/core/ports"
)

const defaultExpiryDays = 7

// InvitationService drives the invitation state machine. The temporary
// credential is generated here, handed to the identity provider, returned
// to the caller exactly once, and only its bcrypt hash is persisted.
type InvitationService struct {
	repo       ports.InvitationRepository
	idp        ports.IdentityProvider
	registry   *Registry
	expiryDays int
	credLength int
	logger     zerolog.Logger
	now        func() time.Time
}

func NewInvitationService(repo ports.InvitationRepository, idp ports.IdentityProvider, registry *Registry, expiryDays, credLength int, logger zerolog.Logger) *InvitationService {
	if expiryDays <= 0 {
		expiryDays = defaultExpiryDays
	}
	if credLength <= 0 {
		credLength = DefaultCredentialLength
	}
	return &InvitationService{
		repo:       repo,
		idp:        idp,
		registry:   registry,
		expiryDays: expiryDays,
		credLength: credLength,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Create provisions a directory user with a temporary credential and records
// a pending invitation. An open (pending or sent) invitation for the same
// (tenant, email) pair is a conflict; closed rows are history and do not
// block a fresh invitation.
func (s *InvitationService) Create(ctx context.Context, tenantID, email, name string) (*ports.InvitationResult, error) {
	tenant, err := s.registry.Tenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !tenant.IsActive() {
		return nil, fmt.Errorf("%w: status %s", domain.ErrTenantNotActive, tenant.Status)
	}

	if open, err := s.repo.FindOpen(ctx, tenantID, email); err != nil {
		return nil, err
	} else if open != nil {
		return nil, fmt.Errorf("%w: invitation %s", domain.ErrInvitationPending, open.ID)
	}

	credential, err := GenerateCredential(s.credLength)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(credential), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash credential: %w", err)
	}

	if err := s.idp.CreateUser(ctx, email, name, credential); err != nil {
		return nil, err
	}

	now := s.now()
	inv := &domain.Invitation{
		ID:             uuid.NewString(),
		TenantID:       tenantID,
		Email:          email,
		Status:         domain.InvitationPending,
		CredentialHash: string(hash),
		CreatedAt:      now,
		ExpiresAt:      now.AddDate(0, 0, s.expiryDays),
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, err
	}

	s.logger.Info().Str("invitation_id", inv.ID).Str("tenant", tenantID).Str("email", email).Msg("invitation created")
	return &ports.InvitationResult{Invitation: inv, TemporaryCredential: credential}, nil
}

func (s *InvitationService) Get(ctx context.Context, id string) (*domain.Invitation, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *InvitationService) ListByTenant(ctx context.Context, tenantID string) ([]domain.Invitation, error) {
	return s.repo.ListByTenant(ctx, tenantID)
}

// MarkSent records successful delivery.
func (s *InvitationService) MarkSent(ctx context.Context, id string) (*domain.Invitation, error) {
	return s.transition(ctx, id, domain.InvitationSent, func(inv *domain.Invitation, now time.Time) {
		inv.SentAt = now
	})
}

// MarkAccepted records that the invited user completed onboarding.
func (s *InvitationService) MarkAccepted(ctx context.Context, id string) (*domain.Invitation, error) {
	return s.transition(ctx, id, domain.InvitationAccepted, func(inv *domain.Invitation, now time.Time) {
		inv.AcceptedAt = now
	})
}

// MarkFailed records a delivery error.
func (s *InvitationService) MarkFailed(ctx context.Context, id, reason string) (*domain.Invitation, error) {
	return s.transition(ctx, id, domain.InvitationFailed, func(inv *domain.Invitation, _ time.Time) {
		inv.FailureReason = reason
	})
}

func (s *InvitationService) transition(ctx context.Context, id string, next domain.InvitationStatus, apply func(*domain.Invitation, time.Time)) (*domain.Invitation, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !inv.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, inv.Status, next)
	}

	now := s.now()
	inv.Status = next
	inv.UpdatedAt = now
	apply(inv, now)

	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, err
	}
	metrics.InvitationTransitionsTotal.WithLabelValues(string(next)).Inc()
	s.logger.Info().Str("invitation_id", inv.ID).Str("status", string(next)).Msg("invitation transitioned")
	return inv, nil
}

// Resend regenerates the temporary credential, replaces it at the identity
// provider (which invalidates the previous one), resets the expiry window,
// increments the resend counter and returns the invitation to sent. Only
// sent, expired and failed invitations can be resent.
func (s *InvitationService) Resend(ctx context.Context, id string) (*ports.InvitationResult, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !inv.Status.Resendable() {
		return nil, fmt.Errorf("%w: resend from %s", domain.ErrInvalidTransition, inv.Status)
	}

	credential, err := GenerateCredential(s.credLength)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(credential), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash credential: %w", err)
	}

	if err := s.idp.SetTemporaryCredential(ctx, inv.Email, credential); err != nil {
		return nil, err
	}

	now := s.now()
	inv.Status = domain.InvitationSent
	inv.CredentialHash = string(hash)
	inv.FailureReason = ""
	inv.ResendCount++
	inv.LastResendAt = now
	inv.ExpiresAt = now.AddDate(0, 0, s.expiryDays)
	inv.UpdatedAt = now

	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, err
	}

	metrics.InvitationTransitionsTotal.WithLabelValues(string(domain.InvitationSent)).Inc()
	s.logger.Info().Str("invitation_id", inv.ID).Int("resend_count", inv.ResendCount).Msg("invitation resent")
	return &ports.InvitationResult{Invitation: inv, TemporaryCredential: credential}, nil
}

// ExpireStale sweeps every sent invitation whose expiry has passed.
// Running it twice has no additional effect.
func (s *InvitationService) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.repo.ExpireStale(ctx, now)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.InvitationTransitionsTotal.WithLabelValues(string(domain.InvitationExpired)).Add(float64(n))
		metrics.InvitationsExpiredTotal.Add(float64(n))
		s.logger.Info().Int64("expired", n).Msg("stale invitations expired")
	}
	return n, nil
}
