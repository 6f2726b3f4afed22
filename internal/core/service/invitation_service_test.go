package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/platops/tenant-engine/internal/api/metrics"
	"github.com/platops/tenant-engine/internal/core/domain"
)

var invitationT0 = time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)

type invitationFixture struct {
	svc  *InvitationService
	repo *stubInvitationRepo
	idp  *stubIdentityProvider
	now  *time.Time
}

func newInvitationFixture(t *testing.T, tenants ...*domain.Tenant) *invitationFixture {
	t.Helper()
	repo := newStubInvitationRepo()
	idp := newStubIdentityProvider()
	registry := NewRegistry(newStubTenantRepo(tenants...), newStubRoleRepo(), nil, zerolog.Nop())
	svc := NewInvitationService(repo, idp, registry, 7, DefaultCredentialLength, zerolog.Nop())

	now := invitationT0
	svc.now = func() time.Time { return now }
	return &invitationFixture{svc: svc, repo: repo, idp: idp, now: &now}
}

func activeTenant(id string) *domain.Tenant {
	return &domain.Tenant{ID: id, Status: domain.TenantActive, Modules: []string{domain.ModuleTenantAdmin}}
}

func TestInvitationCreate(t *testing.T) {
	f := newInvitationFixture(t, activeTenant("acme"))

	res, err := f.svc.Create(context.Background(), "acme", "ana@acme.io", "Ana")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inv := res.Invitation
	if inv.Status != domain.InvitationPending {
		t.Errorf("expected pending, got %s", inv.Status)
	}
	if want := invitationT0.AddDate(0, 0, 7); !inv.ExpiresAt.Equal(want) {
		t.Errorf("expected expiry %v, got %v", want, inv.ExpiresAt)
	}
	if res.TemporaryCredential == "" {
		t.Fatal("expected the plaintext credential returned once")
	}

	// Only the hash is persisted, and it matches the returned plaintext.
	stored, err := f.repo.FindByID(context.Background(), inv.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.CredentialHash == res.TemporaryCredential {
		t.Fatal("plaintext credential must never be persisted")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.CredentialHash), []byte(res.TemporaryCredential)); err != nil {
		t.Fatalf("stored hash does not match issued credential: %v", err)
	}

	// The provider received the same plaintext at user creation.
	if got := f.idp.createdCreds["ana@acme.io"]; got != res.TemporaryCredential {
		t.Fatalf("provider received %q, caller received %q", got, res.TemporaryCredential)
	}
}

func TestInvitationCreateConflictsWithOpen(t *testing.T) {
	f := newInvitationFixture(t, activeTenant("acme"))

	if _, err := f.svc.Create(context.Background(), "acme", "ana@acme.io", "Ana"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := f.svc.Create(context.Background(), "acme", "ana@acme.io", "Ana")
	if !errors.Is(err, domain.ErrInvitationPending) {
		t.Fatalf("expected ErrInvitationPending, got %v", err)
	}
}

func TestInvitationCreateAfterClosedRow(t *testing.T) {
	f := newInvitationFixture(t, activeTenant("acme"))

	res, err := f.svc.Create(context.Background(), "acme", "ana@acme.io", "Ana")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.MarkSent(context.Background(), res.Invitation.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.MarkAccepted(context.Background(), res.Invitation.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Closed rows are history; a fresh invitation (re-onboarding) conflicts
	// only at the provider, which still knows the user.
	_, err = f.svc.Create(context.Background(), "acme", "ana@acme.io", "Ana")
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists from provider, got %v", err)
	}
}

func TestInvitationCreateInactiveTenant(t *testing.T) {
	f := newInvitationFixture(t, &domain.Tenant{ID: "acme", Status: domain.TenantSuspended})

	_, err := f.svc.Create(context.Background(), "acme", "ana@acme.io", "Ana")
	if !errors.Is(err, domain.ErrTenantNotActive) {
		t.Fatalf("expected ErrTenantNotActive, got %v", err)
	}
}

func TestInvitationExpiryAndResendWindow(t *testing.T) {
	f := newInvitationFixture(t, activeTenant("acme"))

	res, err := f.svc.Create(context.Background(), "acme", "ana@acme.io", "Ana")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.MarkSent(context.Background(), res.Invitation.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Day 8: the sweep expires the sent invitation.
	day8 := invitationT0.AddDate(0, 0, 8)
	*f.now = day8
	n, err := f.svc.ExpireStale(context.Background(), day8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 expired, got %d", n)
	}
	expired, _ := f.repo.FindByID(context.Background(), res.Invitation.ID)
	if expired.Status != domain.InvitationExpired {
		t.Fatalf("expected expired, got %s", expired.Status)
	}

	// Sweeping again is a no-op.
	if n, _ := f.svc.ExpireStale(context.Background(), day8); n != 0 {
		t.Fatalf("expected repeat sweep to expire nothing, got %d", n)
	}

	// Resend reopens the window from the resend instant, not the original
	// creation time, and rotates the credential.
	resent, err := f.svc.Resend(context.Background(), res.Invitation.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resent.Invitation.Status != domain.InvitationSent {
		t.Errorf("expected sent, got %s", resent.Invitation.Status)
	}
	if want := day8.AddDate(0, 0, 7); !resent.Invitation.ExpiresAt.Equal(want) {
		t.Errorf("expected expiry %v, got %v", want, resent.Invitation.ExpiresAt)
	}
	if resent.Invitation.ResendCount != 1 {
		t.Errorf("expected resend count 1, got %d", resent.Invitation.ResendCount)
	}
	if resent.TemporaryCredential == res.TemporaryCredential {
		t.Error("expected a fresh credential on resend")
	}
	replaced := f.idp.replacedCreds["ana@acme.io"]
	if len(replaced) != 1 || replaced[0] != resent.TemporaryCredential {
		t.Fatalf("expected provider credential replaced with the new plaintext, got %v", replaced)
	}
}

func TestInvitationResendRejectedFromClosedStates(t *testing.T) {
	f := newInvitationFixture(t, activeTenant("acme"))

	res, err := f.svc.Create(context.Background(), "acme", "ana@acme.io", "Ana")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// pending: delivery has not happened yet, nothing to resend.
	if _, err := f.svc.Resend(context.Background(), res.Invitation.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition from pending, got %v", err)
	}

	if _, err := f.svc.MarkSent(context.Background(), res.Invitation.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.MarkAccepted(context.Background(), res.Invitation.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.Resend(context.Background(), res.Invitation.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition from accepted, got %v", err)
	}
}

func TestInvitationTransitionGuards(t *testing.T) {
	f := newInvitationFixture(t, activeTenant("acme"))

	res, err := f.svc.Create(context.Background(), "acme", "ana@acme.io", "Ana")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// pending -> accepted skips delivery and is rejected.
	if _, err := f.svc.MarkAccepted(context.Background(), res.Invitation.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	// pending -> failed records the delivery error.
	failed, err := f.svc.MarkFailed(context.Background(), res.Invitation.ID, "smtp refused")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if failed.FailureReason != "smtp refused" {
		t.Errorf("expected failure reason recorded, got %q", failed.FailureReason)
	}

	// failed -> sent via resend clears the failure reason.
	resent, err := f.svc.Resend(context.Background(), res.Invitation.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resent.Invitation.FailureReason != "" {
		t.Errorf("expected failure reason cleared, got %q", resent.Invitation.FailureReason)
	}
}

// transitionCount reads the current value of the per-status transition
// counter. The counters are process-global, so tests assert on deltas.
func transitionCount(status domain.InvitationStatus) float64 {
	return testutil.ToFloat64(metrics.InvitationTransitionsTotal.WithLabelValues(string(status)))
}

func TestInvitationTransitionsCounted(t *testing.T) {
	f := newInvitationFixture(t, activeTenant("acme"))

	sent0 := transitionCount(domain.InvitationSent)
	expired0 := transitionCount(domain.InvitationExpired)
	accepted0 := transitionCount(domain.InvitationAccepted)
	failed0 := transitionCount(domain.InvitationFailed)
	sweep0 := testutil.ToFloat64(metrics.InvitationsExpiredTotal)

	res, err := f.svc.Create(context.Background(), "acme", "ana@acme.io", "Ana")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.MarkSent(context.Background(), res.Invitation.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	day8 := invitationT0.AddDate(0, 0, 8)
	*f.now = day8
	if _, err := f.svc.ExpireStale(context.Background(), day8); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.Resend(context.Background(), res.Invitation.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.MarkFailed(context.Background(), res.Invitation.ID, "smtp refused"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.Resend(context.Background(), res.Invitation.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.MarkAccepted(context.Background(), res.Invitation.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// MarkSent plus two resends land on sent; the sweep, the delivery
	// failure and the acceptance each record their own target status.
	if got := transitionCount(domain.InvitationSent) - sent0; got != 3 {
		t.Errorf("expected 3 sent transitions, got %v", got)
	}
	if got := transitionCount(domain.InvitationExpired) - expired0; got != 1 {
		t.Errorf("expected 1 expired transition, got %v", got)
	}
	if got := transitionCount(domain.InvitationFailed) - failed0; got != 1 {
		t.Errorf("expected 1 failed transition, got %v", got)
	}
	if got := transitionCount(domain.InvitationAccepted) - accepted0; got != 1 {
		t.Errorf("expected 1 accepted transition, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.InvitationsExpiredTotal) - sweep0; got != 1 {
		t.Errorf("expected 1 swept expiry, got %v", got)
	}

	// A rejected transition leaves every counter untouched.
	before := transitionCount(domain.InvitationSent)
	if _, err := f.svc.MarkSent(context.Background(), res.Invitation.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if got := transitionCount(domain.InvitationSent); got != before {
		t.Errorf("a rejected transition must not count, got delta %v", got-before)
	}
}

func TestInvitationGetUnknown(t *testing.T) {
	f := newInvitationFixture(t)
	if _, err := f.svc.Get(context.Background(), "missing"); !errors.Is(err, domain.ErrInvitationNotFound) {
		t.Fatalf("expected ErrInvitationNotFound, got %v", err)
	}
}
