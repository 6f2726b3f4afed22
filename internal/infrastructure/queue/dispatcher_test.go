package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/platops/tenant-engine/internal/core/domain"
	"github.com/platops/tenant-engine/internal/core/ports"
)

type senderStub struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (s *senderStub) Send(_ context.Context, inv *domain.Invitation, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, inv.ID)
	return s.err
}

type invitationServiceStub struct {
	mu         sync.Mutex
	sentIDs    []string
	failedIDs  []string
	failReason string
}

func (s *invitationServiceStub) Create(context.Context, string, string, string) (*ports.InvitationResult, error) {
	return nil, errors.New("not implemented")
}

func (s *invitationServiceStub) Get(context.Context, string) (*domain.Invitation, error) {
	return nil, errors.New("not implemented")
}

func (s *invitationServiceStub) ListByTenant(context.Context, string) ([]domain.Invitation, error) {
	return nil, errors.New("not implemented")
}

func (s *invitationServiceStub) MarkSent(_ context.Context, id string) (*domain.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sentIDs = append(s.sentIDs, id)
	return &domain.Invitation{ID: id, Status: domain.InvitationSent}, nil
}

func (s *invitationServiceStub) MarkAccepted(context.Context, string) (*domain.Invitation, error) {
	return nil, errors.New("not implemented")
}

func (s *invitationServiceStub) MarkFailed(_ context.Context, id, reason string) (*domain.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failedIDs = append(s.failedIDs, id)
	s.failReason = reason
	return &domain.Invitation{ID: id, Status: domain.InvitationFailed}, nil
}

func (s *invitationServiceStub) Resend(context.Context, string) (*ports.InvitationResult, error) {
	return nil, errors.New("not implemented")
}

func (s *invitationServiceStub) ExpireStale(context.Context, time.Time) (int64, error) {
	return 0, errors.New("not implemented")
}

func newInvitation(id, email string) *domain.Invitation {
	return &domain.Invitation{
		ID:       id,
		TenantID: "volcano",
		Email:    email,
		Status:   domain.InvitationPending,
	}
}

func TestEnqueueFullQueueMarksFailed(t *testing.T) {
	svc := &invitationServiceStub{}
	// A single worker so every recipient shares one buffer. Never started,
	// so nothing drains the channel.
	d := NewDispatcher(1, &senderStub{}, svc, zerolog.Nop())

	for i := 0; i < channelBuffer; i++ {
		d.Enqueue(newInvitation("inv-fill", "team@volcano.example"), "secret")
	}
	if len(svc.failedIDs) != 0 {
		t.Fatalf("no delivery should fail while the buffer has room, got %d", len(svc.failedIDs))
	}

	d.Enqueue(newInvitation("inv-overflow", "team@volcano.example"), "secret")

	if len(svc.failedIDs) != 1 || svc.failedIDs[0] != "inv-overflow" {
		t.Fatalf("expected the overflow invitation marked failed, got %v", svc.failedIDs)
	}
	if svc.failReason != "delivery queue full" {
		t.Fatalf("unexpected failure reason %q", svc.failReason)
	}
}

func TestDeliverSuccessMarksSent(t *testing.T) {
	svc := &invitationServiceStub{}
	sender := &senderStub{}
	d := NewDispatcher(1, sender, svc, zerolog.Nop())

	d.deliver(context.Background(), 0, delivery{invitation: newInvitation("inv-1", "a@x.example"), credential: "secret"})

	if len(sender.sent) != 1 {
		t.Fatalf("expected one send, got %d", len(sender.sent))
	}
	if len(svc.sentIDs) != 1 || svc.sentIDs[0] != "inv-1" {
		t.Fatalf("expected inv-1 marked sent, got %v", svc.sentIDs)
	}
}

func TestDeliverSkipsMarkSentOnResend(t *testing.T) {
	svc := &invitationServiceStub{}
	d := NewDispatcher(1, &senderStub{}, svc, zerolog.Nop())

	inv := newInvitation("inv-2", "b@x.example")
	inv.Status = domain.InvitationSent
	d.deliver(context.Background(), 0, delivery{invitation: inv, credential: "secret"})

	if len(svc.sentIDs) != 0 {
		t.Fatalf("a resend is already sent, MarkSent must not run, got %v", svc.sentIDs)
	}
}

func TestDeliverErrorMarksFailed(t *testing.T) {
	svc := &invitationServiceStub{}
	sender := &senderStub{err: errors.New("smtp down")}
	d := NewDispatcher(1, sender, svc, zerolog.Nop())

	d.deliver(context.Background(), 0, delivery{invitation: newInvitation("inv-3", "c@x.example"), credential: "secret"})

	if len(svc.failedIDs) != 1 || svc.failedIDs[0] != "inv-3" {
		t.Fatalf("expected inv-3 marked failed, got %v", svc.failedIDs)
	}
	if len(svc.sentIDs) != 0 {
		t.Fatalf("a failed delivery must not be marked sent, got %v", svc.sentIDs)
	}
}

func TestShardIndexIsStablePerRecipient(t *testing.T) {
	d := NewDispatcher(4, &senderStub{}, &invitationServiceStub{}, zerolog.Nop())

	first := d.shardIndex("ops@volcano.example")
	for i := 0; i < 10; i++ {
		if got := d.shardIndex("ops@volcano.example"); got != first {
			t.Fatalf("shard index drifted: %d then %d", first, got)
		}
	}
}
