package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/platops/tenant-engine/internal/api/metrics"
	"github.com/platops/tenant-engine/internal/core/domain"
	"github.com/platops/tenant-engine/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
)

// delivery is a queued invitation delivery job. It carries the plaintext
// temporary credential from creation to the sender and nowhere else; the
// job lives only in memory and is never logged or persisted.
type delivery struct {
	invitation *domain.Invitation
	credential string
}

// Dispatcher routes invitation deliveries to a fixed set of workers using
// consistent hashing on the recipient email, so retries and resends for the
// same recipient stay ordered. The delivery outcome drives the invitation
// state machine: success marks sent, an error marks failed.
type Dispatcher struct {
	workers     []chan delivery
	sender      ports.InvitationSender
	invitations ports.InvitationService
	log         zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sender ports.InvitationSender, invitations ports.InvitationService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:     make([]chan delivery, numWorkers),
		sender:      sender,
		invitations: invitations,
		log:         log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan delivery, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands an invitation to the worker responsible for its recipient.
// Never blocks: when the worker's buffer is full the delivery is dropped
// and the invitation marked failed, so it stays resendable.
func (d *Dispatcher) Enqueue(inv *domain.Invitation, temporaryCredential string) {
	idx := d.shardIndex(inv.Email)
	select {
	case d.workers[idx] <- delivery{invitation: inv, credential: temporaryCredential}:
		metrics.DeliveryQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		d.log.Error().
			Str("invitation_id", inv.ID).
			Str("tenant", inv.TenantID).
			Int("worker_id", idx).
			Msg("delivery queue full, dropping")
		if _, err := d.invitations.MarkFailed(context.Background(), inv.ID, "delivery queue full"); err != nil {
			d.log.Error().Err(err).Str("invitation_id", inv.ID).Msg("mark failed")
		}
	}
}

// shardIndex maps a recipient email deterministically to a worker index.
func (d *Dispatcher) shardIndex(email string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(email))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			d.deliver(ctx, id, job)
			metrics.DeliveryQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, workerID int, job delivery) {
	inv := job.invitation
	if err := d.sender.Send(ctx, inv, job.credential); err != nil {
		d.log.Error().Err(err).
			Str("invitation_id", inv.ID).
			Str("tenant", inv.TenantID).
			Int("worker_id", workerID).
			Msg("invitation delivery failed")
		if _, err := d.invitations.MarkFailed(ctx, inv.ID, err.Error()); err != nil {
			d.log.Error().Err(err).Str("invitation_id", inv.ID).Msg("mark failed")
		}
		return
	}

	// Resent invitations are already in sent; only first deliveries need
	// the pending -> sent transition.
	if inv.Status == domain.InvitationPending {
		if _, err := d.invitations.MarkSent(ctx, inv.ID); err != nil {
			d.log.Error().Err(err).Str("invitation_id", inv.ID).Msg("mark sent")
		}
	}
}
