// Package metrics defines and registers all custom Prometheus metrics for
// the tenant engine. It is the single source of truth for metric names,
// labels, and help strings. Metrics are registered with the default
// registry at import time via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tenant_engine"

// ── Authorization metrics ─────────────────────────────────────────────────────

// AuthDecisionsTotal counts authorization pipeline outcomes.
// Labels:
//   - outcome: "allowed" or "denied"
//   - reason: "ok", "unauthenticated", "tenant_required", "tenant_denied",
//     "tenant_inactive", "role_denied", "upstream"
var AuthDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_decisions_total",
		Help:      "Total number of authorization decisions, by outcome and reason.",
	},
	[]string{"outcome", "reason"},
)

// TokensRejectedTotal counts bearer tokens rejected by the authentication
// gate before any tenant or role processing.
var TokensRejectedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_rejected_total",
		Help:      "Total number of bearer tokens rejected at the authentication gate.",
	},
)

// ── Invitation metrics ────────────────────────────────────────────────────────

// InvitationTransitionsTotal counts invitation state machine transitions.
// Label:
//   - to: the target status ("sent", "accepted", "expired", "failed")
var InvitationTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invitation_transitions_total",
		Help:      "Total number of invitation status transitions, by target status.",
	},
	[]string{"to"},
)

// InvitationsExpiredTotal counts invitations expired by the background sweep.
var InvitationsExpiredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invitations_expired_total",
		Help:      "Total number of invitations expired by the stale sweep.",
	},
)

// DeliveryQueueDepth tracks the number of invitation deliveries waiting in
// each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var DeliveryQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "delivery_queue_depth",
		Help:      "Current number of invitation deliveries pending per dispatcher worker.",
	},
	[]string{"worker_id"},
)

// ── Role management metrics ───────────────────────────────────────────────────

// RoleChangesTotal counts role grants and revocations applied against the
// identity provider.
// Label:
//   - action: "assign" or "remove"
var RoleChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "role_changes_total",
		Help:      "Total number of role assignments and removals.",
	},
	[]string{"action"},
)
