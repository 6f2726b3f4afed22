package domain

import "time"

// InvitationStatus represents the lifecycle state of an invitation.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationSent     InvitationStatus = "sent"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationExpired  InvitationStatus = "expired"
	InvitationFailed   InvitationStatus = "failed"
)

// validInvitationTransitions defines the allowed state machine transitions.
// Expired and failed invitations re-enter "sent" only through Resend, which
// additionally regenerates the temporary credential.
var validInvitationTransitions = map[InvitationStatus][]InvitationStatus{
	InvitationPending: {InvitationSent, InvitationFailed},
	InvitationSent:    {InvitationAccepted, InvitationExpired, InvitationFailed},
	InvitationExpired: {InvitationSent},
	InvitationFailed:  {InvitationSent},
}

// resendableStatuses are the states Resend may be invoked from.
var resendableStatuses = []InvitationStatus{InvitationSent, InvitationExpired, InvitationFailed}

// CanTransitionTo reports whether a transition from the current status to
// next is valid.
func (s InvitationStatus) CanTransitionTo(next InvitationStatus) bool {
	for _, allowed := range validInvitationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Resendable reports whether a resend is allowed from this status.
func (s InvitationStatus) Resendable() bool {
	for _, st := range resendableStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
// Only accepted is truly terminal: expired and failed can be resent.
func (s InvitationStatus) Terminal() bool {
	return len(validInvitationTransitions[s]) == 0 && !s.Resendable()
}

// Invitation tracks a new user's onboarding from creation through
// acceptance, expiry or failure. CredentialHash stores a one-way hash of
// the temporary credential; the plaintext is returned exactly once at
// creation or resend and is never persisted or logged. Invitations are
// never deleted — multiple rows may exist per (tenant, email) to preserve
// history.
type Invitation struct {
	ID             string           `json:"id" bson:"_id"`
	TenantID       string           `json:"tenant_id" bson:"tenant_id"`
	Email          string           `json:"email" bson:"email"`
	Status         InvitationStatus `json:"status" bson:"status"`
	CredentialHash string           `json:"-" bson:"credential_hash"`
	FailureReason  string           `json:"failure_reason,omitempty" bson:"failure_reason,omitempty"`
	ResendCount    int              `json:"resend_count" bson:"resend_count"`
	CreatedAt      time.Time        `json:"created_at" bson:"created_at"`
	ExpiresAt      time.Time        `json:"expires_at" bson:"expires_at"`
	SentAt         time.Time        `json:"sent_at,omitzero" bson:"sent_at,omitempty"`
	AcceptedAt     time.Time        `json:"accepted_at,omitzero" bson:"accepted_at,omitempty"`
	LastResendAt   time.Time        `json:"last_resend_at,omitzero" bson:"last_resend_at,omitempty"`
	UpdatedAt      time.Time        `json:"updated_at" bson:"updated_at"`
}

// Open reports whether the invitation still awaits an outcome. Used to
// block duplicate invitations for the same (tenant, email) pair.
func (i *Invitation) Open() bool {
	return i.Status == InvitationPending || i.Status == InvitationSent
}
