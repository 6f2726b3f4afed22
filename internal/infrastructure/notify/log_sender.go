// Package notify holds invitation delivery channels.
package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/platops/tenant-engine/internal/core/domain"
)

// LogSender is a development stand-in for a real mail channel: it records
// that a delivery would have happened. The temporary credential is
// deliberately not part of the log line.
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, inv *domain.Invitation, _ string) error {
	s.log.Info().
		Str("invitation_id", inv.ID).
		Str("tenant", inv.TenantID).
		Str("email", inv.Email).
		Msg("invitation delivery (log sender)")
	return nil
}
