// Package scheduler runs the periodic maintenance jobs of the engine.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/platops/tenant-engine/internal/core/ports"
)

const defaultSweepSchedule = "@every 10m"

// Sweeper periodically expires stale invitations. The underlying sweep is
// idempotent, so an overlapping or repeated run is harmless.
type Sweeper struct {
	cron        *cron.Cron
	invitations ports.InvitationService
	schedule    string
	log         zerolog.Logger
}

// NewSweeper builds a Sweeper on the given cron schedule spec. An empty
// schedule falls back to every ten minutes.
func NewSweeper(invitations ports.InvitationService, schedule string, log zerolog.Logger) *Sweeper {
	if schedule == "" {
		schedule = defaultSweepSchedule
	}
	return &Sweeper{
		cron:        cron.New(),
		invitations: invitations,
		schedule:    schedule,
		log:         log,
	}
}

// Start registers the sweep job and starts the scheduler.
func (s *Sweeper) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.schedule, func() { s.sweep(ctx) })
	if err != nil {
		return fmt.Errorf("register sweep job: %w", err)
	}
	s.cron.Start()
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.invitations.ExpireStale(ctx, time.Now().UTC())
	if err != nil {
		s.log.Error().Err(err).Msg("invitation expiry sweep failed")
		return
	}
	if n > 0 {
		s.log.Info().Int64("expired", n).Msg("invitation expiry sweep")
	}
}
