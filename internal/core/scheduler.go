package core

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/auto-route/docker-gateway-sync/internal/config"
	"github.com/auto-route/docker-gateway-sync/internal/notify"
)

type cycler interface {
	Cycle(ctx context.Context) Stats
}

// Scheduler owns the timing loop: it fires refresh cycles on the configured
// interval, services watchdog heartbeats between cycles, and reacts to
// termination. Cycles run strictly sequentially on this single loop; there
// is no overlap by construction.
type Scheduler struct {
	logger     zerolog.Logger
	cfg        *config.AppConfig
	reconciler cycler
	notifier   notify.Notifier
	heartbeat  time.Duration // 0 disables heartbeats
}

func NewScheduler(logger zerolog.Logger, cfg *config.AppConfig, reconciler cycler, notifier notify.Notifier, heartbeat time.Duration) *Scheduler {
	return &Scheduler{
		logger:     logger,
		cfg:        cfg,
		reconciler: reconciler,
		notifier:   notifier,
		heartbeat:  heartbeat,
	}
}

// Run blocks until the context is cancelled (or, in once mode, after a
// single cycle). Readiness is signalled after the first cycle establishes
// initial state. On shutdown, published entries are deliberately left to
// expire via their leases: the daemon going away does not mean the
// containers did.
func (s *Scheduler) Run(ctx context.Context) error {
	stats := s.runCycle(ctx)
	s.notifier.Ready()

	if s.cfg.Once {
		s.notifier.Stopping()
		if stats.Failed() {
			return fmt.Errorf("single reconciliation pass had %d failure(s)", stats.Failures)
		}
		return nil
	}

	ticker := time.NewTicker(s.cfg.Interval())
	defer ticker.Stop()

	var heartbeatC <-chan time.Time
	if s.heartbeat > 0 {
		hb := time.NewTicker(s.heartbeat)
		defer hb.Stop()
		heartbeatC = hb.C
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Termination requested; shutting down")
			s.notifier.Stopping()
			return nil
		case <-ticker.C:
			s.runCycle(ctx)
			if ctx.Err() != nil {
				// A signal arrived while the cycle was in flight. The cycle
				// was allowed to finish; exit before starting another.
				s.logger.Info().Msg("Termination requested during cycle; shutting down")
				s.notifier.Stopping()
				return nil
			}
		case <-heartbeatC:
			// Reached only between cycles. A hung cycle blocks this loop,
			// the heartbeat goes missing, and the service manager restarts
			// us - masking that with a concurrent heartbeat would hide the
			// hang.
			s.notifier.Alive()
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) Stats {
	// The cycle runs on a non-cancellable context: termination must not
	// interrupt in-flight registry mutations and leave the view inconsistent.
	stats := s.reconciler.Cycle(context.WithoutCancel(ctx))
	evt := s.logger.Info()
	if stats.Failed() {
		evt = s.logger.Warn()
	}
	evt.
		Bool("runtime_down", stats.RuntimeDown).
		Int("desired", stats.Desired).
		Int("published", stats.Published).
		Int("renewed", stats.Renewed).
		Int("removed", stats.Removed).
		Int("invalid_specs", stats.InvalidSpecs).
		Int("collisions", stats.Collisions).
		Int("failures", stats.Failures).
		Msg("Reconciliation cycle complete")
	return stats
}
