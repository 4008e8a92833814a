package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/auto-route/docker-gateway-sync/internal/config"
	"github.com/auto-route/docker-gateway-sync/internal/domain"
	"github.com/auto-route/docker-gateway-sync/internal/registry"
	"github.com/auto-route/docker-gateway-sync/internal/spec"
	"github.com/auto-route/docker-gateway-sync/internal/state"
)

type inspector interface {
	ListRunning(ctx context.Context) ([]domain.Container, error)
}

// Reconciler drives one refresh cycle: observe running containers, derive
// the desired route set, diff it against the local published view, and apply
// the diff to the registry. The view moves forward only on confirmed
// operations; there is no rollback, only retry by re-derivation next cycle.
type Reconciler struct {
	logger    zerolog.Logger
	cfg       *config.AppConfig
	inspector inspector
	registry  registry.Registry
	view      *state.View
}

func NewReconciler(logger zerolog.Logger, cfg *config.AppConfig, inspector inspector, reg registry.Registry, view *state.View) *Reconciler {
	return &Reconciler{
		logger:    logger,
		cfg:       cfg,
		inspector: inspector,
		registry:  reg,
		view:      view,
	}
}

// Stats summarizes one cycle for the scheduler's log line. Partial failures
// are observability data, not fatal conditions.
type Stats struct {
	Desired      int
	Published    int
	Renewed      int
	Removed      int
	InvalidSpecs int
	Collisions   int
	Failures     int
	RuntimeDown  bool
}

func (s Stats) Failed() bool {
	return s.RuntimeDown || s.Failures > 0
}

// SeedFromRegistry rebuilds the local view from current registry contents.
// Run once at startup (enumerate mode) so a restarted daemon can clean up
// records owned by containers that stopped while it was down, instead of
// leaving them to expire.
func (r *Reconciler) SeedFromRegistry(ctx context.Context) error {
	records, err := r.registry.Enumerate(ctx)
	if err != nil {
		return fmt.Errorf("enumerate published records: %w", err)
	}
	r.view.Seed(records)
	r.logger.Info().Int("records", len(records)).Msg("Seeded published state from registry")
	return nil
}

// Cycle runs one reconciliation pass. It never aborts part-way on
// per-domain failures; only an unreachable container runtime ends the cycle
// early, with the view untouched so nothing gets deleted on unknown state.
func (r *Reconciler) Cycle(ctx context.Context) Stats {
	var stats Stats

	containers, err := r.inspector.ListRunning(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("Container runtime query failed; leaving published state untouched")
		stats.RuntimeDown = true
		stats.Failures++
		return stats
	}

	desired, order := r.desiredState(containers, &stats)
	stats.Desired = len(order)

	ttl := r.cfg.LeaseTTL()
	for _, domainName := range order {
		rec := desired[domainName]
		entry, tracked := r.view.Get(domainName)

		needPublish := !tracked || entry.Lease == 0 || !entry.Record.Equal(rec)
		if !needPublish {
			if r.cfg.DryRun {
				stats.Renewed++
				continue
			}
			err := r.registry.Renew(ctx, entry.Lease)
			if err == nil {
				stats.Renewed++
				continue
			}
			if errors.Is(err, registry.ErrLeaseExpired) {
				r.view.ClearLease(domainName)
				r.logger.Warn().Str("domain", domainName).Msg("Registry lease expired underneath us; re-publishing")
				needPublish = true
			} else {
				r.logger.Error().Err(err).Str("domain", domainName).Msg("Lease renewal failed; retrying next cycle")
				stats.Failures++
				continue
			}
		}

		if r.cfg.DryRun {
			r.logger.Info().Msgf("DRY RUN: would publish %s", rec.Render())
			stats.Published++
			continue
		}
		lease, err := r.registry.Publish(ctx, rec, ttl)
		if err != nil {
			// The view keeps its previous entry: the record is not marked
			// published until the registry confirms it.
			r.logger.Error().Err(err).Str("domain", domainName).Msg("Publish failed; retrying next cycle")
			stats.Failures++
			continue
		}
		r.view.Set(domainName, state.Entry{Record: rec, Lease: lease})
		stats.Published++
	}

	for _, domainName := range r.view.Domains() {
		if _, still := desired[domainName]; still {
			continue
		}
		entry, _ := r.view.Get(domainName)
		if r.cfg.DryRun {
			r.logger.Info().Msgf("DRY RUN: would unpublish %s", entry.Record.Render())
			stats.Removed++
			continue
		}
		if err := r.registry.Unpublish(ctx, domainName); err != nil {
			r.logger.Error().Err(err).Str("domain", domainName).Msg("Unpublish failed; retrying next cycle")
			stats.Failures++
			continue
		}
		r.logger.Info().Msgf("Unpublished stale route %s", entry.Record.Render())
		r.view.Delete(domainName)
		stats.Removed++
	}

	return stats
}

// desiredState parses every observation into route records and resolves
// domain collisions: the first-seen declaration in enumeration order wins,
// later ones are treated as absent for this cycle.
func (r *Reconciler) desiredState(containers []domain.Container, stats *Stats) (map[string]domain.RouteRecord, []string) {
	desired := make(map[string]domain.RouteRecord)
	var order []string
	for _, c := range containers {
		records, invalid := spec.Parse(c, r.cfg.LabelPrefix)
		for _, ie := range invalid {
			r.logger.Warn().Str("container", ie.ContainerName).Str("label", ie.Label).Msg(ie.Error())
			stats.InvalidSpecs++
		}
		for _, rec := range records {
			if winner, taken := desired[rec.Domain]; taken {
				r.logger.Warn().
					Str("domain", rec.Domain).
					Str("winner", winner.ContainerName).
					Str("loser", rec.ContainerName).
					Msg("Duplicate domain declaration; first-seen container wins")
				stats.Collisions++
				continue
			}
			desired[rec.Domain] = rec
			order = append(order, rec.Domain)
		}
	}
	return desired, order
}
