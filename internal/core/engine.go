package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// SyncEngine drives reconciliation cycles on a fixed interval.
type SyncEngine struct {
	logger     zerolog.Logger
	interval   time.Duration
	reconciler cycleRunner
	after      func(time.Duration) <-chan time.Time
}

func NewSyncEngine(logger zerolog.Logger, interval time.Duration, reconciler cycleRunner) *SyncEngine {
	return &SyncEngine{
		logger:     logger.With().Str("component", "engine").Logger(),
		interval:   interval,
		reconciler: reconciler,
		after:      time.After,
	}
}

// Run reconciles until ctx is cancelled. Cancellation is only observed between
// cycles; a cycle in flight finishes (bounded by per-call timeouts) so the zone
// is never left with half a transaction applied.
func (se *SyncEngine) Run(ctx context.Context) error {
	se.logger.Info().Dur("interval", se.interval).Msg("Starting SyncEngine")
	for {
		if ctx.Err() != nil {
			se.logger.Info().Msg("SyncEngine shutting down")
			return nil
		}

		se.logger.Debug().Msg("Reconciliation loop tick")
		if _, err := se.reconciler.RunCycle(context.WithoutCancel(ctx)); err != nil {
			se.logFailure(err)
		}

		select {
		case <-ctx.Done():
			se.logger.Info().Msg("SyncEngine shutting down")
			return nil
		case <-se.after(se.interval):
		}
	}
}

// RunOnce performs a single cycle and reports its outcome.
func (se *SyncEngine) RunOnce(ctx context.Context) error {
	result, err := se.reconciler.RunCycle(context.WithoutCancel(ctx))
	if err != nil {
		se.logFailure(err)
		return err
	}
	se.logger.Info().
		Bool("changed", result.Changed).
		Bool("dry_run", result.DryRun).
		Int("deleted", result.Deleted).
		Int("replaced", result.Replaced).
		Msg("Single reconciliation finished")
	return nil
}

func (se *SyncEngine) logFailure(err error) {
	event := se.logger.Error().Err(err).Str("kind", failureKind(err))
	if last := se.reconciler.LastApplied(); !last.IsZero() {
		event = event.Dur("since_last_applied", time.Since(last))
	} else {
		event = event.Bool("never_applied", true)
	}
	event.Msg("Sync error")
}
