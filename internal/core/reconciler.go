package core

import (
	"context"
	"errors"
	"time"

	"github.com/auto-dns/portainer-dns-sync/internal/domain"
	"github.com/auto-dns/portainer-dns-sync/internal/powerdns"
	"github.com/auto-dns/portainer-dns-sync/internal/util"
	"github.com/rs/zerolog"
)

// CycleResult summarizes one reconciliation cycle.
type CycleResult struct {
	Changed  bool
	Added    []domain.Record
	Removed  []domain.Record
	Deleted  int
	Replaced int
	DryRun   bool
}

// ReconcilerOptions are the per-deployment settings of a Reconciler.
type ReconcilerOptions struct {
	Zones    Zones
	LockKeys []string
	DryRun   bool
}

// Reconciler runs fetch, normalize, diff and, when something changed, the zone update.
type Reconciler struct {
	inventory inventorySource
	zone      zoneClient
	baseline  baselineStore
	locker    cycleLocker
	opts      ReconcilerOptions
	logger    zerolog.Logger
}

func NewReconciler(inv inventorySource, zone zoneClient, baseline baselineStore, locker cycleLocker, opts ReconcilerOptions, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		inventory: inv,
		zone:      zone,
		baseline:  baseline,
		locker:    locker,
		opts:      opts,
		logger:    logger.With().Str("component", "reconciler").Logger(),
	}
}

// RunCycle performs one reconciliation under the cycle lock. Any error leaves
// the baseline as it was, so the next cycle retries from the last applied state.
func (r *Reconciler) RunCycle(ctx context.Context) (CycleResult, error) {
	var result CycleResult
	err := r.locker.LockTransaction(ctx, r.opts.LockKeys, func() error {
		var err error
		result, err = r.reconcile(ctx)
		return err
	})
	if err != nil {
		var cycleErr *CycleError
		if errors.As(err, &cycleErr) {
			return CycleResult{}, err
		}
		return CycleResult{}, NewCycleError(StageLock, err)
	}
	return result, nil
}

// LastApplied is when the zone was last brought in line, zero before the first success.
func (r *Reconciler) LastApplied() time.Time {
	return r.baseline.UpdatedAt()
}

func (r *Reconciler) reconcile(ctx context.Context) (CycleResult, error) {
	endpoints, err := r.inventory.ListEndpoints(ctx)
	if err != nil {
		var normErr *domain.NormalizationError
		if errors.As(err, &normErr) {
			return CycleResult{}, NewCycleError(StageNormalize, err)
		}
		return CycleResult{}, NewCycleError(StageFetchInventory, err)
	}

	desired, err := BuildRecordSet(endpoints, r.opts.Zones, r.logger)
	if err != nil {
		return CycleResult{}, NewCycleError(StageNormalize, err)
	}
	desired = ValidateRecordSet(desired, r.logger)

	diff := DiffRecordSets(desired, r.baseline.Get())
	if !diff.Changed() {
		r.logger.Debug().Int("records", desired.Len()).Msg("No change detected")
		return CycleResult{}, nil
	}

	r.logger.Info().
		Strs("added", util.Map(diff.Added, domain.Record.Render)).
		Strs("removed", util.Map(diff.Removed, domain.Record.Render)).
		Msg("Change detected")

	zone, err := r.zone.GetZone(ctx)
	if err != nil {
		return CycleResult{}, NewCycleError(StageFetchZone, err)
	}

	rrsets := BuildTransaction(zone, desired)
	result := CycleResult{
		Changed: true,
		Added:   diff.Added,
		Removed: diff.Removed,
		DryRun:  r.opts.DryRun,
	}
	for _, rr := range rrsets {
		if rr.Changetype == powerdns.ChangeDelete {
			result.Deleted++
		} else {
			result.Replaced++
		}
	}

	if r.opts.DryRun {
		// the zone is untouched, so the baseline is too
		for _, rr := range rrsets {
			r.logger.Info().Str("changetype", rr.Changetype).Str("name", rr.Name).Str("type", rr.Type).Msg("Dry run: would submit rrset")
		}
		return result, nil
	}

	if err := r.zone.PatchZone(ctx, rrsets); err != nil {
		return CycleResult{}, NewCycleError(StageApply, err)
	}
	if err := r.zone.RectifyZone(ctx); err != nil {
		return CycleResult{}, NewCycleError(StageRectify, err)
	}

	r.baseline.Commit(desired)
	r.logger.Info().Int("deleted", result.Deleted).Int("replaced", result.Replaced).Msg("Zone updated")
	return result, nil
}
