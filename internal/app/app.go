package app

import (
	"context"
	"fmt"
	"os"

	"github.com/auto-dns/portainer-dns-sync/internal/config"
	"github.com/auto-dns/portainer-dns-sync/internal/core"
	"github.com/auto-dns/portainer-dns-sync/internal/inventory"
	"github.com/auto-dns/portainer-dns-sync/internal/lock"
	"github.com/auto-dns/portainer-dns-sync/internal/powerdns"
	"github.com/auto-dns/portainer-dns-sync/internal/state"
	"github.com/rs/zerolog"
	clientv3 "go.etcd.io/etcd/client/v3"
)

type App struct {
	locker lock.Locker
	engine *core.SyncEngine
	logger zerolog.Logger
}

// New creates a new App by wiring up all dependencies.
func New(cfg *config.Config, logger zerolog.Logger) (*App, error) {
	// Inventory and zone clients
	inv := inventory.NewPortainerClient(&cfg.Portainer, nil, logger)
	zone := powerdns.NewClient(&cfg.PowerDNS, cfg.DNS.Zone, nil, logger)

	// Cycle lock
	locker, err := newLocker(cfg, logger)
	if err != nil {
		return nil, err
	}

	// Engine
	reconciler := core.NewReconciler(inv, zone, state.NewBaseline(), locker, core.ReconcilerOptions{
		Zones:    core.Zones{DNSZone: cfg.DNS.Zone, BaseZone: cfg.DNS.BaseZone},
		LockKeys: []string{cfg.Etcd.LockKey},
		DryRun:   cfg.App.DryRun,
	}, logger)
	engine := core.NewSyncEngine(logger, cfg.App.PollInterval, reconciler)

	logger.Info().
		Str("zone", cfg.DNS.Zone).
		Str("base_zone", cfg.DNS.BaseZone).
		Str("portainer", cfg.Portainer.APIEndpoint).
		Str("powerdns", zone.ZoneURL()).
		Bool("dry_run", cfg.App.DryRun).
		Msg("Application configured")

	return &App{
		locker: locker,
		engine: engine,
		logger: logger,
	}, nil
}

func newLocker(cfg *config.Config, logger zerolog.Logger) (lock.Locker, error) {
	if !cfg.Etcd.LockEnabled() {
		return lock.NewLocalLocker(), nil
	}

	etcdClient, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Etcd.Endpoints,
		DialTimeout: cfg.Etcd.DialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to etcd: %w", err)
	}

	owner, err := os.Hostname()
	if err != nil || owner == "" {
		owner = "portainer-dns-sync"
	}
	return lock.NewEtcdLocker(etcdClient, &cfg.Etcd, owner, logger), nil
}

// Run starts the application by running the sync engine until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info().Msg("Application starting")
	return a.engine.Run(ctx)
}

// RunOnce performs a single reconciliation and returns its error, if any.
func (a *App) RunOnce(ctx context.Context) error {
	a.logger.Info().Msg("Running a single reconciliation")
	return a.engine.RunOnce(ctx)
}

func (a *App) Close() error {
	if a.locker != nil {
		if err := a.locker.Close(); err != nil {
			return fmt.Errorf("close lock: %w", err)
		}
	}
	return nil
}
