package core

import (
	"context"
	"time"

	"github.com/auto-dns/portainer-dns-sync/internal/domain"
	"github.com/auto-dns/portainer-dns-sync/internal/powerdns"
)

type inventorySource interface {
	ListEndpoints(ctx context.Context) ([]domain.Endpoint, error)
}

type zoneClient interface {
	GetZone(ctx context.Context) (*powerdns.Zone, error)
	PatchZone(ctx context.Context, rrsets []powerdns.RRSet) error
	RectifyZone(ctx context.Context) error
}

type baselineStore interface {
	Get() *domain.RecordSet
	Commit(records *domain.RecordSet)
	UpdatedAt() time.Time
}

type cycleLocker interface {
	LockTransaction(ctx context.Context, keys []string, fn func() error) error
}

type cycleRunner interface {
	RunCycle(ctx context.Context) (CycleResult, error)
	LastApplied() time.Time
}
