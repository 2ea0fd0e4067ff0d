package state

import (
	"sync"
	"time"

	"github.com/auto-dns/portainer-dns-sync/internal/domain"
)

// Baseline holds the record set applied by the last successful reconciliation.
type Baseline struct {
	mu        sync.RWMutex
	records   *domain.RecordSet
	updatedAt time.Time
}

// NewBaseline creates an empty baseline, so the first cycle always applies.
func NewBaseline() *Baseline {
	return &Baseline{records: domain.NewRecordSet()}
}

// Get returns the current baseline. Callers must not mutate it.
func (b *Baseline) Get() *domain.RecordSet {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.records
}

// Commit replaces the whole baseline.
func (b *Baseline) Commit(records *domain.RecordSet) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = records
	b.updatedAt = time.Now()
}

// UpdatedAt is the time of the last commit, zero before the first one.
func (b *Baseline) UpdatedAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.updatedAt
}
