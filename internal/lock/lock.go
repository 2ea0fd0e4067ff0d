// Package lock serializes reconciliation cycles, across replicas when etcd is configured.
package lock

import "context"

// Locker runs fn while holding exclusive locks on keys.
type Locker interface {
	LockTransaction(ctx context.Context, keys []string, fn func() error) error
	Close() error
}
