package lock

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/auto-dns/portainer-dns-sync/internal/config"
	"github.com/rs/zerolog"
	clientv3 "go.etcd.io/etcd/client/v3"
)

type etcdClient interface {
	Delete(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.DeleteResponse, error)
	Grant(ctx context.Context, ttl int64) (*clientv3.LeaseGrantResponse, error)
	KeepAlive(ctx context.Context, id clientv3.LeaseID) (<-chan *clientv3.LeaseKeepAliveResponse, error)
	Txn(ctx context.Context) clientv3.Txn
	Revoke(ctx context.Context, id clientv3.LeaseID) (*clientv3.LeaseRevokeResponse, error)
	Close() error
}

// EtcdLocker takes leased lock keys in etcd so that only one replica reconciles the zone at a time.
type EtcdLocker struct {
	client etcdClient
	cfg    *config.EtcdConfig
	owner  string
	logger zerolog.Logger
	sleep  func(time.Duration)
}

var _ Locker = (*EtcdLocker)(nil)

func NewEtcdLocker(client etcdClient, cfg *config.EtcdConfig, owner string, logger zerolog.Logger) *EtcdLocker {
	return &EtcdLocker{
		client: client,
		cfg:    cfg,
		owner:  owner,
		logger: logger.With().Str("component", "etcd_lock").Logger(),
		sleep:  time.Sleep,
	}
}

func lockKeyFor(key string) string {
	return "/locks/" + strings.TrimLeft(key, "/")
}

func (el *EtcdLocker) leaseTTLSeconds() int64 {
	secs := int64(el.cfg.LockTTL / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

// callCtx bounds a single etcd request. The client otherwise waits for a
// connection indefinitely.
func (el *EtcdLocker) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if el.cfg.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, el.cfg.RequestTimeout)
}

// LockTransaction acquires every key in order, runs fn, then releases the keys in reverse order.
// A key still held after LockTimeout fails the call without running fn. The leases are
// kept alive while fn runs.
func (el *EtcdLocker) LockTransaction(ctx context.Context, keys []string, fn func() error) error {
	leases := make([]heldLease, 0, len(keys))
	defer func() { el.release(ctx, leases) }()

	for _, key := range keys {
		lease, err := el.acquire(ctx, key)
		if err != nil {
			return err
		}
		leases = append(leases, lease)
		el.logger.Debug().Str("key", lease.lockKey).Msg("Acquired lock")
	}

	stop, err := el.keepAlive(ctx, leases)
	if err != nil {
		return err
	}
	defer stop()

	return fn()
}

func (el *EtcdLocker) acquire(ctx context.Context, key string) (heldLease, error) {
	lockKey := lockKeyFor(key)

	grantCtx, cancel := el.callCtx(ctx)
	leaseResp, err := el.client.Grant(grantCtx, el.leaseTTLSeconds())
	cancel()
	if err != nil {
		return heldLease{}, fmt.Errorf("failed to create lease: %w", err)
	}

	start := time.Now()
	for time.Since(start) < el.cfg.LockTimeout {
		txnCtx, cancel := el.callCtx(ctx)
		txnResp, err := el.client.Txn(txnCtx).
			If(clientv3.Compare(clientv3.CreateRevision(lockKey), "=", 0)).
			Then(clientv3.OpPut(lockKey, el.owner, clientv3.WithLease(leaseResp.ID))).
			Commit()
		cancel()
		if err != nil {
			el.revoke(ctx, lockKey, leaseResp.ID)
			return heldLease{}, fmt.Errorf("failed to take lock on %s: %w", key, err)
		}
		if txnResp.Succeeded {
			return heldLease{lockKey: lockKey, lease: leaseResp.ID}, nil
		}
		el.sleep(el.cfg.LockRetryInterval)
	}

	el.revoke(ctx, lockKey, leaseResp.ID)
	return heldLease{}, fmt.Errorf("failed to acquire lock on %s", key)
}

// keepAlive refreshes every held lease until the returned stop func is called.
func (el *EtcdLocker) keepAlive(ctx context.Context, leases []heldLease) (context.CancelFunc, error) {
	kaCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	for _, l := range leases {
		ch, err := el.client.KeepAlive(kaCtx, l.lease)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to keep lease for %s alive: %w", l.lockKey, err)
		}
		go func() {
			for range ch {
			}
		}()
	}
	return cancel, nil
}

// release runs on its own context so a cancelled caller still frees the keys.
func (el *EtcdLocker) release(ctx context.Context, leases []heldLease) {
	ctx = context.WithoutCancel(ctx)
	for i := len(leases) - 1; i >= 0; i-- {
		l := leases[i]
		delCtx, cancel := el.callCtx(ctx)
		if _, err := el.client.Delete(delCtx, l.lockKey); err != nil {
			el.logger.Warn().Err(err).Msgf("failed to delete lock key %s", l.lockKey)
		}
		cancel()
		el.revoke(ctx, l.lockKey, l.lease)
	}
}

func (el *EtcdLocker) revoke(ctx context.Context, lockKey string, id clientv3.LeaseID) {
	revokeCtx, cancel := el.callCtx(context.WithoutCancel(ctx))
	defer cancel()
	if _, err := el.client.Revoke(revokeCtx, id); err != nil {
		el.logger.Warn().Err(err).Msgf("failed to revoke lease for %s", lockKey)
	}
}

func (el *EtcdLocker) Close() error {
	return el.client.Close()
}
