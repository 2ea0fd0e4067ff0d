package lock

import (
	"context"
	"sync"
)

// LocalLocker only excludes callers within this process.
type LocalLocker struct {
	mu sync.Mutex
}

var _ Locker = (*LocalLocker)(nil)

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{}
}

func (l *LocalLocker) LockTransaction(ctx context.Context, _ []string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn()
}

func (l *LocalLocker) Close() error { return nil }
