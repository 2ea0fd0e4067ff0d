package main

import (
	"context"

	"github.com/auto-dns/portainer-dns-sync/internal/app"
)

type application interface {
	Run(ctx context.Context) error
	RunOnce(ctx context.Context) error
	Close() error
}

var _ application = (*app.App)(nil)
