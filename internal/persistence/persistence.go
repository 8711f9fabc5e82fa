// Package persistence selects the invoice gateway for the configured mode.
package persistence

import (
	"context"
	"fmt"

	"invoicedesk/internal/backend"
	"invoicedesk/internal/config"
	"invoicedesk/internal/persistence/local"
	"invoicedesk/internal/persistence/postgres"
	"invoicedesk/internal/persistence/remote"
	"invoicedesk/internal/port"
)

// Handle is an opened gateway with its lifecycle hooks.
type Handle struct {
	Gateway port.Gateway
	Mode    string

	ping  func(ctx context.Context) error
	close func() error
}

// Ping reports whether the gateway's own store is reachable. Remote mode has
// nothing local to check.
func (h *Handle) Ping(ctx context.Context) error {
	if h.ping == nil {
		return nil
	}
	return h.ping(ctx)
}

// Close releases the underlying store.
func (h *Handle) Close() error {
	if h.close == nil {
		return nil
	}
	return h.close()
}

// Open builds the gateway for cfg.Persistence.Mode.
func Open(cfg *config.Config, b *backend.Client) (*Handle, error) {
	switch cfg.Persistence.Mode {
	case config.ModeRemote:
		return &Handle{Gateway: remote.NewGateway(b), Mode: config.ModeRemote}, nil

	case config.ModeLocal:
		g, err := local.Open(cfg.Local.Path)
		if err != nil {
			return nil, err
		}
		return &Handle{Gateway: g, Mode: config.ModeLocal, ping: g.Ping, close: g.Close}, nil

	case config.ModePostgres:
		db, err := postgres.Open(context.Background(), &cfg.DB)
		if err != nil {
			return nil, err
		}
		g := postgres.NewGateway(db)
		return &Handle{Gateway: g, Mode: config.ModePostgres, ping: g.Ping, close: db.Close}, nil
	}
	return nil, fmt.Errorf("persistence.Open: unknown mode %q", cfg.Persistence.Mode)
}
