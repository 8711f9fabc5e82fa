package postgres

import (
	"context"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"invoicedesk/internal/config"
	"invoicedesk/internal/domain"
)

const (
	defaultConnectTimeout = 5 * time.Second
	defaultConnLifetime   = 30 * time.Minute
)

// Pool is the connection pool shape applied to the invoice database.
type Pool struct {
	MaxOpen        int
	MaxIdle        int
	ConnLifetime   time.Duration
	ConnectTimeout time.Duration
}

// PoolFor derives pool settings from cfg. Idle connections never exceed the
// open limit, and unset durations fall back to package defaults.
func PoolFor(cfg *config.DBConfig) Pool {
	p := Pool{
		MaxOpen:        cfg.MaxOpen,
		MaxIdle:        cfg.MaxIdle,
		ConnLifetime:   cfg.ConnLifetime,
		ConnectTimeout: cfg.ConnectTimeout,
	}
	if p.MaxOpen > 0 && p.MaxIdle > p.MaxOpen {
		p.MaxIdle = p.MaxOpen
	}
	if p.ConnLifetime <= 0 {
		p.ConnLifetime = defaultConnLifetime
	}
	if p.ConnectTimeout <= 0 {
		p.ConnectTimeout = defaultConnectTimeout
	}
	return p
}

// Open opens the invoice database and waits at most the connect timeout for
// the first successful ping.
func Open(ctx context.Context, cfg *config.DBConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("postgres.Open: %w: %w", domain.ErrPersistenceFailed, err)
	}

	pool := PoolFor(cfg)
	db.SetMaxOpenConns(pool.MaxOpen)
	db.SetMaxIdleConns(pool.MaxIdle)
	db.SetConnMaxLifetime(pool.ConnLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pool.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres.Open: %s:%d unreachable: %w: %w",
			cfg.Host, cfg.Port, domain.ErrPersistenceFailed, err)
	}
	return db, nil
}
