package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-karim/site-sense-architect/internal/config"
)

const (
	applicationName = "site-sense-api"
	connectTimeout  = 5 * time.Second
)

// ErrNotConnected is returned by Ping on a Database without a pool.
var ErrNotConnected = errors.New("database pool not initialized")

// Database holds the pgx pool shared by the reference repositories and the
// durable artifact store.
type Database struct {
	Pool *pgxpool.Pool
}

// NewPostgresPool opens a pool sized by cfg and pings it before returning.
// Sessions run in UTC so artifact timestamps round-trip unchanged.
func NewPostgresPool(ctx context.Context, cfg config.DatabaseConfig) (*Database, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MinConns = int32(cfg.PoolMin)
	poolConfig.MaxConns = int32(cfg.PoolMax)
	poolConfig.ConnConfig.ConnectTimeout = connectTimeout
	poolConfig.ConnConfig.RuntimeParams["application_name"] = applicationName
	poolConfig.ConnConfig.RuntimeParams["timezone"] = "UTC"
	poolConfig.MaxConnIdleTime = 30 * time.Second
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database at %s:%s: %w", cfg.Host, cfg.Port, err)
	}

	return &Database{Pool: pool}, nil
}

// Ping checks that a connection can be acquired. Used by the readiness probe.
func (db *Database) Ping(ctx context.Context) error {
	if db == nil || db.Pool == nil {
		return ErrNotConnected
	}
	return db.Pool.Ping(ctx)
}

// Close releases the pool. Safe to call more than once.
func (db *Database) Close() {
	if db != nil && db.Pool != nil {
		db.Pool.Close()
	}
}

// Stats returns pool statistics, or nil without a pool.
func (db *Database) Stats() *pgxpool.Stat {
	if db == nil || db.Pool == nil {
		return nil
	}
	return db.Pool.Stat()
}
