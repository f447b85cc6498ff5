// Package postgres stores player saves in PostgreSQL using pgx v5. The schema
// ships as embedded golang-migrate migrations.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/idlegather/internal/config"
)

// Connection attempts made by NewPool before giving up. The delay doubles
// after each failed ping.
const (
	connectAttempts = 5
	connectDelay    = 250 * time.Millisecond
)

// Pool is the connection pool shared by the save repository and health checks.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool opens a pool from cfg and waits for the database to answer a ping,
// retrying while a freshly started server is still coming up.
//
// Precondition: cfg must hold valid connection parameters.
// Postcondition: Returns a pool that answered a ping, or a non-nil error.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	delay := connectDelay
	for attempt := 1; ; attempt++ {
		err = pool.Ping(ctx)
		if err == nil {
			return &Pool{pool: pool}, nil
		}
		if attempt == connectAttempts {
			break
		}
		select {
		case <-ctx.Done():
			pool.Close()
			return nil, fmt.Errorf("pinging database: %w", ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}
	pool.Close()
	return nil, fmt.Errorf("pinging database after %d attempts: %w", connectAttempts, err)
}

// Health pings the database, failing if it does not answer within timeout.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

// Close releases every connection. The pool is unusable afterwards.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB returns the underlying pgx pool for repositories.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
