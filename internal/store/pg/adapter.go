// Package pg implementa el adapter PostgreSQL del store.
// Usa pgxpool directamente; el payload de token records vive en una
// columna JSONB opaca.
package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/tokenbridge/internal/domain/repository"
	store "github.com/dropDatabas3/tokenbridge/internal/store"
)

func init() {
	store.RegisterAdapter(&postgresAdapter{})
}

// postgresAdapter implementa store.Adapter para PostgreSQL.
type postgresAdapter struct{}

func (a *postgresAdapter) Name() string { return "postgres" }

func (a *postgresAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.AdapterConnection, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("pg: DSN is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pg: parse DSN: %w", err)
	}

	// Configurar pool
	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	} else {
		poolCfg.MaxConns = 10
	}
	if cfg.MaxIdleConns > 0 {
		poolCfg.MinConns = int32(cfg.MaxIdleConns)
	} else {
		poolCfg.MinConns = 2
	}
	poolCfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pg: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}

	return &pgConnection{pool: pool}, nil
}

// pgConnection implementa store.AdapterConnection.
type pgConnection struct {
	pool *pgxpool.Pool
}

func (c *pgConnection) Name() string                   { return "postgres" }
func (c *pgConnection) Ping(ctx context.Context) error { return c.pool.Ping(ctx) }
func (c *pgConnection) Close() error                   { c.pool.Close(); return nil }

func (c *pgConnection) Records() repository.RecordRepository  { return &recordRepo{pool: c.pool} }
func (c *pgConnection) Policies() repository.PolicyRepository { return &policyRepo{pool: c.pool} }
func (c *pgConnection) Events() repository.EventRepository    { return &eventRepo{pool: c.pool} }
func (c *pgConnection) Clients() repository.ClientRepository  { return &clientRepo{pool: c.pool} }

// nullIfEmpty returns nil if the string is empty, otherwise the pointer.
// Useful for inserting optional string fields into PostgreSQL.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
