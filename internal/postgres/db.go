package postgres

import (
	"context"
	"time"

	"github.com/ariefcatur/go-grocery-store/internal/apperr"
	"github.com/ariefcatur/go-grocery-store/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

const pingTimeout = 2 * time.Second

// Provider owns the connection pool shared by every repository.
// The pool dials lazily and replaces broken connections on its own;
// Check is the per-request liveness probe.
type Provider struct {
	pool *pgxpool.Pool
	sqlx *sqlx.DB
}

// Open builds the pool without requiring the database to be reachable.
func Open(ctx context.Context, cfg config.DB) (*Provider, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, errors.Wrap(err, "parse db config")
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	pcfg.MinConns = 0
	pcfg.HealthCheckPeriod = 30 * time.Second
	pcfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, errors.Wrap(err, "create pool")
	}
	return &Provider{
		pool: pool,
		sqlx: sqlx.NewDb(stdlib.OpenDBFromPool(pool), "pgx"),
	}, nil
}

func (p *Provider) Pool() *pgxpool.Pool { return p.pool }

// SQLX shares the pool through the database/sql adapter.
func (p *Provider) SQLX() *sqlx.DB { return p.sqlx }

// Check returns an Unavailable error when the database cannot be reached.
func (p *Provider) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := p.pool.Ping(ctx); err != nil {
		return apperr.Unavailable(errors.Wrap(err, "ping database"))
	}
	return nil
}

func (p *Provider) Close() {
	_ = p.sqlx.Close()
	p.pool.Close()
}
