// Package repository provides PostgreSQL access for the auth audit trail.
package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultMaxConns = 5
	applicationName = "medportal"
)

// Options tunes the audit store pool. Zero values keep the defaults.
type Options struct {
	MaxConns int32
	// StatementTimeout becomes the session statement_timeout, so a stuck
	// insert is cancelled server side as well.
	StatementTimeout time.Duration
}

// Repository stores auth events in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// New opens a pool for databaseURL, applies opts and verifies it with a ping.
func New(ctx context.Context, databaseURL string, opts Options) (*Repository, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	applyOptions(config, opts)

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Repository{pool: pool}, nil
}

func applyOptions(config *pgxpool.Config, opts Options) {
	config.MaxConns = defaultMaxConns
	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}
	config.MinConns = 1
	config.MaxConnIdleTime = 5 * time.Minute

	params := config.ConnConfig.RuntimeParams
	if params["application_name"] == "" {
		params["application_name"] = applicationName
	}
	if opts.StatementTimeout > 0 {
		params["statement_timeout"] = strconv.FormatInt(opts.StatementTimeout.Milliseconds(), 10)
	}
}

// Ping checks database connectivity for /readyz.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the pool. Registered as a server shutdown hook.
func (r *Repository) Close() {
	r.pool.Close()
}

// Pool exposes the pool to integration test setup.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}
