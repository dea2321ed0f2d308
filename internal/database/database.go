// Geolab - PostGIS Teaching Lab: provisioning, lessons, and spatial dashboard
// Copyright 2026 sysdr
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sysdr/geolab

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sysdr/geolab/internal/config"
	"github.com/sysdr/geolab/internal/logging"
	"github.com/sysdr/geolab/internal/metrics"
)

// defaultQueryTimeout bounds queries whose caller passed a context without
// a deadline.
const defaultQueryTimeout = 30 * time.Second

// DB wraps a pgx connection pool and provides the lab's data access methods
type DB struct {
	pool *pgxpool.Pool
	cfg  *config.DatabaseConfig
}

// New creates a connection pool against the configured PostgreSQL instance
// and verifies connectivity with a ping.
func New(ctx context.Context, cfg *config.DatabaseConfig) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	workMem := cfg.WorkMem
	if workMem != "" && !config.ValidWorkMem(workMem) {
		return nil, fmt.Errorf("invalid work_mem setting %q", workMem)
	}

	// Session defaults applied to every pooled connection. work_mem is
	// validated above; it is interpolated because SET does not take bind
	// parameters.
	setup := sessionSetup(cfg)
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for _, stmt := range setup {
			if _, err := conn.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("session setup %q failed: %w", stmt, err)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	db := &DB{pool: pool, cfg: cfg}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := db.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logging.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Name).
		Int32("max_conns", cfg.MaxConns).
		Msg("Database connection pool established")

	return db, nil
}

// sessionSetup returns the SET statements applied to every pooled
// connection: application_name, the configured work_mem default, and the
// statement timeout. WorkMem must be validated by the caller; the timeout
// is a duration rendered as integer milliseconds, so neither needs
// quoting beyond what SET allows.
func sessionSetup(cfg *config.DatabaseConfig) []string {
	stmts := []string{"SET application_name = 'geolab'"}
	if cfg.WorkMem != "" {
		stmts = append(stmts, fmt.Sprintf("SET work_mem = '%s'", cfg.WorkMem))
	}
	if cfg.StatementTimeout > 0 {
		stmts = append(stmts, fmt.Sprintf("SET statement_timeout = %d", cfg.StatementTimeout.Milliseconds()))
	}
	return stmts
}

// NewFromPool wraps an existing pool. Used by tests and the provisioner,
// which builds its own connection string.
func NewFromPool(pool *pgxpool.Pool, cfg *config.DatabaseConfig) *DB {
	return &DB{pool: pool, cfg: cfg}
}

// Ping verifies the database connection is alive
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Pool exposes the underlying pgx pool for callers that manage their own
// transactions.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Close releases all pool connections
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
	logging.Debug().Msg("Database connection pool closed")
}

// ensureContext guarantees a deadline on the query context
func (db *DB) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

// track records query duration and errors for Prometheus, and keeps the
// pool gauge current. Use with a named error return:
//
//	done := db.track("SELECT", "landmarks", time.Now())
//	defer func() { done(err) }()
func (db *DB) track(operation, table string, start time.Time) func(error) {
	return func(err error) {
		metrics.RecordPGQuery(operation, table, time.Since(start), err)
		if db.pool != nil {
			metrics.UpdatePoolAcquired(db.pool.Stat().AcquiredConns())
		}
	}
}
