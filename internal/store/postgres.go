// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// poolIface is the subset of pgxpool.Pool used by PostgresKeySet.
// pgxmock.PgxPoolIface satisfies it in tests.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresKeySet stores keys in the modules table.
type PostgresKeySet struct {
	pool  poolIface
	close func()
}

// NewPostgresKeySet creates a key set over an existing pool. The caller owns
// the pool.
func NewPostgresKeySet(pool poolIface) *PostgresKeySet {
	return &PostgresKeySet{pool: pool}
}

// ConnectOptions control OpenPostgres.
type ConnectOptions struct {
	// MaxRetries bounds the ping attempts after the first.
	MaxRetries uint64
	// BaseDelay is the first backoff interval; it doubles per attempt.
	BaseDelay time.Duration
}

// DefaultConnectOptions retries for roughly 25 seconds.
func DefaultConnectOptions() ConnectOptions {
	return ConnectOptions{MaxRetries: 8, BaseDelay: 100 * time.Millisecond}
}

// OpenPostgres connects to dsn, pinging with exponential backoff until the
// server answers or the retries run out. Close releases the pool.
func OpenPostgres(ctx context.Context, dsn string, opts ConnectOptions) (*PostgresKeySet, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, persistenceError("connect", err)
	}

	backoff := retry.WithMaxRetries(opts.MaxRetries, retry.NewExponential(opts.BaseDelay))
	attempt := 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if pingErr := pool.Ping(ctx); pingErr != nil {
			slog.Debug("postgres not ready", "attempt", attempt, "error", pingErr)
			return retry.RetryableError(pingErr)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.With("attempts", attempt).Wrap(persistenceError("ping", err))
	}

	return &PostgresKeySet{pool: pool, close: pool.Close}, nil
}

// Close releases the pool if OpenPostgres created it.
func (s *PostgresKeySet) Close() {
	if s.close != nil {
		s.close()
	}
}

// EnsureInitialized implements KeySet. When the modules table is missing the
// embedded migrations are applied directly.
func (s *PostgresKeySet) EnsureInitialized(ctx context.Context) error {
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT to_regclass('public.modules') IS NOT NULL`).Scan(&exists); err != nil {
		return persistenceError("check modules table", err)
	}
	if exists {
		return nil
	}

	ddl, err := upMigrations()
	if err != nil {
		return persistenceError("read migrations", err)
	}
	for _, stmt := range ddl {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return persistenceError("create modules table", err)
		}
	}
	slog.Info("created modules table")
	return nil
}

// ListAll implements KeySet.
func (s *PostgresKeySet) ListAll(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT module FROM modules ORDER BY module`)
	if err != nil {
		return nil, persistenceError("list modules", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, persistenceError("scan modules", err)
	}
	return names, nil
}

// Add implements KeySet. A unique violation means the key is already present.
func (s *PostgresKeySet) Add(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO modules (module) VALUES ($1)`, key)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil
		}
		return oops.With("module", key).Wrap(persistenceError("add module", err))
	}
	return nil
}

// Remove implements KeySet.
func (s *PostgresKeySet) Remove(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM modules WHERE module = $1`, key); err != nil {
		return oops.With("module", key).Wrap(persistenceError("remove module", err))
	}
	return nil
}

// Contains implements KeySet.
func (s *PostgresKeySet) Contains(ctx context.Context, key string) (bool, error) {
	var found bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM modules WHERE module = $1)`, key).Scan(&found)
	if err != nil {
		return false, oops.With("module", key).Wrap(persistenceError("check module", err))
	}
	return found, nil
}
