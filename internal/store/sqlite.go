// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/samber/oops"

	// Register the sqlite3 database/sql driver and its embedded build.
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS modules (
	module       TEXT PRIMARY KEY,
	installed_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
)`

// SQLiteKeySet stores keys in a local SQLite database file.
type SQLiteKeySet struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path. The parent
// directory is created when missing.
func OpenSQLite(path string) (*SQLiteKeySet, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, oops.With("path", path).Wrap(persistenceError("create database directory", err))
		}
	}

	db, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, oops.With("path", path).Wrap(persistenceError("open database", err))
	}
	// One writer keeps SQLITE_BUSY out of concurrent installs.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close() //nolint:errcheck // ping error takes precedence
		return nil, oops.With("path", path).Wrap(persistenceError("ping database", err))
	}
	return &SQLiteKeySet{db: db}, nil
}

// Close closes the database.
func (s *SQLiteKeySet) Close() error {
	return s.db.Close()
}

// EnsureInitialized implements KeySet.
func (s *SQLiteKeySet) EnsureInitialized(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return persistenceError("create modules table", err)
	}
	return nil
}

// ListAll implements KeySet.
func (s *SQLiteKeySet) ListAll(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT module FROM modules ORDER BY module`)
	if err != nil {
		return nil, persistenceError("list modules", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, persistenceError("scan modules", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError("scan modules", err)
	}
	return names, nil
}

// Add implements KeySet.
func (s *SQLiteKeySet) Add(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO modules (module) VALUES (?) ON CONFLICT(module) DO NOTHING`, key)
	if err != nil {
		return oops.With("module", key).Wrap(persistenceError("add module", err))
	}
	return nil
}

// Remove implements KeySet.
func (s *SQLiteKeySet) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM modules WHERE module = ?`, key); err != nil {
		return oops.With("module", key).Wrap(persistenceError("remove module", err))
	}
	return nil
}

// Contains implements KeySet.
func (s *SQLiteKeySet) Contains(ctx context.Context, key string) (bool, error) {
	var found bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM modules WHERE module = ?)`, key).Scan(&found)
	if err != nil {
		return false, oops.With("module", key).Wrap(persistenceError("check module", err))
	}
	return found, nil
}
