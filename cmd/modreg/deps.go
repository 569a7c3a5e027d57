// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"log/slog"

	"github.com/samber/oops"

	"github.com/holomush/modreg/internal/config"
	"github.com/holomush/modreg/internal/observability"
	"github.com/holomush/modreg/internal/store"
)

// Deps contains injectable dependencies for the modreg commands.
// All fields with nil values will use their default implementations.
type Deps struct {
	// KeySetFactory opens the installation key set for the configured
	// store. The returned function releases it.
	// Default: openKeySet
	KeySetFactory func(ctx context.Context, cfg config.StoreConfig) (store.KeySet, func(), error)

	// MigratorFactory creates a migrator for a PostgreSQL URL.
	// Default: store.NewMigrator
	MigratorFactory func(databaseURL string) (Migrator, error)

	// ObservabilityServerFactory creates an observability server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer
}

// Migrator interface wraps the methods used from store.Migrator.
type Migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Version() (version uint, dirty bool, err error)
	Force(version int) error
	PendingMigrations() ([]uint, error)
	Close() error
}

// ObservabilityServer interface wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
}

func (d *Deps) withDefaults() *Deps {
	out := &Deps{}
	if d != nil {
		*out = *d
	}
	if out.KeySetFactory == nil {
		out.KeySetFactory = openKeySet
	}
	if out.MigratorFactory == nil {
		out.MigratorFactory = func(databaseURL string) (Migrator, error) {
			return store.NewMigrator(databaseURL)
		}
	}
	if out.ObservabilityServerFactory == nil {
		out.ObservabilityServerFactory = func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, readinessChecker)
		}
	}
	return out
}

// openKeySet opens the backend named by cfg.Driver.
func openKeySet(ctx context.Context, cfg config.StoreConfig) (store.KeySet, func(), error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		keys, err := store.OpenPostgres(ctx, cfg.DSN, store.DefaultConnectOptions())
		if err != nil {
			return nil, nil, err
		}
		return keys, keys.Close, nil
	case config.DriverSQLite:
		keys, err := store.OpenSQLite(cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return keys, func() {
			if err := keys.Close(); err != nil {
				slog.Warn("failed to close sqlite store", "error", err)
			}
		}, nil
	case config.DriverMemory:
		return store.NewMemoryKeySet(), func() {}, nil
	}
	return nil, nil, oops.Code("CONFIG_INVALID").With("driver", cfg.Driver).Errorf("unknown store driver %q", cfg.Driver)
}
