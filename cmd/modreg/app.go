// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/modreg/internal/config"
	"github.com/holomush/modreg/internal/logging"
	"github.com/holomush/modreg/internal/lua"
	"github.com/holomush/modreg/internal/module"
	"github.com/holomush/modreg/internal/store"
)

const serviceName = "modreg"

// loadConfig resolves the configuration for cmd and installs the default
// logger.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}

	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrapf(err, "invalid configuration")
	}

	logging.SetDefault(serviceName, version, cfg.LoggingOptions())
	return cfg, nil
}

// app is a registry wired to its store and Lua host.
type app struct {
	cfg      *config.Config
	registry *module.Registry
	closers  []func()
}

// newApp opens the configured store and builds a registry over the
// configured search directories. The registry is not reloaded.
func newApp(ctx context.Context, cfg *config.Config, deps *Deps) (*app, error) {
	a := &app{cfg: cfg}

	keys, closeKeys, err := deps.KeySetFactory(ctx, cfg.Store)
	if err != nil {
		return nil, oops.Code("STORE_OPEN_FAILED").With("driver", cfg.Store.Driver).Wrap(err)
	}
	a.closers = append(a.closers, closeKeys)

	factory := lua.NewStateFactory()
	runtime, err := lua.NewRuntime(ctx, factory)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, runtime.Close)

	hooks := lua.NewHookResolver(factory)
	a.registry = module.NewRegistry(store.NewInstallationRepository(keys),
		module.WithPattern(cfg.Modules.Pattern),
		module.WithHookResolver(hooks),
		module.WithProviderRegistrar(module.ResolvingRegistrar{Resolver: hooks}),
		module.WithFileLoader(runtime),
	)
	a.registry.AddDirs(cfg.Modules.Dirs...)
	return a, nil
}

// setup loads configuration, wires the registry and reloads it.
func setup(cmd *cobra.Command, deps *Deps) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	a, err := newApp(cmd.Context(), cfg, deps)
	if err != nil {
		return nil, err
	}
	if err := a.registry.Reload(cmd.Context()); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
