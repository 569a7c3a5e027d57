// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package module_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/holomush/modreg/internal/module"
	"github.com/holomush/modreg/internal/store"
)

// writeModule writes <dir>/<sub>/module.yaml and returns the module root.
func writeModule(t *testing.T, dir, sub, descriptor string) string {
	t.Helper()
	root := filepath.Join(dir, sub)
	require.NoError(t, os.MkdirAll(root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "module.yaml"), []byte(descriptor), 0o600))
	return root
}

type fixture struct {
	dir        string
	keys       *store.MemoryKeySet
	repo       *store.InstallationRepository
	components *module.Components
	registry   *module.Registry
}

// newFixture creates a registry over a temporary search directory, an
// in-memory key set preloaded with installed, and a component set used for
// hooks and providers.
func newFixture(t *testing.T, installed []string, opts ...module.Option) *fixture {
	t.Helper()
	f := &fixture{
		dir:        t.TempDir(),
		keys:       store.NewMemoryKeySet(installed...),
		components: module.NewComponents(),
	}
	f.repo = store.NewInstallationRepository(f.keys)
	opts = append([]module.Option{
		module.WithHookResolver(f.components),
		module.WithProviderRegistrar(module.ResolvingRegistrar{Resolver: f.components}),
	}, opts...)
	f.registry = module.NewRegistry(f.repo, opts...)
	f.registry.AddDir(f.dir)
	return f
}

func (f *fixture) module(t *testing.T, sub, descriptor string) string {
	t.Helper()
	return writeModule(t, f.dir, sub, descriptor)
}

func (f *fixture) reload(t *testing.T) {
	t.Helper()
	require.NoError(t, f.registry.Reload(context.Background()))
}

// requirePartition checks that installed and uninstalled partition all.
func requirePartition(t *testing.T, r *module.Registry) {
	t.Helper()
	all, installed, uninstalled := r.All(), r.Installed(), r.Uninstalled()
	require.Len(t, all, len(installed)+len(uninstalled))
	for name, m := range installed {
		require.NotContains(t, uninstalled, name)
		require.Same(t, all[name], m)
	}
	for name, m := range uninstalled {
		require.Same(t, all[name], m)
	}
}

type installerFunc func(ctx context.Context, m *module.Module, r *module.Registry) error

func (f installerFunc) Install(ctx context.Context, m *module.Module, r *module.Registry) error {
	return f(ctx, m, r)
}

type uninstallerFunc func(ctx context.Context, m *module.Module, r *module.Registry) error

func (f uninstallerFunc) Uninstall(ctx context.Context, m *module.Module, r *module.Registry) error {
	return f(ctx, m, r)
}

type providerFunc func(ctx context.Context, m *module.Module) error

func (f providerFunc) Register(ctx context.Context, m *module.Module) error {
	return f(ctx, m)
}
