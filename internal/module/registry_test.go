// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package module_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/modreg/internal/module"
	"github.com/holomush/modreg/internal/store"
	"github.com/holomush/modreg/pkg/errutil"
)

func TestRegistry_BeforeReload(t *testing.T) {
	f := newFixture(t, nil)

	assert.Nil(t, f.registry.All())
	assert.Nil(t, f.registry.Installed())
	assert.Nil(t, f.registry.Uninstalled())
	assert.Nil(t, f.registry.Names())
	assert.False(t, f.registry.Has("core"))
	assert.False(t, f.registry.IsInstalled("core"))

	_, err := f.registry.Get("core")
	assert.ErrorIs(t, err, module.ErrModuleDoesNotExist)

	err = f.registry.Install(context.Background(), "core")
	assert.ErrorIs(t, err, module.ErrModuleDoesNotExist)
}

func TestRegistry_ReloadPartitions(t *testing.T) {
	f := newFixture(t, []string{"core", "gone"})
	f.module(t, "core", "name: core\nprotected: true\n")
	f.module(t, "billing", "name: billing\n")
	f.module(t, "extra", "name: extra\n")
	f.reload(t)

	requirePartition(t, f.registry)
	assert.Len(t, f.registry.All(), 3)
	assert.Equal(t, []string{"billing", "core", "extra"}, f.registry.Names())
	assert.Contains(t, f.registry.Installed(), "core")
	assert.Contains(t, f.registry.Uninstalled(), "billing")
	assert.Contains(t, f.registry.Uninstalled(), "extra")
	assert.False(t, f.registry.Has("gone"), "installed names without a descriptor are not modules")

	m, err := f.registry.Get("core")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.dir, "core"), m.Path())
	assert.True(t, m.IsProtected())
	assert.True(t, m.IsInstalled())
	assert.Same(t, f.registry, m.Registry())
}

func TestRegistry_ReloadIsIdempotent(t *testing.T) {
	f := newFixture(t, []string{"core"})
	f.module(t, "core", "name: core\n")
	f.module(t, "billing", "name: billing\n")

	f.reload(t)
	first := f.registry.Names()
	f.reload(t)

	assert.Equal(t, first, f.registry.Names())
	assert.Equal(t, []string{"core"}, f.repo.InstalledNames())
	requirePartition(t, f.registry)
}

func TestRegistry_ReloadReplacesModules(t *testing.T) {
	f := newFixture(t, nil)
	f.module(t, "core", "name: core\n")
	f.reload(t)
	before, err := f.registry.Get("core")
	require.NoError(t, err)

	f.module(t, "core", "name: core\nprotected: true\n")
	f.reload(t)
	after, err := f.registry.Get("core")
	require.NoError(t, err)

	assert.NotSame(t, before, after)
	assert.False(t, before.IsProtected(), "modules are immutable")
	assert.True(t, after.IsProtected())
}

func TestRegistry_SearchDirectoriesInOrder(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	writeModule(t, first, "zeta", "name: zeta\n")
	writeModule(t, second, "alpha", "name: alpha\n")
	writeModule(t, first, "beta", "name: beta\n")

	r := module.NewRegistry(store.NewInstallationRepository(store.NewMemoryKeySet()))
	r.AddDirs(first, second, first)
	require.NoError(t, r.Reload(context.Background()))

	assert.Equal(t, []string{first, second}, r.Dirs())
	assert.Equal(t, []string{"beta", "zeta", "alpha"}, r.Names())
}

func TestRegistry_DirectoriesCompareAsStrings(t *testing.T) {
	r := module.NewRegistry(store.NewInstallationRepository(store.NewMemoryKeySet()))
	r.AddDir("/srv/modules")
	r.AddDir("/srv/modules")
	r.AddDir("/srv/modules/")
	r.AddDir("/srv/../srv/modules")

	assert.Equal(t, []string{"/srv/modules", "/srv/modules/", "/srv/../srv/modules"}, r.Dirs())
	assert.True(t, r.HasDir("/srv/modules/"))

	r.RemoveDir("/srv/modules/")
	r.RemoveDir("/not/present")
	assert.Equal(t, []string{"/srv/modules", "/srv/../srv/modules"}, r.Dirs())
	assert.False(t, r.HasDir("/srv/modules/"))
}

func TestRegistry_MissingSearchDirectoryMatchesNothing(t *testing.T) {
	f := newFixture(t, nil)
	f.module(t, "core", "name: core\n")
	f.registry.AddDir(filepath.Join(f.dir, "does-not-exist"))
	f.reload(t)

	assert.Equal(t, []string{"core"}, f.registry.Names())
}

func TestRegistry_CustomPattern(t *testing.T) {
	f := newFixture(t, nil, module.WithPattern("**/module.yaml"))
	f.module(t, filepath.Join("vendor", "billing"), "name: billing\n")
	f.module(t, "core", "name: core\n")
	f.reload(t)

	assert.ElementsMatch(t, []string{"billing", "core"}, f.registry.Names())
}

func TestRegistry_DuplicateNameFailsReloadAndKeepsState(t *testing.T) {
	f := newFixture(t, []string{"core"})
	f.module(t, "core", "name: core\n")
	f.reload(t)
	before := f.registry.All()

	f.module(t, "billing-a", "name: billing\n")
	f.module(t, "billing-b", "name: billing\n")

	err := f.registry.Reload(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, module.ErrModuleAlreadyExists)
	errutil.AssertErrorCode(t, err, module.CodeModuleAlreadyExists)
	errutil.AssertErrorContext(t, err, "module", "billing")

	assert.Equal(t, before, f.registry.All(), "failed reload must not change state")
	assert.False(t, f.registry.Has("billing"))
	requirePartition(t, f.registry)
}

func TestRegistry_DuplicateNameOnFirstReloadLeavesNoState(t *testing.T) {
	f := newFixture(t, nil)
	f.module(t, "a", "name: billing\n")
	f.module(t, "b", "name: billing\n")

	err := f.registry.Reload(context.Background())
	assert.ErrorIs(t, err, module.ErrModuleAlreadyExists)
	assert.Nil(t, f.registry.All())
}

func TestRegistry_EmptyNamesMustBeUnique(t *testing.T) {
	f := newFixture(t, nil)
	f.module(t, "a", "protected: false\n")
	f.reload(t)
	assert.True(t, f.registry.Has(""))

	f.module(t, "b", "providers: []\n")
	assert.ErrorIs(t, f.registry.Reload(context.Background()), module.ErrModuleAlreadyExists)
}

func TestRegistry_DescriptorErrorFailsReloadAndKeepsState(t *testing.T) {
	f := newFixture(t, nil)
	f.module(t, "core", "name: core\n")
	f.reload(t)

	f.module(t, "broken", "name: [oops\n")
	err := f.registry.Reload(context.Background())
	assert.ErrorIs(t, err, module.ErrDescriptor)
	assert.Equal(t, []string{"core"}, f.registry.Names())
}

func TestRegistry_Install(t *testing.T) {
	f := newFixture(t, nil)
	f.module(t, "m", "name: m\n")
	f.reload(t)
	ctx := context.Background()

	require.NoError(t, f.registry.Install(ctx, "m"))

	assert.True(t, f.registry.IsInstalled("m"))
	assert.Contains(t, f.registry.Installed(), "m")
	assert.NotContains(t, f.registry.Uninstalled(), "m")
	found, err := f.keys.Contains(ctx, "m")
	require.NoError(t, err)
	assert.True(t, found, "installation must be persisted")
	requirePartition(t, f.registry)
}

func TestRegistry_InstallAlreadyInstalled(t *testing.T) {
	f := newFixture(t, []string{"m"})
	f.module(t, "m", "name: m\n")
	f.reload(t)
	before := f.registry.Installed()

	err := f.registry.Install(context.Background(), "m")
	assert.ErrorIs(t, err, module.ErrModuleAlreadyInstalled)
	errutil.AssertErrorCode(t, err, module.CodeModuleAlreadyInstalled)
	assert.Equal(t, before, f.registry.Installed())
	requirePartition(t, f.registry)
}

func TestRegistry_InstallUnknownModule(t *testing.T) {
	f := newFixture(t, nil)
	f.reload(t)

	err := f.registry.Install(context.Background(), "ghost")
	assert.ErrorIs(t, err, module.ErrModuleDoesNotExist)
	errutil.AssertErrorCode(t, err, module.CodeModuleNotFound)
}

func TestRegistry_InstallStaleInstance(t *testing.T) {
	f := newFixture(t, nil)
	root := f.module(t, "m", "name: m\n")
	f.reload(t)
	stale, err := f.registry.Get("m")
	require.NoError(t, err)

	writeModule(t, filepath.Dir(root), "m", "name: renamed\n")
	f.reload(t)

	err = stale.Install(context.Background())
	assert.ErrorIs(t, err, module.ErrModuleDoesNotExist)
	assert.False(t, f.registry.IsInstalled("m"))
}

func TestRegistry_InstallerHooks(t *testing.T) {
	tests := []struct {
		name      string
		component any
		register  bool
		wantErr   error
		wantCode  string
	}{
		{name: "missing", wantErr: module.ErrInstallerMissing, wantCode: module.CodeInstallerMissing},
		{name: "incompatible", component: struct{}{}, register: true, wantErr: module.ErrInstallerIncompatible, wantCode: module.CodeInstallerIncompatible},
		{name: "uninstaller is not an installer", register: true, wantErr: module.ErrInstallerIncompatible, wantCode: module.CodeInstallerIncompatible,
			component: uninstallerFunc(func(context.Context, *module.Module, *module.Registry) error { return nil })},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			f.module(t, "m", "name: m\ninstaller: m.installer\n")
			f.reload(t)
			if tt.register {
				f.components.Register("m.installer", tt.component)
			}

			err := f.registry.Install(context.Background(), "m")
			assert.ErrorIs(t, err, tt.wantErr)
			errutil.AssertErrorCode(t, err, tt.wantCode)
			errutil.AssertErrorContext(t, err, "installer", "m.installer")
			assert.False(t, f.registry.IsInstalled("m"))
			assert.Empty(t, f.repo.InstalledNames())
		})
	}
}

func TestRegistry_InstallerReceivesModuleAndRegistry(t *testing.T) {
	f := newFixture(t, nil)
	f.module(t, "m", "name: m\ninstaller: m.installer\n")
	f.reload(t)

	var gotModule *module.Module
	var gotRegistry *module.Registry
	f.components.Register("m.installer", installerFunc(func(_ context.Context, m *module.Module, r *module.Registry) error {
		gotModule, gotRegistry = m, r
		assert.False(t, r.IsInstalled("m"), "installer runs before the transition")
		return nil
	}))

	require.NoError(t, f.registry.Install(context.Background(), "m"))
	assert.Equal(t, "m", gotModule.Name())
	assert.Same(t, f.registry, gotRegistry)
}

func TestRegistry_FailingInstallerKeepsModuleUninstalled(t *testing.T) {
	f := newFixture(t, nil)
	f.module(t, "m", "name: m\ninstaller: m.installer\n")
	f.reload(t)
	f.components.Register("m.installer", installerFunc(func(context.Context, *module.Module, *module.Registry) error {
		return errors.New("schema migration failed")
	}))

	err := f.registry.Install(context.Background(), "m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema migration failed")
	assert.False(t, f.registry.IsInstalled("m"))
	assert.Empty(t, f.repo.InstalledNames())
	requirePartition(t, f.registry)
}

type failingKeySet struct {
	*store.MemoryKeySet
	err error
}

func (k failingKeySet) Add(context.Context, string) error    { return k.err }
func (k failingKeySet) Remove(context.Context, string) error { return k.err }

func TestRegistry_PersistenceFailureKeepsPartition(t *testing.T) {
	keys := failingKeySet{MemoryKeySet: store.NewMemoryKeySet("installed"), err: store.ErrPersistence}
	r := module.NewRegistry(store.NewInstallationRepository(keys))
	dir := t.TempDir()
	writeModule(t, dir, "installed", "name: installed\n")
	writeModule(t, dir, "fresh", "name: fresh\n")
	r.AddDir(dir)
	require.NoError(t, r.Reload(context.Background()))

	err := r.Install(context.Background(), "fresh")
	assert.ErrorIs(t, err, store.ErrPersistence)
	assert.False(t, r.IsInstalled("fresh"))

	err = r.Uninstall(context.Background(), "installed")
	assert.ErrorIs(t, err, store.ErrPersistence)
	assert.True(t, r.IsInstalled("installed"))
	requirePartition(t, r)
}

func TestRegistry_Uninstall(t *testing.T) {
	f := newFixture(t, []string{"m"})
	f.module(t, "m", "name: m\nuninstaller: m.uninstaller\n")
	f.reload(t)

	calls := 0
	f.components.Register("m.uninstaller", uninstallerFunc(func(_ context.Context, m *module.Module, r *module.Registry) error {
		calls++
		assert.True(t, r.IsInstalled(m.Name()), "uninstaller runs before the transition")
		return nil
	}))

	require.NoError(t, f.registry.Uninstall(context.Background(), "m"))
	assert.Equal(t, 1, calls)
	assert.False(t, f.registry.IsInstalled("m"))
	assert.Contains(t, f.registry.Uninstalled(), "m")
	assert.Empty(t, f.repo.InstalledNames())
	requirePartition(t, f.registry)

	err := f.registry.Uninstall(context.Background(), "m")
	assert.ErrorIs(t, err, module.ErrModuleAlreadyUninstalled)
	errutil.AssertErrorCode(t, err, module.CodeModuleAlreadyUninstalled)
}

func TestRegistry_UninstallerHooks(t *testing.T) {
	tests := []struct {
		name      string
		component any
		wantErr   error
	}{
		{name: "missing", wantErr: module.ErrUninstallerMissing},
		{name: "incompatible", component: installerFunc(func(context.Context, *module.Module, *module.Registry) error { return nil }), wantErr: module.ErrUninstallerIncompatible},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, []string{"m"})
			f.module(t, "m", "name: m\nuninstaller: m.uninstaller\n")
			f.reload(t)
			if tt.component != nil {
				f.components.Register("m.uninstaller", tt.component)
			}

			err := f.registry.Uninstall(context.Background(), "m")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, f.registry.IsInstalled("m"))
			assert.Equal(t, []string{"m"}, f.repo.InstalledNames())
		})
	}
}

func TestRegistry_UninstallProtected(t *testing.T) {
	for _, installed := range []bool{true, false} {
		var names []string
		if installed {
			names = []string{"core"}
		}
		f := newFixture(t, names)
		f.module(t, "core", "name: core\nprotected: true\n")
		f.reload(t)

		err := f.registry.Uninstall(context.Background(), "core")
		assert.ErrorIs(t, err, module.ErrModuleProtected, "installed=%v", installed)
		errutil.AssertErrorCode(t, err, module.CodeModuleProtected)
		assert.Equal(t, installed, f.registry.IsInstalled("core"))
	}
}

func TestRegistry_InstallAllInvokesEachInstallerOnce(t *testing.T) {
	f := newFixture(t, nil)
	calls := map[string]int{}
	for _, name := range []string{"a", "b", "c"} {
		f.module(t, name, "name: "+name+"\ninstaller: "+name+".installer\n")
		f.components.Register(name+".installer", installerFunc(func(_ context.Context, m *module.Module, _ *module.Registry) error {
			calls[m.Name()]++
			return nil
		}))
	}
	f.reload(t)

	require.NoError(t, f.registry.InstallAll(context.Background()))

	assert.Equal(t, map[string]int{"a": 1, "b": 1, "c": 1}, calls)
	assert.Len(t, f.registry.Installed(), 3)
	assert.Empty(t, f.registry.Uninstalled())
	assert.Equal(t, []string{"a", "b", "c"}, f.repo.InstalledNames())
}

func TestRegistry_InstallAllStopsAtFirstFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.module(t, "a", "name: a\n")
	f.module(t, "b", "name: b\ninstaller: missing\n")
	f.module(t, "c", "name: c\n")
	f.reload(t)

	err := f.registry.InstallAll(context.Background())
	assert.ErrorIs(t, err, module.ErrInstallerMissing)
	assert.True(t, f.registry.IsInstalled("a"))
	assert.False(t, f.registry.IsInstalled("b"))
	assert.False(t, f.registry.IsInstalled("c"))
	requirePartition(t, f.registry)
}

func TestRegistry_ReentrantInstaller(t *testing.T) {
	f := newFixture(t, nil)
	f.module(t, "a", "name: a\ninstaller: a.installer\n")
	f.module(t, "b", "name: b\ninstaller: b.installer\n")
	f.reload(t)

	calls := map[string]int{}
	f.components.Register("a.installer", installerFunc(func(ctx context.Context, m *module.Module, r *module.Registry) error {
		calls[m.Name()]++
		return r.Install(ctx, "b")
	}))
	f.components.Register("b.installer", installerFunc(func(_ context.Context, m *module.Module, _ *module.Registry) error {
		calls[m.Name()]++
		return nil
	}))

	require.NoError(t, f.registry.InstallAll(context.Background()))

	assert.Equal(t, map[string]int{"a": 1, "b": 1}, calls)
	assert.True(t, f.registry.IsInstalled("a"))
	assert.True(t, f.registry.IsInstalled("b"))
	requirePartition(t, f.registry)
}

func TestRegistry_ReentrantUninstallerInstallsReplacement(t *testing.T) {
	f := newFixture(t, []string{"old"})
	f.module(t, "old", "name: old\nuninstaller: old.uninstaller\n")
	f.module(t, "replacement", "name: replacement\n")
	f.reload(t)
	f.components.Register("old.uninstaller", uninstallerFunc(func(ctx context.Context, _ *module.Module, r *module.Registry) error {
		return r.Install(ctx, "replacement")
	}))

	require.NoError(t, f.registry.Uninstall(context.Background(), "old"))

	assert.False(t, f.registry.IsInstalled("old"))
	assert.True(t, f.registry.IsInstalled("replacement"))
	assert.Equal(t, []string{"replacement"}, f.repo.InstalledNames())
	requirePartition(t, f.registry)
}

func TestRegistry_ReloadDiscoversSymlinkedModule(t *testing.T) {
	f := newFixture(t, []string{"linked"})
	f.module(t, "core", "name: core\n")
	target := writeModule(t, t.TempDir(), "linked", "name: linked\n")
	require.NoError(t, os.Symlink(target, filepath.Join(f.dir, "linked")))
	f.reload(t)

	assert.Equal(t, []string{"core", "linked"}, f.registry.Names())
	assert.True(t, f.registry.IsInstalled("linked"))
	m, err := f.registry.Get("linked")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.dir, "linked"), m.Path())
	requirePartition(t, f.registry)
}

func TestRegistry_UninstallAllRefusesProtected(t *testing.T) {
	f := newFixture(t, []string{"core", "billing", "extra"})
	f.module(t, "billing", "name: billing\n")
	f.module(t, "core", "name: core\nprotected: true\n")
	f.module(t, "extra", "name: extra\n")
	f.reload(t)

	err := f.registry.UninstallAll(context.Background())
	require.ErrorIs(t, err, module.ErrModuleProtected)
	errutil.AssertErrorContext(t, err, "module", "core")

	assert.Equal(t, []string{"billing", "core", "extra"}, f.repo.InstalledNames())
	assert.Len(t, f.registry.Installed(), 3)
	requirePartition(t, f.registry)
}

func TestRegistry_UninstallAllIgnoresUninstalledProtected(t *testing.T) {
	f := newFixture(t, []string{"billing", "extra"})
	f.module(t, "core", "name: core\nprotected: true\n")
	f.module(t, "billing", "name: billing\n")
	f.module(t, "extra", "name: extra\n")
	f.reload(t)

	require.NoError(t, f.registry.UninstallAll(context.Background()))

	assert.Empty(t, f.repo.InstalledNames())
	assert.Len(t, f.registry.Uninstalled(), 3)
	requirePartition(t, f.registry)
}

func TestRegistry_InstallUninstallRoundTrip(t *testing.T) {
	f := newFixture(t, []string{"other"})
	f.module(t, "m", "name: m\n")
	f.module(t, "other", "name: other\n")
	f.reload(t)
	installed, uninstalled := f.registry.Installed(), f.registry.Uninstalled()
	ctx := context.Background()

	m, err := f.registry.Get("m")
	require.NoError(t, err)
	require.NoError(t, m.Install(ctx))
	assert.True(t, m.IsInstalled())
	require.NoError(t, m.Uninstall(ctx))

	assert.Equal(t, installed, f.registry.Installed())
	assert.Equal(t, uninstalled, f.registry.Uninstalled())
	assert.Equal(t, []string{"other"}, f.repo.InstalledNames())
}

func TestRegistry_Boot(t *testing.T) {
	var loaded []string
	f := newFixture(t, []string{"a", "b"}, module.WithFileLoader(module.FileLoaderFunc(func(_ context.Context, path string) error {
		loaded = append(loaded, path)
		return nil
	})))
	rootA := f.module(t, "a", "name: a\nproviders: [a.p1, a.p2]\nfiles: [boot.lua, ../shared.lua]\n")
	f.module(t, "b", "name: b\nfiles: [../shared.lua, init.lua]\n")
	f.module(t, "c", "name: c\nproviders: [c.p]\nfiles: [never.lua]\n")
	f.reload(t)

	var registered []string
	for _, id := range []string{"a.p1", "a.p2", "c.p"} {
		f.components.Register(id, providerFunc(func(context.Context, *module.Module) error {
			registered = append(registered, id)
			return nil
		}))
	}

	ctx := context.Background()
	require.NoError(t, f.registry.Boot(ctx))
	require.NoError(t, f.registry.Boot(ctx))

	assert.Equal(t, []string{"a.p1", "a.p2", "a.p1", "a.p2"}, registered, "providers register on every boot")
	assert.Equal(t, []string{
		filepath.Join(rootA, "boot.lua"),
		filepath.Join(f.dir, "shared.lua"),
		filepath.Join(f.dir, "b", "init.lua"),
	}, loaded, "files load once per registry, even when shared")
}

func TestRegistry_BootStopsOnProviderFailure(t *testing.T) {
	f := newFixture(t, []string{"a"})
	f.module(t, "a", "name: a\nproviders: [a.p, missing.p]\nfiles: [boot.lua]\n")
	f.reload(t)
	f.components.Register("a.p", providerFunc(func(context.Context, *module.Module) error { return nil }))

	err := f.registry.Boot(context.Background())
	assert.ErrorIs(t, err, module.ErrProviderMissing)
	errutil.AssertErrorContext(t, err, "provider", "missing.p")
}

func TestRegistry_RegisterProvidersWithoutRegistrar(t *testing.T) {
	r := module.NewRegistry(store.NewInstallationRepository(store.NewMemoryKeySet()))
	dir := t.TempDir()
	writeModule(t, dir, "a", "name: a\nproviders: [a.p]\n")
	writeModule(t, dir, "b", "name: b\n")
	r.AddDir(dir)
	require.NoError(t, r.Reload(context.Background()))

	a, err := r.Get("a")
	require.NoError(t, err)
	assert.ErrorIs(t, a.RegisterProviders(context.Background()), module.ErrProviderMissing)

	b, err := r.Get("b")
	require.NoError(t, err)
	assert.NoError(t, b.RegisterProviders(context.Background()))
}

func TestModule_AccessorsReturnCopies(t *testing.T) {
	f := newFixture(t, nil)
	f.module(t, "m", "name: m\nproviders: [p]\nfiles: [f.lua]\ninstaller: i\n")
	f.reload(t)
	m, err := f.registry.Get("m")
	require.NoError(t, err)

	providers := m.Providers()
	providers[0] = "mutated"
	files := m.Files()
	files[0] = "mutated"
	d := m.Descriptor()
	*d.Installer = "mutated"

	assert.Equal(t, []string{"p"}, m.Providers())
	assert.Equal(t, []string{"f.lua"}, m.Files())
	installer, ok := m.Installer()
	assert.True(t, ok)
	assert.Equal(t, "i", installer)
	_, ok = m.Uninstaller()
	assert.False(t, ok)
}
