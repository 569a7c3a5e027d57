// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package module

import (
	"context"
	"path/filepath"
	"slices"

	"github.com/samber/oops"
)

// Module is a discovered module. It is immutable and lives for one reload
// cycle of the registry that created it.
type Module struct {
	desc     Descriptor
	registry *Registry
}

func newModule(d *Descriptor, r *Registry) *Module {
	return &Module{desc: d.clone(), registry: r}
}

// Path returns the module root directory.
func (m *Module) Path() string { return m.desc.Path }

// Name returns the module name.
func (m *Module) Name() string { return m.desc.Name }

// IsProtected reports whether the module refuses uninstallation.
func (m *Module) IsProtected() bool { return m.desc.Protected }

// Providers returns the provider identifiers in declaration order.
func (m *Module) Providers() []string { return slices.Clone(m.desc.Providers) }

// Files returns the boot files, relative to Path, in declaration order.
func (m *Module) Files() []string { return slices.Clone(m.desc.Files) }

// Installer returns the installer hook identifier, if any.
func (m *Module) Installer() (string, bool) {
	if m.desc.Installer == nil {
		return "", false
	}
	return *m.desc.Installer, true
}

// Uninstaller returns the uninstaller hook identifier, if any.
func (m *Module) Uninstaller() (string, bool) {
	if m.desc.Uninstaller == nil {
		return "", false
	}
	return *m.desc.Uninstaller, true
}

// Descriptor returns a copy of the module descriptor.
func (m *Module) Descriptor() Descriptor { return m.desc.clone() }

// Registry returns the registry that discovered the module.
func (m *Module) Registry() *Registry { return m.registry }

// IsInstalled reports whether the owning registry considers the module
// installed.
func (m *Module) IsInstalled() bool {
	return m.registry.IsInstalledByInstance(m)
}

// RegisterProviders registers every provider with the host, in order.
// The first failure is returned and the remaining providers are skipped.
func (m *Module) RegisterProviders(ctx context.Context) error {
	registrar := m.registry.providers
	for _, id := range m.desc.Providers {
		if registrar == nil {
			return errProviderMissing(m.Name(), id)
		}
		if err := registrar.Register(ctx, m, id); err != nil {
			return oops.With("module", m.Name()).With("provider", id).Wrap(err)
		}
	}
	return nil
}

// LoadFiles loads every boot file, in order. Each resolved path is loaded at
// most once per registry, even when several modules list it.
func (m *Module) LoadFiles(ctx context.Context) error {
	for _, f := range m.desc.Files {
		path := f
		if !filepath.IsAbs(path) {
			path = filepath.Join(m.desc.Path, f)
		}
		if err := m.registry.files.Load(ctx, path); err != nil {
			return oops.With("module", m.Name()).With("file", path).Wrap(err)
		}
	}
	return nil
}

// Install installs the module through its registry.
func (m *Module) Install(ctx context.Context) error {
	return m.registry.InstallByInstance(ctx, m)
}

// Uninstall uninstalls the module through its registry.
func (m *Module) Uninstall(ctx context.Context) error {
	return m.registry.UninstallByInstance(ctx, m)
}
