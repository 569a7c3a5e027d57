// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/samber/oops"
)

// InstallationRepository tracks which module names are installed. It keeps
// an in-memory mirror of a KeySet so IsInstalled never touches the backend.
//
// InstallationRepository is safe for concurrent use.
type InstallationRepository struct {
	keys      KeySet
	mu        sync.RWMutex
	installed map[string]struct{}
}

// NewInstallationRepository creates a repository over keys. The mirror is
// empty until Reload is called.
func NewInstallationRepository(keys KeySet) *InstallationRepository {
	return &InstallationRepository{
		keys:      keys,
		installed: make(map[string]struct{}),
	}
}

// Reload initializes the backend if needed and replaces the mirror with its
// contents. On failure the mirror is left unchanged.
func (r *InstallationRepository) Reload(ctx context.Context) error {
	if err := r.keys.EnsureInitialized(ctx); err != nil {
		return oops.With("operation", "reload installed modules").Wrap(err)
	}
	names, err := r.keys.ListAll(ctx)
	if err != nil {
		return oops.With("operation", "reload installed modules").Wrap(err)
	}

	next := make(map[string]struct{}, len(names))
	for _, name := range names {
		next[name] = struct{}{}
	}

	r.mu.Lock()
	r.installed = next
	r.mu.Unlock()

	slog.Debug("installed modules reloaded", "count", len(next))
	return nil
}

// Install records name as installed. Recording a name twice is a no-op.
func (r *InstallationRepository) Install(ctx context.Context, name string) error {
	if err := r.keys.Add(ctx, name); err != nil {
		return oops.With("module", name).Wrap(err)
	}

	r.mu.Lock()
	r.installed[name] = struct{}{}
	r.mu.Unlock()
	return nil
}

// Uninstall forgets name. Forgetting an unknown name is a no-op.
func (r *InstallationRepository) Uninstall(ctx context.Context, name string) error {
	if err := r.keys.Remove(ctx, name); err != nil {
		return oops.With("module", name).Wrap(err)
	}

	r.mu.Lock()
	delete(r.installed, name)
	r.mu.Unlock()
	return nil
}

// IsInstalled reports whether name is in the mirror.
func (r *InstallationRepository) IsInstalled(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.installed[name]
	return ok
}

// InstalledNames returns the mirrored names, sorted.
func (r *InstallationRepository) InstalledNames() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.installed))
	for name := range r.installed {
		names = append(names, name)
	}
	r.mu.RUnlock()

	slices.Sort(names)
	return names
}
