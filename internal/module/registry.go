// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package module

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/holomush/modreg/internal/observability"
)

var tracer = otel.Tracer("modreg/module")

// InstallationStore records which module names are installed.
type InstallationStore interface {
	// Reload refreshes the in-memory view from persistent storage.
	Reload(ctx context.Context) error
	// Install marks name as installed. Installing twice is a no-op.
	Install(ctx context.Context, name string) error
	// Uninstall marks name as uninstalled. Unknown names are a no-op.
	Uninstall(ctx context.Context, name string) error
	// IsInstalled answers from the in-memory view.
	IsInstalled(name string) bool
}

// state is one consistent view of the discovered modules. Reload replaces it
// wholesale; install and uninstall move entries between the two partitions.
type state struct {
	modules     map[string]*Module
	installed   map[string]*Module
	uninstalled map[string]*Module
	order       []string
}

// Registry discovers modules in its search directories and drives their
// lifecycle.
//
// The mutex guards dirs and state only. It is never held while hooks, the
// installation store or the filesystem are called, so installer and
// uninstaller hooks may call back into the registry. The registry expects a
// single owner to drive mutations; concurrent readers are safe.
type Registry struct {
	store     InstallationStore
	matcher   Matcher
	pattern   string
	hooks     Resolver
	providers ProviderRegistrar
	files     *OnceLoader

	mu    sync.RWMutex
	dirs  []string
	state *state
}

// Option configures a Registry.
type Option func(*Registry)

// WithPattern sets the descriptor file pattern, relative to each search
// directory. Defaults to DefaultPattern.
func WithPattern(pattern string) Option {
	return func(r *Registry) {
		r.pattern = pattern
	}
}

// WithMatcher sets the descriptor file matcher.
func WithMatcher(m Matcher) Option {
	return func(r *Registry) {
		r.matcher = m
	}
}

// WithHookResolver sets the resolver for installer and uninstaller hooks.
func WithHookResolver(res Resolver) Option {
	return func(r *Registry) {
		r.hooks = res
	}
}

// WithProviderRegistrar sets the host provider registration capability.
func WithProviderRegistrar(p ProviderRegistrar) Option {
	return func(r *Registry) {
		r.providers = p
	}
}

// WithFileLoader sets the host file loading capability. It is wrapped in a
// OnceLoader shared by all modules of the registry.
func WithFileLoader(l FileLoader) Option {
	return func(r *Registry) {
		r.files = NewOnceLoader(l)
	}
}

// NewRegistry creates a registry backed by store.
func NewRegistry(store InstallationStore, opts ...Option) *Registry {
	r := &Registry{
		store:   store,
		matcher: NewGlobMatcher(),
		pattern: DefaultPattern,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.files == nil {
		r.files = NewOnceLoader(nil)
	}
	return r
}

// AddDirs adds search directories in order.
func (r *Registry) AddDirs(dirs ...string) {
	for _, dir := range dirs {
		r.AddDir(dir)
	}
}

// AddDir appends a search directory unless an identical string is already
// present. Paths are compared as given, without normalization.
func (r *Registry) AddDir(dir string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !slices.Contains(r.dirs, dir) {
		r.dirs = append(r.dirs, dir)
	}
}

// HasDir reports whether dir is a search directory.
func (r *Registry) HasDir(dir string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Contains(r.dirs, dir)
}

// RemoveDir removes dir from the search directories.
func (r *Registry) RemoveDir(dir string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := slices.Index(r.dirs, dir); i >= 0 {
		r.dirs = slices.Delete(r.dirs, i, i+1)
	}
}

// Dirs returns the search directories in scan order.
func (r *Registry) Dirs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.dirs)
}

// Reload rescans the search directories and rebuilds the module partition.
//
// The new state is built aside and swapped in only when every descriptor was
// loaded; on failure the previous state remains visible.
func (r *Registry) Reload(ctx context.Context) (err error) {
	ctx, span := tracer.Start(ctx, "module.reload")
	defer func() { endSpan(span, err) }()
	defer func() { observability.RecordReload(err) }()

	if err := r.store.Reload(ctx); err != nil {
		return oops.With("operation", "reload installation store").Wrap(err)
	}

	var found []string
	for _, dir := range r.Dirs() {
		matches, err := r.matcher.Match(dir, r.pattern)
		if err != nil {
			return oops.With("operation", "scan module directory").With("dir", dir).Wrap(err)
		}
		found = append(found, matches...)
	}

	next := &state{
		modules:     make(map[string]*Module, len(found)),
		installed:   make(map[string]*Module),
		uninstalled: make(map[string]*Module),
		order:       make([]string, 0, len(found)),
	}

	for _, path := range found {
		desc, err := LoadDescriptor(path)
		if err != nil {
			return err
		}

		if _, ok := next.modules[desc.Name]; ok {
			return errAlreadyExists(desc.Name, path)
		}

		m := newModule(desc, r)
		next.modules[desc.Name] = m
		next.order = append(next.order, desc.Name)
		if r.store.IsInstalled(desc.Name) {
			next.installed[desc.Name] = m
		} else {
			next.uninstalled[desc.Name] = m
		}
	}

	r.mu.Lock()
	r.state = next
	r.mu.Unlock()

	observability.SetModuleCounts(len(next.installed), len(next.uninstalled))
	span.SetAttributes(attribute.Int("modules.count", len(next.modules)))
	slog.Info("modules reloaded",
		"modules", len(next.modules),
		"installed", len(next.installed),
		"uninstalled", len(next.uninstalled))

	return nil
}

// All returns every discovered module by name, or nil before the first
// successful Reload. The map is a copy.
func (r *Registry) All() map[string]*Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.state == nil {
		return nil
	}
	return maps.Clone(r.state.modules)
}

// Installed returns the installed modules by name, or nil before the first
// successful Reload. The map is a copy.
func (r *Registry) Installed() map[string]*Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.state == nil {
		return nil
	}
	return maps.Clone(r.state.installed)
}

// Uninstalled returns the uninstalled modules by name, or nil before the
// first successful Reload. The map is a copy.
func (r *Registry) Uninstalled() map[string]*Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.state == nil {
		return nil
	}
	return maps.Clone(r.state.uninstalled)
}

// Names returns the module names in discovery order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.state == nil {
		return nil
	}
	return slices.Clone(r.state.order)
}

// Has reports whether a module named name was discovered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.state == nil {
		return false
	}
	_, ok := r.state.modules[name]
	return ok
}

// Get returns the module named name.
func (r *Registry) Get(name string) (*Module, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.state != nil {
		if m, ok := r.state.modules[name]; ok {
			return m, nil
		}
	}
	return nil, errDoesNotExist(name)
}

// IsInstalled reports whether the module named name is installed.
func (r *Registry) IsInstalled(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.state == nil {
		return false
	}
	_, ok := r.state.installed[name]
	return ok
}

// IsInstalledByInstance reports whether m is installed.
func (r *Registry) IsInstalledByInstance(m *Module) bool {
	return r.IsInstalled(m.Name())
}

// Install installs the module named name.
func (r *Registry) Install(ctx context.Context, name string) error {
	m, err := r.Get(name)
	if err != nil {
		return err
	}
	return r.InstallByInstance(ctx, m)
}

// InstallByInstance runs the module installer, if any, records the
// installation and moves the module to the installed partition. A failing
// installer leaves the module uninstalled.
func (r *Registry) InstallByInstance(ctx context.Context, m *Module) (err error) {
	ctx, span := tracer.Start(ctx, "module.install",
		trace.WithAttributes(attribute.String("module.name", m.Name())))
	defer func() { endSpan(span, err) }()
	defer func() { observability.RecordTransition("install", err) }()

	if !r.Has(m.Name()) {
		return errDoesNotExist(m.Name())
	}
	if r.IsInstalledByInstance(m) {
		return errAlreadyInstalled(m.Name())
	}

	if id, ok := m.Installer(); ok {
		component, found := r.resolve(m, id)
		if !found {
			return errInstallerMissing(m.Name(), id)
		}
		installer, ok := component.(Installer)
		if !ok {
			return errInstallerIncompatible(m.Name(), id)
		}
		if err := installer.Install(ctx, m, r); err != nil {
			return oops.With("module", m.Name()).With("installer", id).Wrap(err)
		}
	}

	if err := r.store.Install(ctx, m.Name()); err != nil {
		return oops.With("module", m.Name()).With("operation", "record installation").Wrap(err)
	}

	r.move(m.Name(), true)
	slog.Info("module installed", "module", m.Name())
	return nil
}

// InstallAll installs every module that is uninstalled when the call starts,
// in discovery order. Modules installed meanwhile, for example by another
// module's installer, are skipped. The first failure stops the loop.
func (r *Registry) InstallAll(ctx context.Context) error {
	for _, m := range r.snapshot(false) {
		if r.IsInstalledByInstance(m) {
			slog.Debug("module already installed during install-all, skipping", "module", m.Name())
			continue
		}
		if err := r.InstallByInstance(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// Uninstall uninstalls the module named name.
func (r *Registry) Uninstall(ctx context.Context, name string) error {
	m, err := r.Get(name)
	if err != nil {
		return err
	}
	return r.UninstallByInstance(ctx, m)
}

// UninstallByInstance runs the module uninstaller, if any, removes the
// installation record and moves the module to the uninstalled partition.
// Protected modules are always refused.
func (r *Registry) UninstallByInstance(ctx context.Context, m *Module) (err error) {
	ctx, span := tracer.Start(ctx, "module.uninstall",
		trace.WithAttributes(attribute.String("module.name", m.Name())))
	defer func() { endSpan(span, err) }()
	defer func() { observability.RecordTransition("uninstall", err) }()

	if m.IsProtected() {
		return errProtected(m.Name())
	}
	if !r.Has(m.Name()) {
		return errDoesNotExist(m.Name())
	}
	if !r.IsInstalledByInstance(m) {
		return errAlreadyUninstalled(m.Name())
	}

	if id, ok := m.Uninstaller(); ok {
		component, found := r.resolve(m, id)
		if !found {
			return errUninstallerMissing(m.Name(), id)
		}
		uninstaller, ok := component.(Uninstaller)
		if !ok {
			return errUninstallerIncompatible(m.Name(), id)
		}
		if err := uninstaller.Uninstall(ctx, m, r); err != nil {
			return oops.With("module", m.Name()).With("uninstaller", id).Wrap(err)
		}
	}

	if err := r.store.Uninstall(ctx, m.Name()); err != nil {
		return oops.With("module", m.Name()).With("operation", "remove installation").Wrap(err)
	}

	r.move(m.Name(), false)
	slog.Info("module uninstalled", "module", m.Name())
	return nil
}

// UninstallAll uninstalls every module that is installed when the call
// starts, in discovery order. If any of them is protected the call fails
// with ErrModuleProtected before anything is uninstalled. Modules
// uninstalled meanwhile are skipped. The first failure stops the loop.
func (r *Registry) UninstallAll(ctx context.Context) error {
	targets := r.snapshot(true)
	for _, m := range targets {
		if m.IsProtected() {
			return errProtected(m.Name())
		}
	}

	for _, m := range targets {
		if !r.IsInstalledByInstance(m) {
			slog.Debug("module already uninstalled during uninstall-all, skipping", "module", m.Name())
			continue
		}
		if err := r.UninstallByInstance(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// Boot registers the providers and loads the files of every installed
// module, in discovery order. The first failure stops the boot.
func (r *Registry) Boot(ctx context.Context) (err error) {
	ctx, span := tracer.Start(ctx, "module.boot")
	defer func() { endSpan(span, err) }()

	for _, m := range r.snapshot(true) {
		if err := m.RegisterProviders(ctx); err != nil {
			return err
		}
		if err := m.LoadFiles(ctx); err != nil {
			return err
		}
		slog.Debug("module booted", "module", m.Name())
	}
	return nil
}

// snapshot returns the modules of one partition in discovery order, copied
// so callers can mutate the registry while iterating.
func (r *Registry) snapshot(installed bool) []*Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.state == nil {
		return nil
	}

	part := r.state.uninstalled
	if installed {
		part = r.state.installed
	}
	out := make([]*Module, 0, len(part))
	for _, name := range r.state.order {
		if m, ok := part[name]; ok {
			out = append(out, m)
		}
	}
	return out
}

// move places the current instance of name into the requested partition.
// Names dropped by a reload that ran inside a hook are ignored.
func (r *Registry) move(name string, installed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == nil {
		return
	}
	m, ok := r.state.modules[name]
	if !ok {
		return
	}
	if installed {
		delete(r.state.uninstalled, name)
		r.state.installed[name] = m
	} else {
		delete(r.state.installed, name)
		r.state.uninstalled[name] = m
	}
	observability.SetModuleCounts(len(r.state.installed), len(r.state.uninstalled))
}

func (r *Registry) resolve(m *Module, id string) (any, bool) {
	if r.hooks == nil {
		return nil, false
	}
	return r.hooks.Resolve(m, id)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
