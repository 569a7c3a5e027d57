// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package module

import (
	"context"
	"sync"
)

// Installer runs when a module transitions to installed. It receives the
// registry that is installing the module and may call back into it.
type Installer interface {
	Install(ctx context.Context, m *Module, r *Registry) error
}

// Uninstaller runs when a module transitions to uninstalled. It receives the
// registry that is uninstalling the module and may call back into it.
type Uninstaller interface {
	Uninstall(ctx context.Context, m *Module, r *Registry) error
}

// Provider is a component a module registers with the host at boot.
type Provider interface {
	Register(ctx context.Context, m *Module) error
}

// Resolver resolves hook and provider identifiers to components.
// The returned component is checked against the capability interfaces
// (Installer, Uninstaller, Provider) by the caller.
type Resolver interface {
	Resolve(m *Module, id string) (any, bool)
}

// Resolvers tries each resolver in order and returns the first hit.
type Resolvers []Resolver

// Resolve implements Resolver.
func (rs Resolvers) Resolve(m *Module, id string) (any, bool) {
	for _, r := range rs {
		if r == nil {
			continue
		}
		if c, ok := r.Resolve(m, id); ok {
			return c, true
		}
	}
	return nil, false
}

// Components is an in-process Resolver keyed by identifier.
//
// Components is safe for concurrent use. The zero value is ready to use.
type Components struct {
	components map[string]any
	mu         sync.RWMutex
}

// NewComponents creates an empty component set.
func NewComponents() *Components {
	return &Components{components: make(map[string]any)}
}

// Register binds id to component, replacing any previous binding.
func (c *Components) Register(id string, component any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.components == nil {
		c.components = make(map[string]any)
	}
	c.components[id] = component
}

// Unregister removes the binding for id.
func (c *Components) Unregister(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.components, id)
}

// Resolve implements Resolver. The module is ignored.
func (c *Components) Resolve(_ *Module, id string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	component, ok := c.components[id]
	return component, ok
}

// ProviderRegistrar registers a module provider with the host.
type ProviderRegistrar interface {
	Register(ctx context.Context, m *Module, id string) error
}

// ProviderRegistrarFunc adapts a function to ProviderRegistrar.
type ProviderRegistrarFunc func(ctx context.Context, m *Module, id string) error

// Register implements ProviderRegistrar.
func (f ProviderRegistrarFunc) Register(ctx context.Context, m *Module, id string) error {
	return f(ctx, m, id)
}

// ResolvingRegistrar registers providers by resolving their identifiers to
// Provider components.
type ResolvingRegistrar struct {
	Resolver Resolver
}

// Register resolves id and calls its Register method.
func (rr ResolvingRegistrar) Register(ctx context.Context, m *Module, id string) error {
	if rr.Resolver == nil {
		return errProviderMissing(m.Name(), id)
	}
	component, ok := rr.Resolver.Resolve(m, id)
	if !ok {
		return errProviderMissing(m.Name(), id)
	}
	p, ok := component.(Provider)
	if !ok {
		return errProviderMissing(m.Name(), id)
	}
	return p.Register(ctx, m)
}
