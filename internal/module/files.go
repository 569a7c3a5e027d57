// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package module

import (
	"context"
	"path/filepath"
	"sync"
)

// FileLoader loads a module file into the running host.
type FileLoader interface {
	Load(ctx context.Context, path string) error
}

// FileLoaderFunc adapts a function to FileLoader.
type FileLoaderFunc func(ctx context.Context, path string) error

// Load implements FileLoader.
func (f FileLoaderFunc) Load(ctx context.Context, path string) error {
	return f(ctx, path)
}

// OnceLoader guards a FileLoader so each cleaned absolute path is loaded at
// most once for the lifetime of the OnceLoader. A failed load is not
// recorded and may be retried.
//
// OnceLoader is safe for concurrent use.
type OnceLoader struct {
	loader FileLoader
	loaded map[string]struct{}
	mu     sync.Mutex
}

// NewOnceLoader wraps loader. A nil loader accepts every file without doing
// anything, which still records the path as loaded.
func NewOnceLoader(loader FileLoader) *OnceLoader {
	return &OnceLoader{
		loader: loader,
		loaded: make(map[string]struct{}),
	}
}

// Load loads path unless it has already been loaded.
func (o *OnceLoader) Load(ctx context.Context, path string) error {
	key := filepath.Clean(path)
	if abs, err := filepath.Abs(key); err == nil {
		key = abs
	}

	// The lock is held across the load so two callers racing on one path
	// cannot both run it.
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.loaded[key]; ok {
		return nil
	}
	if o.loader != nil {
		if err := o.loader.Load(ctx, key); err != nil {
			return err
		}
	}
	o.loaded[key] = struct{}{}
	return nil
}

// Loaded reports whether path has been loaded.
func (o *OnceLoader) Loaded(path string) bool {
	key := filepath.Clean(path)
	if abs, err := filepath.Abs(key); err == nil {
		key = abs
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.loaded[key]
	return ok
}
