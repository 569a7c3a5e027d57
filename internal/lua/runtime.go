// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package lua

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"

	"github.com/holomush/modreg/internal/module"
)

var _ module.FileLoader = (*Runtime)(nil)

// Runtime is the long-lived Lua state module boot files are loaded into.
// Files share globals, so a later file can call functions an earlier one
// defined.
//
// Runtime is safe for concurrent use; loads are serialized.
type Runtime struct {
	mu     sync.Mutex
	state  *lua.LState
	closed bool
}

// NewRuntime creates a runtime with a fresh sandboxed state.
func NewRuntime(ctx context.Context, factory *StateFactory) (*Runtime, error) {
	if factory == nil {
		factory = NewStateFactory()
	}
	L, err := factory.NewState(ctx, slog.Default().With("component", "lua"))
	if err != nil {
		return nil, err
	}
	return &Runtime{state: L}, nil
}

// Load executes the Lua file at path. Files without a .lua extension are
// rejected.
func (r *Runtime) Load(ctx context.Context, path string) error {
	if !strings.EqualFold(filepath.Ext(path), ".lua") {
		return oops.Code("LUA_UNSUPPORTED_FILE").With("file", path).Errorf("not a lua file: %s", path)
	}

	code, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return oops.Code("LUA_LOAD_FAILED").With("file", path).Wrap(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return oops.Code("LUA_RUNTIME_CLOSED").With("file", path).Errorf("runtime is closed")
	}

	r.state.SetContext(ctx)
	if err := r.state.DoString(string(code)); err != nil {
		return oops.Code("LUA_LOAD_FAILED").With("file", path).Wrap(err)
	}

	slog.DebugContext(ctx, "lua file loaded", "file", path)
	return nil
}

// Global returns the value of a global in the runtime state as a string, and
// whether it is set.
func (r *Runtime) Global(name string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return "", false
	}
	v := r.state.GetGlobal(name)
	if v == lua.LNil {
		return "", false
	}
	return v.String(), true
}

// Close releases the state. Later loads fail.
func (r *Runtime) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.closed {
		r.closed = true
		r.state.Close()
	}
}
