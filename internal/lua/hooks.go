// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package lua

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"

	"github.com/holomush/modreg/internal/module"
)

// HookPrefix marks hook and provider identifiers backed by a Lua script.
const HookPrefix = "lua:"

// Global functions a hook script may define.
const (
	installFunc   = "install"
	uninstallFunc = "uninstall"
	registerFunc  = "register"
)

var _ module.Resolver = (*HookResolver)(nil)

// HookResolver resolves "lua:<file>" identifiers, relative to the module
// root, into script hooks. The capabilities of the result follow the
// globals the script defines: install makes it a module.Installer,
// uninstall a module.Uninstaller and register a module.Provider.
type HookResolver struct {
	factory *StateFactory
}

// NewHookResolver creates a resolver. A nil factory uses NewStateFactory.
func NewHookResolver(factory *StateFactory) *HookResolver {
	if factory == nil {
		factory = NewStateFactory()
	}
	return &HookResolver{factory: factory}
}

// Resolve implements module.Resolver. Unreadable or broken scripts are
// reported as unresolved.
func (h *HookResolver) Resolve(m *module.Module, id string) (any, bool) {
	rel, ok := strings.CutPrefix(id, HookPrefix)
	if !ok || rel == "" {
		return nil, false
	}

	path := filepath.Join(m.Path(), filepath.FromSlash(rel))
	if !withinDir(m.Path(), path) {
		slog.Warn("lua hook outside module directory", "module", m.Name(), "hook", id)
		return nil, false
	}

	code, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("lua hook unreadable", "module", m.Name(), "hook", id, "error", err)
		}
		return nil, false
	}

	s := &script{factory: h.factory, module: m, path: path, code: string(code)}
	defined, err := s.functions()
	if err != nil {
		slog.Warn("lua hook failed to load", "module", m.Name(), "hook", id, "error", err)
		return nil, false
	}
	return s.component(defined), true
}

func withinDir(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// script is a resolved hook file. Each call runs in a fresh state.
type script struct {
	factory *StateFactory
	module  *module.Module
	path    string
	code    string
}

// functions returns which hook globals the script defines.
func (s *script) functions() (map[string]bool, error) {
	L, err := s.factory.NewState(context.Background(), s.logger())
	if err != nil {
		return nil, err
	}
	defer L.Close()

	s.setModule(L)
	if err := L.DoString(s.code); err != nil {
		return nil, oops.Code("LUA_HOOK_FAILED").With("script", s.path).Wrap(err)
	}

	defined := make(map[string]bool)
	for _, name := range []string{installFunc, uninstallFunc, registerFunc} {
		if _, ok := L.GetGlobal(name).(*lua.LFunction); ok {
			defined[name] = true
		}
	}
	return defined, nil
}

// component wraps the script in a value implementing exactly the hook
// interfaces the script supports.
func (s *script) component(defined map[string]bool) any {
	i, u, r := installHook{s}, uninstallHook{s}, registerHook{s}
	switch {
	case defined[installFunc] && defined[uninstallFunc] && defined[registerFunc]:
		return struct {
			installHook
			uninstallHook
			registerHook
		}{i, u, r}
	case defined[installFunc] && defined[uninstallFunc]:
		return struct {
			installHook
			uninstallHook
		}{i, u}
	case defined[installFunc] && defined[registerFunc]:
		return struct {
			installHook
			registerHook
		}{i, r}
	case defined[uninstallFunc] && defined[registerFunc]:
		return struct {
			uninstallHook
			registerHook
		}{u, r}
	case defined[installFunc]:
		return i
	case defined[uninstallFunc]:
		return u
	case defined[registerFunc]:
		return r
	}
	return s
}

func (s *script) logger() *slog.Logger {
	return slog.Default().With("module", s.module.Name(), "script", s.path)
}

// setModule exposes the module as the global table "module".
func (s *script) setModule(L *lua.LState) {
	t := L.NewTable()
	L.SetField(t, "name", lua.LString(s.module.Name()))
	L.SetField(t, "path", lua.LString(s.module.Path()))
	L.SetField(t, "protected", lua.LBool(s.module.IsProtected()))
	L.SetGlobal("module", t)
}

// call runs the named global function with the module table.
func (s *script) call(ctx context.Context, fn string) error {
	L, err := s.factory.NewState(ctx, s.logger())
	if err != nil {
		return err
	}
	defer L.Close()

	s.setModule(L)
	if err := L.DoString(s.code); err != nil {
		return oops.Code("LUA_HOOK_FAILED").With("module", s.module.Name()).With("script", s.path).Wrap(err)
	}

	if err := L.CallByParam(lua.P{
		Fn:      L.GetGlobal(fn),
		NRet:    0,
		Protect: true,
	}, L.GetGlobal("module")); err != nil {
		return oops.Code("LUA_HOOK_FAILED").
			With("module", s.module.Name()).
			With("script", s.path).
			With("function", fn).
			Wrap(err)
	}
	return nil
}

type installHook struct{ s *script }

// Install implements module.Installer.
func (h installHook) Install(ctx context.Context, _ *module.Module, _ *module.Registry) error {
	return h.s.call(ctx, installFunc)
}

type uninstallHook struct{ s *script }

// Uninstall implements module.Uninstaller.
func (h uninstallHook) Uninstall(ctx context.Context, _ *module.Module, _ *module.Registry) error {
	return h.s.call(ctx, uninstallFunc)
}

type registerHook struct{ s *script }

// Register implements module.Provider.
func (h registerHook) Register(ctx context.Context, _ *module.Module) error {
	return h.s.call(ctx, registerFunc)
}
