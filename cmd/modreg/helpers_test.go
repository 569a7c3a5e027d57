// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// isolate points XDG lookups at temp directories and restores the default
// logger, which every command replaces.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("DATABASE_URL", "")
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })
}

// execute runs the command tree with args and returns its output.
func execute(t *testing.T, deps *Deps, args ...string) (string, error) {
	t.Helper()
	return executeContext(context.Background(), t, deps, args...)
}

func executeContext(ctx context.Context, t *testing.T, deps *Deps, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(deps)
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return buf.String(), err
}

// workspace is a module search directory plus a SQLite store, so state
// persists across command invocations.
type workspace struct {
	dir string
	db  string
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	isolate(t)
	base := t.TempDir()
	ws := &workspace{dir: filepath.Join(base, "modules"), db: filepath.Join(base, "modules.db")}
	require.NoError(t, os.MkdirAll(ws.dir, 0o755))
	return ws
}

// args prefixes the workspace flags to extra.
func (ws *workspace) args(extra ...string) []string {
	return append([]string{"--dir", ws.dir, "--store-driver", "sqlite", "--store-dsn", ws.db, "--log-format", "text"}, extra...)
}

// module writes <dir>/<name>/module.yaml plus optional extra files.
func (ws *workspace) module(t *testing.T, name, descriptor string, files map[string]string) {
	t.Helper()
	root := filepath.Join(ws.dir, name)
	require.NoError(t, os.MkdirAll(root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "module.yaml"), []byte(descriptor), 0o600))
	for file, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, file), []byte(content), 0o600))
	}
}
