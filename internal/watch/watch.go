// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package watch triggers a callback when module search directories change.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/oops"

	"github.com/holomush/modreg/pkg/errutil"
)

// DefaultDebounce is the quiet period after the last event before onChange
// runs.
const DefaultDebounce = 250 * time.Millisecond

// Options configure a Watcher.
type Options struct {
	// Debounce defaults to DefaultDebounce when zero.
	Debounce time.Duration
}

// Watcher watches each search directory and its immediate subdirectories
// (where descriptors live) and calls onChange once per burst of events.
type Watcher struct {
	fs       *fsnotify.Watcher
	dirs     []string
	onChange func(ctx context.Context) error
	debounce time.Duration
}

// New creates a watcher. Nothing is watched until Run is called.
func New(dirs []string, onChange func(ctx context.Context) error, opts Options) (*Watcher, error) {
	if onChange == nil {
		return nil, oops.Code("WATCH_INVALID").Errorf("onChange callback is required")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, oops.Code("WATCH_FAILED").Wrapf(err, "create fsnotify watcher")
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		fs:       fsw,
		dirs:     dirs,
		onChange: onChange,
		debounce: debounce,
	}, nil
}

// Run watches until ctx is cancelled, then releases the watcher. Missing
// search directories are skipped. Errors from onChange are logged and do not
// stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		if err := w.fs.Close(); err != nil {
			slog.Warn("failed to close watcher", "error", err)
		}
	}()

	for _, dir := range w.dirs {
		if err := w.addTree(dir); err != nil {
			return err
		}
	}

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			if event.Has(fsnotify.Create) && w.isSearchDirChild(event.Name) {
				w.addDir(event.Name)
			}
			slog.Debug("module directory changed", "path", event.Name, "op", event.Op.String())
			timer.Reset(w.debounce)

		case <-timer.C:
			if err := w.onChange(ctx); err != nil {
				errutil.LogError(slog.Default(), "reload after change failed", err)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", "error", err)
		}
	}
}

// addTree watches dir and its immediate subdirectories.
func (w *Watcher) addTree(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("search directory missing, not watching", "dir", dir)
			return nil
		}
		return oops.Code("WATCH_FAILED").With("dir", dir).Wrap(err)
	}
	if err := w.fs.Add(dir); err != nil {
		return oops.Code("WATCH_FAILED").With("dir", dir).Wrap(err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			w.addDir(filepath.Join(dir, entry.Name()))
		}
	}
	return nil
}

func (w *Watcher) addDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.fs.Add(path); err != nil {
		slog.Warn("failed to watch module directory", "dir", path, "error", err)
	}
}

func (w *Watcher) isSearchDirChild(path string) bool {
	parent := filepath.Clean(filepath.Dir(path))
	for _, dir := range w.dirs {
		if filepath.Clean(dir) == parent {
			return true
		}
	}
	return false
}
