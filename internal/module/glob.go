// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package module

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// Matcher finds descriptor files below a directory.
type Matcher interface {
	// Match returns the paths below dir whose slash-separated path relative to
	// dir matches pattern, in lexical order. A missing dir yields no matches.
	Match(dir, pattern string) ([]string, error)
}

// GlobMatcher implements Matcher with gobwas/glob using '/' as the segment
// separator:
//   - '*' matches within one path segment
//   - '**' matches across segments
//
// Symlinked directories are followed. Subdirectories that cannot be read are
// skipped with a warning.
//
// GlobMatcher is safe for concurrent use. The zero value is ready to use.
type GlobMatcher struct {
	mu       sync.Mutex
	compiled map[string]glob.Glob
}

// NewGlobMatcher creates a GlobMatcher.
func NewGlobMatcher() *GlobMatcher {
	return &GlobMatcher{compiled: make(map[string]glob.Glob)}
}

// Match walks dir and returns the files matching pattern.
func (g *GlobMatcher) Match(dir, pattern string) ([]string, error) {
	if pattern == "" {
		return nil, oops.Code("PATTERN_INVALID").Errorf("descriptor pattern cannot be empty")
	}

	compiled, err := g.compile(pattern)
	if err != nil {
		return nil, err
	}

	// Patterns without '**' cannot match deeper than their own segment count.
	maxDepth := -1
	if !strings.Contains(pattern, "**") {
		maxDepth = strings.Count(pattern, "/") + 1
	}

	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, oops.With("dir", dir).Wrapf(err, "scan module directory")
	}
	if !info.IsDir() {
		return nil, nil
	}

	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return nil, oops.With("dir", dir).Wrapf(err, "scan module directory")
	}

	w := &globWalk{root: dir, glob: compiled, maxDepth: maxDepth}
	if err := w.walk(dir, resolved, 0, map[string]bool{resolved: true}); err != nil {
		return nil, oops.With("dir", dir).Wrapf(err, "scan module directory")
	}
	return w.matches, nil
}

// globWalk is one traversal of a search directory. Symlinked directories are
// followed unless they lead back to a directory already on the current path.
type globWalk struct {
	root     string
	glob     glob.Glob
	maxDepth int
	matches  []string
}

// walk visits the entries of path in lexical order. resolved is the real
// location of path and ancestors holds the real locations on the way to it.
func (w *globWalk) walk(path, resolved string, depth int, ancestors map[string]bool) error {
	entries, err := os.ReadDir(path)
	if err != nil {
		if depth > 0 && errors.Is(err, fs.ErrPermission) {
			slog.Warn("skipping unreadable directory", "dir", path, "error", err)
			return nil
		}
		return err
	}

	for _, entry := range entries {
		full := filepath.Join(path, entry.Name())
		isDir := entry.IsDir()
		target := filepath.Join(resolved, entry.Name())

		if entry.Type()&fs.ModeSymlink != 0 {
			if linked, ok := symlinkedDir(full); ok {
				isDir, target = true, linked
			}
		}

		if isDir {
			if w.maxDepth > 0 && depth+1 >= w.maxDepth {
				continue
			}
			if ancestors[target] {
				slog.Warn("skipping symlink loop", "dir", full, "target", target)
				continue
			}
			ancestors[target] = true
			err := w.walk(full, target, depth+1, ancestors)
			delete(ancestors, target)
			if err != nil {
				return err
			}
			continue
		}

		rel, err := filepath.Rel(w.root, full)
		if err != nil {
			return err
		}
		if w.glob.Match(filepath.ToSlash(rel)) {
			w.matches = append(w.matches, full)
		}
	}
	return nil
}

// symlinkedDir resolves a symlink that points at a directory. Dangling links
// and links to files report false and are treated as files, so a dangling
// descriptor link is reported by the descriptor loader.
func symlinkedDir(path string) (string, bool) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return "", false
	}
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", false
	}
	return target, true
}

func (g *GlobMatcher) compile(pattern string) (glob.Glob, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.compiled == nil {
		g.compiled = make(map[string]glob.Glob)
	}
	if c, ok := g.compiled[pattern]; ok {
		return c, nil
	}

	c, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, oops.Code("PATTERN_INVALID").With("pattern", pattern).Wrapf(err, "invalid descriptor pattern")
	}
	g.compiled[pattern] = c
	return c, nil
}
