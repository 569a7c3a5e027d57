// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import (
	"context"
	"slices"
	"sync"
)

// MemoryKeySet is a KeySet that lives only as long as the process.
type MemoryKeySet struct {
	mu   sync.RWMutex
	keys map[string]struct{}
}

// NewMemoryKeySet creates a key set holding keys.
func NewMemoryKeySet(keys ...string) *MemoryKeySet {
	s := &MemoryKeySet{keys: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		s.keys[k] = struct{}{}
	}
	return s
}

// EnsureInitialized implements KeySet.
func (s *MemoryKeySet) EnsureInitialized(context.Context) error { return nil }

// ListAll implements KeySet.
func (s *MemoryKeySet) ListAll(context.Context) ([]string, error) {
	s.mu.RLock()
	out := make([]string, 0, len(s.keys))
	for k := range s.keys {
		out = append(out, k)
	}
	s.mu.RUnlock()

	slices.Sort(out)
	return out, nil
}

// Add implements KeySet.
func (s *MemoryKeySet) Add(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = struct{}{}
	return nil
}

// Remove implements KeySet.
func (s *MemoryKeySet) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}

// Contains implements KeySet.
func (s *MemoryKeySet) Contains(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.keys[key]
	return ok, nil
}
