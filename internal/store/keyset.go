// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package store persists the set of installed module names.
package store

import "context"

// KeySet is a durable set of string keys.
//
// Add of a present key and Remove of an absent key are no-ops.
// Implementations must be safe for concurrent use.
type KeySet interface {
	// EnsureInitialized creates the backing storage if it does not exist.
	EnsureInitialized(ctx context.Context) error
	// ListAll returns every key, sorted.
	ListAll(ctx context.Context) ([]string, error)
	Add(ctx context.Context, key string) error
	Remove(ctx context.Context, key string) error
	Contains(ctx context.Context, key string) (bool, error)
}
