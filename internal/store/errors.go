// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import (
	"errors"

	"github.com/samber/oops"
)

// CodePersistenceFailed is the oops code for key set backend failures.
const CodePersistenceFailed = "PERSISTENCE_FAILED"

// ErrPersistence is wrapped by every error a KeySet backend returns.
var ErrPersistence = errors.New("persistence failure")

// persistenceError wraps a backend failure so callers can match it with
// errors.Is(err, ErrPersistence) and still see the cause.
func persistenceError(op string, err error) error {
	return oops.Code(CodePersistenceFailed).
		With("operation", op).
		Wrapf(errors.Join(ErrPersistence, err), "%s", op)
}
