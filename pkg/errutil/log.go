// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package errutil holds helpers for logging and asserting oops errors.
package errutil

import (
	"log/slog"

	"github.com/samber/oops"
)

// promoted context keys are logged as top-level attributes so module
// failures can be filtered without unpacking the context map.
var promoted = []string{"module", "operation"}

// LogError logs err at error level. For oops errors the code, context and
// promoted keys are logged as separate attributes.
func LogError(logger *slog.Logger, msg string, err error) {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		logger.Error(msg, "error", err)
		return
	}

	attrs := []any{"error", oopsErr.Error()}
	if code := Code(err); code != "" {
		attrs = append(attrs, "code", code)
	}
	ctx := oopsErr.Context()
	for _, key := range promoted {
		if v, ok := ctx[key]; ok {
			attrs = append(attrs, key, v)
		}
	}
	if len(ctx) > 0 {
		attrs = append(attrs, "context", ctx)
	}
	logger.Error(msg, attrs...)
}
