// Copyright 2026 The Grove Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewLogger creates a structured logger for launcher operations. When
// stderr is a terminal, uses slog.TextHandler for human-readable
// output; when stderr is piped or redirected (CI, scripts), uses
// slog.JSONHandler for machine-parseable output. Quiet raises the
// level to Warn so progress chatter disappears but problems do not.
func NewLogger(quiet bool) *slog.Logger {
	level := slog.LevelInfo
	if quiet {
		level = slog.LevelWarn
	}
	options := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler)
}
