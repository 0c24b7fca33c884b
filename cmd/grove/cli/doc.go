// Copyright 2026 The Grove Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command framework for the grove launcher:
// command definition and dispatch, help output, structured logging,
// and exit-code signaling.
package cli
