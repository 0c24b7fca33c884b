// Copyright 2026 The Grove Authors
// SPDX-License-Identifier: Apache-2.0

package clone

import "fmt"

// Step names the bootstrap phase an Error originated in.
type Step string

const (
	StepClone    Step = "clone"
	StepVerify   Step = "verify"
	StepCheckout Step = "checkout"
)

// Error is the distinguished failure for the clone, verify, and
// checkout phases. It is recoverable only by whole-directory rollback:
// lib/bootstrap catches it exactly once, deletes the entire install
// root, and re-raises. Errors outside this type are unexpected states
// and propagate without rollback.
type Error struct {
	Step Step
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
