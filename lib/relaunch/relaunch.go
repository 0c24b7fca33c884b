// Copyright 2026 The Grove Authors
// SPDX-License-Identifier: Apache-2.0

// Package relaunch hands control from the launcher to an installed
// grove entry point. The handoff is a process-image replacement, not a
// child process: after a successful Exec the launcher is gone and the
// entry point owns the terminal, signals, and exit status.
package relaunch

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"golang.org/x/sys/unix"
)

// SpawnFailureExitCode distinguishes "could not start the entry point"
// from any status the entry point itself exits with.
const SpawnFailureExitCode = 148

// execve is swapped out in tests; replacing the process image would
// end the test binary.
var execve = unix.Exec

// Plan describes one handoff to an installed entry point.
type Plan struct {
	// Loader optionally runs the entry point under an interpreter;
	// empty means the entry point is executed directly.
	Loader string

	// EntryPoint is the installed program to hand control to.
	EntryPoint string

	// InstallRoot tells the entry point where its installation lives.
	InstallRoot string

	// LauncherVersion and LauncherPath identify the launcher that
	// performed the handoff, so the entry point can decide whether
	// the launcher needs updating.
	LauncherVersion string
	LauncherPath    string

	// Args is the user's original command line, forwarded untouched.
	Args []string

	// ExtraArgs are launcher-synthesized trailing arguments, appended
	// after Args.
	ExtraArgs []string
}

// Argv builds the full argument vector for the handoff. Launcher
// bookkeeping flags come first, then a "--" separator, then the user's
// arguments exactly as given, then any synthesized extras. The entry
// point can therefore never mistake a user argument for launcher
// bookkeeping, or vice versa.
func (p *Plan) Argv() []string {
	argv := make([]string, 0, len(p.Args)+len(p.ExtraArgs)+8)
	if p.Loader != "" {
		argv = append(argv, p.Loader)
	}
	argv = append(argv,
		p.EntryPoint,
		"--grove-dir="+p.InstallRoot,
		"--launcher-version="+p.LauncherVersion,
		"--launcher-path="+p.LauncherPath,
		"--",
	)
	argv = append(argv, p.Args...)
	argv = append(argv, p.ExtraArgs...)
	return argv
}

// Exec replaces the current process with the planned entry point. It
// returns only on failure; callers should exit with
// SpawnFailureExitCode when it does.
func (p *Plan) Exec(environ []string) error {
	argv := p.Argv()
	if err := execve(argv[0], argv, environ); err != nil {
		return fmt.Errorf("exec %s: %w", argv[0], err)
	}
	return nil
}

// Execute hands control to the entry point, preferring a process-image
// replacement and falling back to spawn-and-wait where exec is
// unavailable. It returns the exit code the launcher should exit with.
// A non-nil error means the entry point could not be started at all;
// the returned code is then SpawnFailureExitCode.
func (p *Plan) Execute(environ []string) (int, error) {
	argv := p.Argv()
	if err := execve(argv[0], argv, environ); err == nil {
		// Only reachable when execve is stubbed; a real exec never
		// returns on success.
		return 0, nil
	}

	command := exec.Command(argv[0], argv[1:]...)
	command.Stdin = os.Stdin
	command.Stdout = os.Stdout
	command.Stderr = os.Stderr
	command.Env = environ
	if err := command.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return SpawnFailureExitCode, fmt.Errorf("starting %s: %w", argv[0], err)
	}
	return 0, nil
}
