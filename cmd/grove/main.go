// Copyright 2026 The Grove Authors
// SPDX-License-Identifier: Apache-2.0

// Command grove is the self-installing launcher for the grove
// multi-repository tool. On a fresh workspace it bootstraps a verified
// installation under .grove/ (init, gitc-init); everywhere else it
// locates the nearest installation and replaces itself with the
// installed entry point, forwarding the user's command line untouched.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/grove-scm/grove-launcher/cmd/grove/cli"
	"github.com/grove-scm/grove-launcher/lib/install"
	"github.com/grove-scm/grove-launcher/lib/process"
	"github.com/grove-scm/grove-launcher/lib/relaunch"
	"github.com/grove-scm/grove-launcher/lib/version"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		process.Fatal(err)
	}
}

func run(args []string) error {
	command := firstCommand(args)
	logger := cli.NewLogger(hasQuietFlag(args))
	slog.SetDefault(logger)

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determining working directory: %w", err)
	}

	installation := install.Find(workDir)
	var extraArgs []string

	if installation == nil {
		// A launcher run from inside a grove source checkout serves
		// that checkout directly, without an installation.
		if checkout, ok := install.SelfCheckout(exePath()); ok && command != "init" && command != "gitc-init" {
			return forward(logger, filepath.Join(checkout, install.EntryPointName), checkout, args, nil)
		}

		switch command {
		case "init", "gitc-init":
			boot := newBootstrapCommand(command, workDir, logger)
			if err := boot.command.Execute(argsAfter(args, command)); err != nil {
				return err
			}
			if boot.installation == nil {
				// Help output consumed the invocation.
				return nil
			}
			installation = boot.installation
			extraArgs = boot.extraArgs
		case "version":
			fmt.Printf("grove launcher version %s\n", version.Full())
			return nil
		default:
			usage(os.Stderr)
			return &cli.ExitError{Code: 1}
		}
	}

	return forward(logger, installation.EntryPoint, installation.Root, args, extraArgs)
}

// forward hands the process over to the installed entry point.
func forward(logger *slog.Logger, entryPoint, installRoot string, args, extraArgs []string) error {
	plan := &relaunch.Plan{
		EntryPoint:      entryPoint,
		InstallRoot:     installRoot,
		LauncherVersion: version.Short(),
		LauncherPath:    exePath(),
		Args:            args,
		ExtraArgs:       extraArgs,
	}
	code, err := plan.Execute(os.Environ())
	if err != nil {
		logger.Error("failed to start grove", "entry_point", entryPoint, "error", err)
		return &cli.ExitError{Code: relaunch.SpawnFailureExitCode}
	}
	if code != 0 {
		return &cli.ExitError{Code: code}
	}
	return nil
}

// firstCommand returns the first argument that is not a flag, or "".
func firstCommand(args []string) string {
	for _, arg := range args {
		if !strings.HasPrefix(arg, "-") {
			return arg
		}
	}
	return ""
}

// argsAfter returns the arguments following the first occurrence of
// command.
func argsAfter(args []string, command string) []string {
	for i, arg := range args {
		if arg == command {
			return args[i+1:]
		}
	}
	return nil
}

// hasQuietFlag reports whether the command line asks for quiet output.
// The real parse happens later, per command; this early peek only
// picks the logger's verbosity.
func hasQuietFlag(args []string) bool {
	for _, arg := range args {
		if arg == "-q" || arg == "--quiet" {
			return true
		}
	}
	return false
}

// exePath returns the launcher's own path, for forwarding to the entry
// point and for self-checkout detection.
func exePath() string {
	if path, err := os.Executable(); err == nil {
		return path
	}
	return os.Args[0]
}

// usage is shown when no installation exists and the command cannot
// create one.
func usage(w io.Writer) {
	fmt.Fprintf(w, `grove is not installed in this workspace.

Usage:
  grove init -u <manifest-url> [flags]   install grove and initialize a workspace
  grove gitc-init -c <client> [flags]    initialize a GITC client workspace
  grove version                          print launcher version
  grove help                             show this message

Run 'grove init --help' for the full flag list.
`)
}
