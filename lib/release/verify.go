// Copyright 2026 The Grove Authors
// SPDX-License-Identifier: Apache-2.0

// Package release turns a cloned grove workspace into a trusted,
// checked-out installation. Verify resolves the tracked branch's tip
// to the nearest signed release tag and checks its signature against
// the launcher's trust store; Checkout materializes the verified
// revision into the tracked "default" branch and working tree.
//
// Commits past the last signed tag are never trusted: when the branch
// tip has moved beyond the tag, the tagged ancestor is checked out and
// the newer commits ignored. Skipping verification (no gpg, or an
// explicit opt-out) yields an unverified tip revision instead — a
// deliberate degraded mode, not a silent success.
package release

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/grove-scm/grove-launcher/lib/clone"
)

// describeSuffix matches git describe output of the form
// <tag>-<N>-g<hash>: N commits past the tag.
var describeSuffix = regexp.MustCompile(`^(.*)-\d+-g[0-9a-f]+$`)

// VerifyOptions configures Verify.
type VerifyOptions struct {
	// GNUPGHome is the trust store's GnuPG home directory. Tag
	// signatures are checked against this keyring only, never the
	// user's personal one.
	GNUPGHome string

	// Quiet suppresses informational logging.
	Quiet bool

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Verify resolves origin/<branch> to its nearest reachable signed tag
// and verifies the tag's signature. On success it returns a
// dereferenced commit identifier of the form "<tag>^0" — never the raw
// tag object, so the returned revision names exactly one commit. An
// unreachable tag or a failed signature check is a *clone.Error; the
// signature tool's diagnostic output is carried verbatim in the error.
func Verify(ctx context.Context, workspace *clone.Workspace, options VerifyOptions) (string, error) {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	branch := workspace.Source().Branch

	out, err := workspace.Repo().Run(ctx, "describe", "origin/"+branch)
	if err != nil {
		return "", &clone.Error{Step: clone.StepVerify,
			Err: fmt.Errorf("no release tag reachable from origin/%s: %w", branch, err)}
	}
	tag := strings.TrimSpace(out)
	if tag == "" {
		return "", &clone.Error{Step: clone.StepVerify,
			Err: fmt.Errorf("no release tag reachable from origin/%s", branch)}
	}

	if match := describeSuffix.FindStringSubmatch(tag); match != nil {
		tag = match[1]
		if !options.Quiet {
			logger.Info("branch tip is past the last signed release; using the tagged ancestor",
				"branch", branch, "tag", tag)
		}
	}

	command := workspace.Repo().Command(ctx, "tag", "-v", tag)
	command.Env = append(command.Env, "GNUPGHOME="+options.GNUPGHome)
	var output bytes.Buffer
	command.Stdout = &output
	command.Stderr = &output
	if err := command.Run(); err != nil {
		// The raw gpg diagnostic is the user's only way to audit why
		// a release failed verification; pass it through untouched.
		return "", &clone.Error{Step: clone.StepVerify,
			Err: fmt.Errorf("signature verification failed for tag %s: %w\n%s",
				tag, err, strings.TrimSpace(output.String()))}
	}
	return tag + "^0", nil
}

// UnverifiedRevision returns the synthesized revision used when
// verification is skipped: the dereferenced remote-tracking tip of the
// branch.
func UnverifiedRevision(branch string) string {
	return "refs/remotes/origin/" + branch + "^0"
}
