// Copyright 2026 The Grove Authors
// SPDX-License-Identifier: Apache-2.0

package release

import (
	"context"

	"github.com/grove-scm/grove-launcher/lib/clone"
)

// trackingBranch is the fixed local branch every installation lives
// on, regardless of which upstream branch it tracks.
const trackingBranch = "default"

// Checkout points the workspace's local tracking branch at revision,
// records the upstream association, and materializes the tree. The
// revision must already exist in the repository (Clone fetched it;
// Verify or UnverifiedRevision named it). Any failure is a
// *clone.Error with step StepCheckout.
func Checkout(ctx context.Context, workspace *clone.Workspace, revision string, quiet bool) error {
	repo := workspace.Repo()
	branch := workspace.Source().Branch

	steps := [][]string{
		{"update-ref", "refs/heads/" + trackingBranch, revision},
		{"config", "branch." + trackingBranch + ".remote", "origin"},
		{"config", "branch." + trackingBranch + ".merge", "refs/heads/" + branch},
		{"symbolic-ref", "HEAD", "refs/heads/" + trackingBranch},
	}
	readTree := []string{"read-tree", "--reset", "-u"}
	if !quiet {
		readTree = append(readTree, "-v")
	}
	steps = append(steps, append(readTree, "HEAD"))

	for _, args := range steps {
		if _, err := repo.Run(ctx, args...); err != nil {
			return &clone.Error{Step: clone.StepCheckout, Err: err}
		}
	}
	return nil
}
