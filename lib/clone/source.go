// Copyright 2026 The Grove Authors
// SPDX-License-Identifier: Apache-2.0

package clone

import (
	"fmt"
	"strings"
)

// Source identifies the remote repository and branch the launcher
// bootstraps from.
type Source struct {
	// URL is the repository location (http, https, ssh, git, or a
	// local path for development bootstraps).
	URL string

	// Branch is the branch to track, without any refs/ prefix.
	Branch string
}

// NewSource validates url and revision and returns a normalized
// Source. A revision of the form refs/heads/<name> is reduced to
// <name>; any other fully-qualified ref path is rejected here, before
// any directory is created or network call is made — tags and raw ref
// paths cannot name a verifiable branch tip.
func NewSource(url, revision string) (Source, error) {
	if url == "" {
		return Source{}, fmt.Errorf("source URL is required")
	}
	branch := strings.TrimPrefix(revision, "refs/heads/")
	if branch == "" {
		return Source{}, fmt.Errorf("source revision is required")
	}
	if strings.HasPrefix(branch, "refs/") {
		return Source{}, fmt.Errorf("invalid branch name %q: only branch names or refs/heads/ paths are accepted", revision)
	}
	return Source{URL: strings.TrimSuffix(url, "/"), Branch: branch}, nil
}
