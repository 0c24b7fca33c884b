// Copyright 2026 The Grove Authors
// SPDX-License-Identifier: Apache-2.0

package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grove-scm/grove-launcher/lib/clone"
	"github.com/grove-scm/grove-launcher/lib/install"
	"github.com/grove-scm/grove-launcher/lib/testutil"
)

func newSource(t *testing.T, url, branch string) clone.Source {
	t.Helper()
	source, err := clone.NewSource(url, branch)
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	return source
}

func TestRunUnverified(t *testing.T) {
	src := testutil.SourceRepo(t, "stable")
	top := t.TempDir()

	installation, err := Run(context.Background(), Config{
		Source:    newSource(t, src, "stable"),
		TopDir:    top,
		Quiet:     true,
		TrustHome: filepath.Join(t.TempDir(), "trust"),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !installation.Exists() {
		t.Fatal("bootstrap finished but the entry point is missing")
	}

	head := strings.TrimSpace(testutil.Git(t, installation.CloneDir, nil, "symbolic-ref", "HEAD"))
	if head != "refs/heads/default" {
		t.Fatalf("HEAD = %q, want refs/heads/default", head)
	}
	local := strings.TrimSpace(testutil.Git(t, installation.CloneDir, nil, "rev-parse", "HEAD"))
	tip := strings.TrimSpace(testutil.Git(t, src, nil, "rev-parse", "stable"))
	if local != tip {
		t.Fatalf("installed revision %s, want branch tip %s", local, tip)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	src := testutil.SourceRepo(t, "stable")
	top := t.TempDir()
	config := Config{
		Source:    newSource(t, src, "stable"),
		TopDir:    top,
		Quiet:     true,
		TrustHome: filepath.Join(t.TempDir(), "trust"),
	}

	first, err := Run(context.Background(), config)
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	second, err := Run(context.Background(), config)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if first.Root != second.Root {
		t.Fatalf("second Run produced %q, want %q", second.Root, first.Root)
	}
}

func TestRunRollsBackOnCloneFailure(t *testing.T) {
	top := t.TempDir()
	_, err := Run(context.Background(), Config{
		Source:    newSource(t, filepath.Join(t.TempDir(), "no-such-repo"), "stable"),
		TopDir:    top,
		Quiet:     true,
		TrustHome: filepath.Join(t.TempDir(), "trust"),
	})
	if err == nil {
		t.Fatal("Run succeeded against a nonexistent source")
	}
	if _, statErr := os.Stat(install.At(top).Root); !os.IsNotExist(statErr) {
		t.Fatalf("installation root survived a failed bootstrap: %v", statErr)
	}
}

func TestRunVerified(t *testing.T) {
	gnupgHome := testutil.SigningHome(t)
	src := testutil.SourceRepo(t, "stable")
	testutil.SignedTag(t, src, gnupgHome, "v1.0")
	testutil.CommitFile(t, src, "later", "unreleased\n", "post-release work")

	// A pre-provisioned trust store whose keyring already holds the
	// release signing key.
	trustHome := t.TempDir()
	if err := os.WriteFile(filepath.Join(trustHome, "keyring-version"), []byte("1.0\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.Symlink(gnupgHome, filepath.Join(trustHome, "gnupg")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	top := t.TempDir()
	installation, err := Run(context.Background(), Config{
		Source:         newSource(t, src, "stable"),
		TopDir:         top,
		Quiet:          true,
		VerifyReleases: true,
		TrustHome:      trustHome,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// The unreleased commit past v1.0 must not be installed.
	installed := strings.TrimSpace(testutil.Git(t, installation.CloneDir, nil, "rev-parse", "HEAD"))
	tagged := strings.TrimSpace(testutil.Git(t, src, nil, "rev-parse", "v1.0^0"))
	if installed != tagged {
		t.Fatalf("installed revision %s, want signed release %s", installed, tagged)
	}
}

func TestRunVerifiedRejectsUnsignedRelease(t *testing.T) {
	gnupgHome := testutil.SigningHome(t)
	src := testutil.SourceRepo(t, "stable")
	testutil.UnsignedTag(t, src, "v1.0")

	trustHome := t.TempDir()
	if err := os.WriteFile(filepath.Join(trustHome, "keyring-version"), []byte("1.0\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.Symlink(gnupgHome, filepath.Join(trustHome, "gnupg")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	top := t.TempDir()
	_, err := Run(context.Background(), Config{
		Source:         newSource(t, src, "stable"),
		TopDir:         top,
		Quiet:          true,
		VerifyReleases: true,
		TrustHome:      trustHome,
	})
	if err == nil {
		t.Fatal("Run installed an unsigned release")
	}
	if _, statErr := os.Stat(install.At(top).Root); !os.IsNotExist(statErr) {
		t.Fatalf("installation root survived a failed verification: %v", statErr)
	}
}
