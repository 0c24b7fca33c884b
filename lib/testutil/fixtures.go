// Copyright 2026 The Grove Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// testIdentity is the author/committer identity for fixture commits
// and the UID of the fixture signing key.
const (
	testName  = "Grove Test"
	testEmail = "test@grove.local"
)

// Git runs a git command in dir and returns its combined output,
// failing the test on a nonzero exit. extraEnv entries are appended to
// the fixture identity environment (pass a GNUPGHOME entry for signing
// operations).
func Git(t *testing.T, dir string, extraEnv []string, args ...string) string {
	t.Helper()

	command := exec.Command("git", append([]string{"-C", dir}, args...)...)
	command.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME="+testName,
		"GIT_AUTHOR_EMAIL="+testEmail,
		"GIT_COMMITTER_NAME="+testName,
		"GIT_COMMITTER_EMAIL="+testEmail,
	)
	command.Env = append(command.Env, extraEnv...)
	output, err := command.CombinedOutput()
	if err != nil {
		t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, output)
	}
	return strings.TrimSpace(string(output))
}

// SourceRepo creates a repository with an initial commit on the given
// branch, shaped like a grove source checkout (an executable "main"
// entry point plus companion directories). Returns the repository
// path, suitable as a file-path clone source.
func SourceRepo(t *testing.T, branch string) string {
	t.Helper()

	dir := t.TempDir()
	Git(t, dir, nil, "init", "--quiet")
	Git(t, dir, nil, "symbolic-ref", "HEAD", "refs/heads/"+branch)

	WriteFile(t, dir, "main", "#!/bin/sh\necho grove main\n")
	if err := os.Chmod(filepath.Join(dir, "main"), 0o755); err != nil {
		t.Fatal(err)
	}
	WriteFile(t, dir, "subcmds/init", "init command\n")
	WriteFile(t, dir, "hooks/pre-upload", "hook\n")

	Git(t, dir, nil, "add", ".")
	Git(t, dir, nil, "commit", "--quiet", "-m", "initial")
	return dir
}

// CommitFile writes a file and commits it, returning the new commit's
// hash.
func CommitFile(t *testing.T, dir, name, content, message string) string {
	t.Helper()
	WriteFile(t, dir, name, content)
	Git(t, dir, nil, "add", name)
	Git(t, dir, nil, "commit", "--quiet", "-m", message)
	return Git(t, dir, nil, "rev-parse", "HEAD")
}

// WriteFile writes a file under dir, creating parent directories.
func WriteFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// SigningHome creates a scratch GnuPG home containing a
// passphrase-less signing key for the fixture identity and returns the
// home path. Skips the test when gpg is not installed — signed-tag
// behavior cannot be exercised without it, mirroring the launcher's
// own soft degradation.
func SigningHome(t *testing.T) string {
	t.Helper()

	if _, err := exec.LookPath("gpg"); err != nil {
		t.Skip("gpg not installed")
	}

	home := t.TempDir()
	if err := os.Chmod(home, 0o700); err != nil {
		t.Fatal(err)
	}

	batch := strings.Join([]string{
		"%no-protection",
		"Key-Type: default",
		"Subkey-Type: default",
		"Name-Real: " + testName,
		"Name-Email: " + testEmail,
		"Expire-Date: 0",
		"%commit",
	}, "\n") + "\n"

	command := exec.Command("gpg", "--homedir", home, "--batch", "--gen-key")
	command.Stdin = strings.NewReader(batch)
	if output, err := command.CombinedOutput(); err != nil {
		t.Fatalf("generating fixture signing key: %v\n%s", err, output)
	}
	return home
}

// SignedTag creates a signed annotated tag in dir using the key in
// gnupgHome.
func SignedTag(t *testing.T, dir, gnupgHome, tag string) {
	t.Helper()
	Git(t, dir, []string{"GNUPGHOME=" + gnupgHome},
		"-c", "user.signingkey="+testEmail,
		"tag", "-s", "-m", "release "+tag, tag)
}

// UnsignedTag creates a plain annotated tag in dir.
func UnsignedTag(t *testing.T, dir, tag string) {
	t.Helper()
	Git(t, dir, nil, "tag", "-a", "-m", "release "+tag, tag)
}
