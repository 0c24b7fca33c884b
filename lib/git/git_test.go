// Copyright 2026 The Grove Authors
// SPDX-License-Identifier: Apache-2.0

package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// initRepo creates a git repository with one commit and returns its
// path.
func initRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	for _, args := range [][]string{
		{"init", "--quiet", dir},
		{"-C", dir, "commit", "--allow-empty", "-m", "initial"},
	} {
		command := exec.Command("git", args...)
		command.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=Test", "GIT_AUTHOR_EMAIL=test@test.local",
			"GIT_COMMITTER_NAME=Test", "GIT_COMMITTER_EMAIL=test@test.local",
		)
		if output, err := command.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, output)
		}
	}
	return dir
}

func TestRepository_Run(t *testing.T) {
	dir := initRepo(t)
	repo := NewRepository(dir)

	out, err := repo.Run(context.Background(), "rev-parse", "--is-inside-git-dir")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := strings.TrimSpace(out); got != "false" {
		t.Errorf("rev-parse --is-inside-git-dir = %q, want %q", got, "false")
	}
}

func TestRepository_RunErrorIncludesStderr(t *testing.T) {
	repo := NewRepository(initRepo(t))

	_, err := repo.Run(context.Background(), "rev-parse", "refs/no/such/ref")
	if err == nil {
		t.Fatal("expected error for nonexistent ref")
	}
	if !strings.Contains(err.Error(), "stderr:") {
		t.Errorf("error should carry stderr output, got: %v", err)
	}
}

func TestRepository_ScrubsRedirectionVariables(t *testing.T) {
	// A hostile GIT_DIR must not retarget the command away from the
	// directory named by -C.
	dir := initRepo(t)
	other := initRepo(t)
	t.Setenv("GIT_DIR", filepath.Join(other, ".git"))

	repo := NewRepository(dir)
	out, err := repo.Run(context.Background(), "rev-parse", "--show-toplevel")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	got, want := strings.TrimSpace(out), dir
	// Resolve symlinks on both sides (macOS /tmp is a symlink).
	if resolved, err := filepath.EvalSymlinks(got); err == nil {
		got = resolved
	}
	if resolved, err := filepath.EvalSymlinks(want); err == nil {
		want = resolved
	}
	if got != want {
		t.Errorf("toplevel = %q, want %q (GIT_DIR leaked through)", got, want)
	}
}

func TestCommandEnvironment(t *testing.T) {
	t.Setenv("GIT_DIR", "/somewhere/.git")
	t.Setenv("GIT_WORK_TREE", "/somewhere")
	t.Setenv("GIT_ALLOW_PROTOCOL", "")
	os.Unsetenv("GIT_ALLOW_PROTOCOL")

	env := CommandEnvironment()
	sawAllowProtocol := false
	for _, entry := range env {
		if strings.HasPrefix(entry, "GIT_DIR=") || strings.HasPrefix(entry, "GIT_WORK_TREE=") {
			t.Errorf("scrubbed variable survived: %s", entry)
		}
		if entry == "GIT_ALLOW_PROTOCOL="+defaultAllowedProtocols {
			sawAllowProtocol = true
		}
	}
	if !sawAllowProtocol {
		t.Error("GIT_ALLOW_PROTOCOL default not applied")
	}
}

func TestCommandEnvironmentKeepsCallerAllowProtocol(t *testing.T) {
	t.Setenv("GIT_ALLOW_PROTOCOL", "https")

	for _, entry := range CommandEnvironment() {
		if entry == "GIT_ALLOW_PROTOCOL=https" {
			return
		}
	}
	t.Error("caller's GIT_ALLOW_PROTOCOL was not preserved")
}

func TestVersion(t *testing.T) {
	version := Version(context.Background())
	if version == nil {
		t.Fatal("Version returned nil with git installed")
	}
	if !version.AtLeast([]int{1, 7, 2}) {
		t.Errorf("reported git version %v is implausibly old", version)
	}
}

func TestInstalled(t *testing.T) {
	if !Installed() {
		t.Error("Installed() = false with git on PATH")
	}
}
