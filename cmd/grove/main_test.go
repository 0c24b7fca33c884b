// Copyright 2026 The Grove Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/grove-scm/grove-launcher/lib/testutil"
)

func TestFirstCommand(t *testing.T) {
	cases := []struct {
		args []string
		want string
	}{
		{nil, ""},
		{[]string{"init", "-q"}, "init"},
		{[]string{"-q", "sync"}, "sync"},
		{[]string{"--trace", "-q"}, ""},
		{[]string{"--", "upload"}, "upload"},
	}
	for _, c := range cases {
		if got := firstCommand(c.args); got != c.want {
			t.Errorf("firstCommand(%q) = %q, want %q", c.args, got, c.want)
		}
	}
}

func TestArgsAfter(t *testing.T) {
	got := argsAfter([]string{"-q", "init", "-u", "url"}, "init")
	if want := []string{"-u", "url"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("argsAfter = %q, want %q", got, want)
	}
	if got := argsAfter([]string{"sync"}, "init"); got != nil {
		t.Fatalf("argsAfter = %q, want nil", got)
	}
}

func TestHasQuietFlag(t *testing.T) {
	if !hasQuietFlag([]string{"init", "-q"}) {
		t.Error("-q not recognized")
	}
	if !hasQuietFlag([]string{"init", "--quiet"}) {
		t.Error("--quiet not recognized")
	}
	if hasQuietFlag([]string{"init", "-u", "url"}) {
		t.Error("quiet reported for a command line without it")
	}
}

func TestInitBootstrapsWorkspace(t *testing.T) {
	src := testutil.SourceRepo(t, "stable")
	t.Setenv(groveURLEnv, src)
	top := t.TempDir()

	boot := newBootstrapCommand("init", top, slog.Default())
	err := boot.command.Execute([]string{"-q", "--no-grove-verify", "-u", "https://example.com/platform/manifest"})
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if boot.installation == nil {
		t.Fatal("init finished without an installation")
	}
	if !boot.installation.Exists() {
		t.Fatal("installation entry point missing after init")
	}
	if boot.installation.TopDir != top {
		t.Fatalf("installed into %q, want %q", boot.installation.TopDir, top)
	}
}

func TestInitHelpDoesNotInstall(t *testing.T) {
	top := t.TempDir()
	boot := newBootstrapCommand("init", top, slog.Default())
	if err := boot.command.Execute([]string{"--help"}); err != nil {
		t.Fatalf("init --help: %v", err)
	}
	if boot.installation != nil {
		t.Fatal("help output triggered an installation")
	}
	if _, err := os.Stat(filepath.Join(top, ".grove")); !os.IsNotExist(err) {
		t.Fatalf(".grove created by help: %v", err)
	}
}

func TestGitcInitRequiresClient(t *testing.T) {
	boot := newBootstrapCommand("gitc-init", t.TempDir(), slog.Default())
	if err := boot.command.Execute([]string{"-q"}); err == nil {
		t.Fatal("gitc-init succeeded without a client name")
	}
}

func TestGitcInitInstallsIntoClientRoot(t *testing.T) {
	src := testutil.SourceRepo(t, "stable")
	t.Setenv(groveURLEnv, src)

	gitcDir := t.TempDir()
	configPath := filepath.Join(t.TempDir(), ".config")
	if err := os.WriteFile(configPath, []byte("gitc_dir: "+gitcDir+"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("GROVE_GITC_CONFIG", configPath)

	boot := newBootstrapCommand("gitc-init", t.TempDir(), slog.Default())
	err := boot.command.Execute([]string{"-q", "--no-grove-verify", "-c", "work"})
	if err != nil {
		t.Fatalf("gitc-init: %v", err)
	}
	if boot.installation == nil || boot.installation.TopDir != filepath.Join(gitcDir, "work") {
		t.Fatalf("installation = %+v, want top dir %s", boot.installation, filepath.Join(gitcDir, "work"))
	}
	if want := []string{"--gitc-client=work"}; !reflect.DeepEqual(boot.extraArgs, want) {
		t.Fatalf("extraArgs = %q, want %q", boot.extraArgs, want)
	}
}
