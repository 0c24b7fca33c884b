// Copyright 2026 The Grove Authors
// SPDX-License-Identifier: Apache-2.0

package gitc

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".config")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "gitc_dir: /gitc/manifest-rw\ncookie_file: /gitc/.cookies\n")
	t.Setenv(configPathEnv, path)

	config, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if config.Dir != "/gitc/manifest-rw" {
		t.Fatalf("Dir = %q, want /gitc/manifest-rw", config.Dir)
	}
	if got := config.ClientRoot("work"); got != "/gitc/manifest-rw/work" {
		t.Fatalf("ClientRoot = %q", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "absent"))
	if _, err := Load(); err == nil {
		t.Fatal("Load succeeded without a GITC config")
	}
}

func TestLoadMissingDir(t *testing.T) {
	path := writeConfig(t, "cookie_file: /gitc/.cookies\n")
	t.Setenv(configPathEnv, path)
	if _, err := Load(); err == nil {
		t.Fatal("Load succeeded without a gitc_dir entry")
	}
}

func TestConfigPathDefault(t *testing.T) {
	t.Setenv(configPathEnv, "")
	if got := ConfigPath(); got != DefaultConfigPath {
		t.Fatalf("ConfigPath = %q, want %q", got, DefaultConfigPath)
	}
}
