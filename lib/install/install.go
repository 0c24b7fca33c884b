// Copyright 2026 The Grove Authors
// SPDX-License-Identifier: Apache-2.0

// Package install locates grove installations on disk. An
// installation is a ".grove" directory holding a verified clone of
// the grove source under ".grove/grove", whose "main" script is the
// real entry point the launcher hands control to.
package install

import (
	"os"
	"path/filepath"
)

const (
	// RootDirName is the per-workspace installation directory.
	RootDirName = ".grove"

	// CloneDirName is the verified clone inside the installation root.
	CloneDirName = "grove"

	// EntryPointName is the executable inside the clone that the
	// launcher execs into.
	EntryPointName = "main"
)

// Installation describes an on-disk grove installation.
type Installation struct {
	// TopDir is the workspace directory containing the installation
	// root.
	TopDir string

	// Root is TopDir/.grove.
	Root string

	// CloneDir is Root/grove, the verified clone.
	CloneDir string

	// EntryPoint is CloneDir/main.
	EntryPoint string
}

// At returns the Installation rooted in topDir, whether or not it
// exists on disk.
func At(topDir string) *Installation {
	root := filepath.Join(topDir, RootDirName)
	cloneDir := filepath.Join(root, CloneDirName)
	return &Installation{
		TopDir:     topDir,
		Root:       root,
		CloneDir:   cloneDir,
		EntryPoint: filepath.Join(cloneDir, EntryPointName),
	}
}

// Exists reports whether the installation's entry point is present.
func (i *Installation) Exists() bool {
	info, err := os.Stat(i.EntryPoint)
	return err == nil && !info.IsDir()
}

// Find walks upward from startDir looking for an existing
// installation. It returns the first directory whose .grove/grove/main
// exists, or nil when no ancestor holds one. The search stops at the
// filesystem root.
func Find(startDir string) *Installation {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil
	}
	for {
		installation := At(dir)
		if installation.Exists() {
			return installation
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil
		}
		dir = parent
	}
}

// selfCheckoutCompanions are the entries that must sit next to the
// launcher binary for its directory to count as a grove development
// checkout.
var selfCheckoutCompanions = []string{EntryPointName, "subcmds", "hooks", ".git"}

// SelfCheckout reports the grove source checkout the launcher itself
// lives in, if any. When a developer runs the launcher straight out of
// a grove working tree, bootstrap clones from that tree instead of the
// network and relaunches into its entry point directly. Symlinks to
// the binary are resolved first, so a symlinked launcher on PATH still
// finds its home checkout.
func SelfCheckout(exePath string) (string, bool) {
	resolved, err := filepath.EvalSymlinks(exePath)
	if err != nil {
		return "", false
	}
	dir := filepath.Dir(resolved)
	for _, name := range selfCheckoutCompanions {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return "", false
		}
	}
	return dir, true
}
