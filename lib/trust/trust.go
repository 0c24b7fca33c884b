// Copyright 2026 The Grove Authors
// SPDX-License-Identifier: Apache-2.0

// Package trust manages the launcher's on-disk trust root: a dedicated
// GnuPG home directory holding the grove maintainers' public keys, and
// a schema-version marker recording which embedded key set has been
// imported. Release verification (lib/release) points git's tag
// verification at this directory via GNUPGHOME, so nothing from the
// user's personal keyring can vouch for a grove release.
//
// The key set ships embedded in the binary. When the store is missing
// or its marker records an older schema than the embedded set declares,
// Setup re-imports the keys. Import is additive in GnuPG's keyring
// format, so re-running Setup after a crash mid-import converges to
// the same final state.
package trust

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/grove-scm/grove-launcher/lib/semver"
)

//go:embed keys/maintainers.asc
var maintainerKeys string

// KeyringVersion is the schema version declared by the embedded key
// set. Bump the minor component when keys are added, the major
// component when keys are removed or the marker format changes.
var KeyringVersion = semver.Version{1, 0}

// homeDirName is the per-user trust-store directory under $HOME.
const homeDirName = ".groveconfig"

// markerFileName is the one-line schema-version marker inside the
// trust-store directory.
const markerFileName = "keyring-version"

// Store is the on-disk trust store. Callers must check NeedsSetup
// before Setup; the pair is an explicit precondition, not hidden
// lazy initialization.
type Store struct {
	home   string
	logger *slog.Logger
}

// NewStore returns a Store rooted at home. Pass the result of
// DefaultHome outside of tests.
func NewStore(home string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{home: home, logger: logger}
}

// DefaultHome returns the per-user trust-store directory
// (~/.groveconfig).
func DefaultHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, homeDirName), nil
}

// GPGHome returns the GnuPG home directory inside the store. Release
// verification sets GNUPGHOME to this path.
func (s *Store) GPGHome() string {
	return filepath.Join(s.home, "gnupg")
}

func (s *Store) markerPath() string {
	return filepath.Join(s.home, markerFileName)
}

// NeedsSetup reports whether the embedded keys must be (re-)imported:
// the store directory is missing, the version marker is missing or
// empty, or the marker records an older schema than the embedded key
// set declares.
func (s *Store) NeedsSetup() bool {
	data, err := os.ReadFile(s.markerPath())
	if err != nil {
		return true
	}
	recorded := semver.Parse("", strings.TrimSpace(string(data)))
	if recorded == nil {
		return true
	}
	return recorded.Compare(KeyringVersion) < 0
}

// Setup creates the store directories, imports the embedded maintainer
// keys into the GnuPG home, and records the schema version. The first
// return value reports whether verification will be possible this run:
// a missing gpg binary is a soft failure (false, nil) — verification is
// skipped and a warning logged. Any other import failure is fatal and
// returned as an error. Setup is idempotent: key import is additive,
// and the marker is written only after a successful import.
func (s *Store) Setup(ctx context.Context, quiet bool) (bool, error) {
	if err := os.MkdirAll(s.home, 0o755); err != nil {
		return false, fmt.Errorf("creating trust store %s: %w", s.home, err)
	}
	// The GnuPG home holds the backend's private state; gpg itself
	// refuses homedirs that other users can read.
	gpgHome := s.GPGHome()
	if err := os.MkdirAll(gpgHome, 0o700); err != nil {
		return false, fmt.Errorf("creating gnupg home %s: %w", gpgHome, err)
	}

	command := exec.CommandContext(ctx, "gpg", "--homedir", gpgHome, "--batch", "--import")
	command.Stdin = strings.NewReader(maintainerKeys)
	var output bytes.Buffer
	command.Stdout = &output
	command.Stderr = &output

	if err := command.Run(); err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			// No gpg on this system: releases cannot be verified, but
			// the bootstrap may still proceed unverified.
			if !quiet {
				s.logger.Warn("gpg is not available; grove releases will not be verified",
					"error", err)
			}
			return false, nil
		}
		return false, fmt.Errorf("importing grove maintainer keys: %w\n%s",
			err, strings.TrimSpace(output.String()))
	}

	if err := s.writeMarker(); err != nil {
		return false, err
	}
	if !quiet {
		s.logger.Info("imported grove maintainer keys", "keyring", KeyringVersion.String())
	}
	return true, nil
}

// writeMarker records the embedded key set's schema version. Written
// via temp file + rename so a crash never leaves a partial marker that
// reads as current.
func (s *Store) writeMarker() error {
	markerPath := s.markerPath()
	temporaryPath := markerPath + ".tmp"
	content := KeyringVersion.String() + "\n"
	if err := os.WriteFile(temporaryPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing keyring version marker: %w", err)
	}
	if err := os.Rename(temporaryPath, markerPath); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("installing keyring version marker: %w", err)
	}
	return nil
}
