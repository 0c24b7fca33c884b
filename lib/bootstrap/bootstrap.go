// Copyright 2026 The Grove Authors
// SPDX-License-Identifier: Apache-2.0

// Package bootstrap drives a first-time grove installation: it gates
// on the host's git version, provisions the signature trust store,
// clones the grove source into the workspace's installation root,
// verifies the release signature, and checks the verified revision
// out. A failure after directory creation rolls the partial
// installation back in full, so a retried init never has to reason
// about half-built state.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"github.com/grove-scm/grove-launcher/lib/clone"
	"github.com/grove-scm/grove-launcher/lib/git"
	"github.com/grove-scm/grove-launcher/lib/install"
	"github.com/grove-scm/grove-launcher/lib/release"
	"github.com/grove-scm/grove-launcher/lib/semver"
	"github.com/grove-scm/grove-launcher/lib/trust"
)

// MinGitVersion is the oldest git release the clone and checkout
// sequence is known to work with.
var MinGitVersion = semver.Version{1, 7, 2}

// Config parameterizes one bootstrap run.
type Config struct {
	// Source names the repository and branch to install from.
	Source clone.Source

	// TopDir is the workspace directory; the installation is created
	// in TopDir/.grove.
	TopDir string

	// Quiet suppresses progress output.
	Quiet bool

	// AllowBundle enables the clone.bundle fast path.
	AllowBundle bool

	// VerifyReleases requires a valid release tag signature. When
	// false, or when the trust store cannot be provisioned, the
	// branch tip is installed unverified.
	VerifyReleases bool

	// TrustHome overrides the trust store location; empty means the
	// user's ~/.groveconfig.
	TrustHome string

	// MinGitVersion overrides the default git floor; nil means
	// MinGitVersion.
	MinGitVersion semver.Version

	// HTTPClient overrides the bundle download client.
	HTTPClient *http.Client

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

func (c *Config) fill() error {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.MinGitVersion == nil {
		c.MinGitVersion = MinGitVersion
	}
	if c.TrustHome == "" {
		home, err := trust.DefaultHome()
		if err != nil {
			return fmt.Errorf("locating trust store: %w", err)
		}
		c.TrustHome = home
	}
	return nil
}

// Run performs a complete bootstrap and returns the resulting
// installation. The environment gate (git presence and version) fails
// before anything is written. Once the installation root exists, any
// clone, verify, or checkout failure removes the root before
// returning, restoring the workspace to its pre-init state.
func Run(ctx context.Context, config Config) (*install.Installation, error) {
	if err := config.fill(); err != nil {
		return nil, err
	}
	if err := checkGit(ctx, config.MinGitVersion); err != nil {
		return nil, err
	}

	installation := install.At(config.TopDir)
	if installation.Exists() {
		return installation, nil
	}
	if err := os.Mkdir(installation.Root, 0o755); err != nil && !errors.Is(err, fs.ErrExist) {
		return nil, fmt.Errorf("creating %s: %w", installation.Root, err)
	}

	verify := config.VerifyReleases
	store := trust.NewStore(config.TrustHome, config.Logger)
	if verify && store.NeedsSetup() {
		ok, err := store.Setup(ctx, config.Quiet)
		if err != nil {
			return nil, err
		}
		if !ok {
			// No signature tooling on this host. Install the branch
			// tip unverified rather than failing outright.
			verify = false
		}
	}

	workspace, err := clone.Clone(ctx, config.Source, installation.CloneDir, clone.Options{
		Quiet:       config.Quiet,
		AllowBundle: config.AllowBundle,
		HTTPClient:  config.HTTPClient,
		Logger:      config.Logger,
	})
	if err != nil {
		return nil, rollback(installation, err)
	}

	var revision string
	if verify {
		revision, err = release.Verify(ctx, workspace, release.VerifyOptions{
			GNUPGHome: store.GPGHome(),
			Quiet:     config.Quiet,
			Logger:    config.Logger,
		})
		if err != nil {
			return nil, rollback(installation, err)
		}
	} else {
		revision = release.UnverifiedRevision(config.Source.Branch)
	}

	if err := release.Checkout(ctx, workspace, revision, config.Quiet); err != nil {
		return nil, rollback(installation, err)
	}
	return installation, nil
}

// checkGit verifies git is present and at least the required version.
func checkGit(ctx context.Context, minimum semver.Version) error {
	if !git.Installed() {
		return fmt.Errorf("git is not installed; grove requires git %s or newer", minimum)
	}
	version := git.Version(ctx)
	if !version.AtLeast(minimum) {
		return fmt.Errorf("git %s is too old; grove requires git %s or newer",
			version, minimum)
	}
	return nil
}

// rollback removes the partial installation root after a staged
// failure, then returns the original error. A failed removal is
// reported alongside it.
func rollback(installation *install.Installation, cause error) error {
	var stageErr *clone.Error
	if !errors.As(cause, &stageErr) {
		return cause
	}
	if err := os.RemoveAll(installation.Root); err != nil {
		return fmt.Errorf("%w (and removing %s failed: %v)", cause, installation.Root, err)
	}
	return cause
}
