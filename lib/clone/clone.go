// Copyright 2026 The Grove Authors
// SPDX-License-Identifier: Apache-2.0

// Package clone creates the launcher's local copy of the grove source
// repository. A clone is an empty object store seeded (optionally)
// from a downloaded snapshot bundle and then always reconciled with an
// incremental fetch from the authoritative remote — the bundle is an
// accelerator, never a trust source: every ref the checkout will use
// comes from the remote's own advertisement.
//
// Failures during clone, and during the verify and checkout steps that
// operate on the clone's output, are reported as [*Error]. The caller
// owns rollback: on any *Error the entire install root is deleted, so
// this package never attempts partial repair.
package clone

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"github.com/grove-scm/grove-launcher/lib/git"
)

// branchMirrorFetchspec mirrors every remote branch into the
// remote-tracking namespace.
const branchMirrorFetchspec = "+refs/heads/*:refs/remotes/origin/*"

// Workspace is a local directory holding a full object store rooted at
// a RemoteSource. It exists only between a successful Clone and either
// installation completion or rollback.
type Workspace struct {
	dir    string
	repo   *git.Repository
	source Source
}

// Dir returns the workspace directory.
func (w *Workspace) Dir() string { return w.dir }

// Repo returns the git repository handle for the workspace.
func (w *Workspace) Repo() *git.Repository { return w.repo }

// Source returns the remote source this workspace was cloned from.
func (w *Workspace) Source() Source { return w.source }

// Options configures a Clone.
type Options struct {
	// Quiet suppresses fetch progress output.
	Quiet bool

	// AllowBundle enables the clone.bundle snapshot acceleration.
	AllowBundle bool

	// HTTPClient performs the bundle download. Defaults to a client
	// from NewHTTPClient.
	HTTPClient *http.Client

	// Logger receives structured progress and degradation messages.
	// Defaults to slog.Default().
	Logger *slog.Logger
}

func (o *Options) fill() {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.HTTPClient == nil {
		o.HTTPClient = NewHTTPClient(o.Logger)
	}
}

// Clone materializes source's object store into dir. The directory is
// created (already-exists is fine), an empty store is initialized, the
// remote is registered with a branch-mirroring fetchspec, the optional
// bundle acceleration runs, and a full fetch of branch and tag refs
// reconciles the store with the authoritative remote. Every failure is
// a *Error; the caller must delete the install root on that signal.
func Clone(ctx context.Context, source Source, dir string, options Options) (*Workspace, error) {
	options.fill()

	if err := os.Mkdir(dir, 0o755); err != nil && !errors.Is(err, fs.ErrExist) {
		return nil, &Error{Step: StepClone, Err: fmt.Errorf("creating %s: %w", dir, err)}
	}

	workspace := &Workspace{
		dir:    dir,
		repo:   git.NewRepository(dir),
		source: source,
	}

	if _, err := workspace.repo.Run(ctx, "init", "--quiet"); err != nil {
		return nil, &Error{Step: StepClone, Err: err}
	}
	if _, err := workspace.repo.Run(ctx, "config", "remote.origin.url", source.URL); err != nil {
		return nil, &Error{Step: StepClone, Err: err}
	}
	if _, err := workspace.repo.Run(ctx, "config", "remote.origin.fetch", branchMirrorFetchspec); err != nil {
		return nil, &Error{Step: StepClone, Err: err}
	}

	if options.AllowBundle {
		if err := workspace.applyBundle(ctx, options); err != nil {
			return nil, err
		}
	}

	// The fetch always runs: a bundle only shortens the transfer, it
	// never substitutes for the authoritative remote's refs.
	if err := workspace.fetch(ctx, options.Quiet); err != nil {
		return nil, err
	}
	return workspace, nil
}

// fetch performs the reconciling fetch of branch and tag refs from the
// authoritative remote.
func (w *Workspace) fetch(ctx context.Context, quiet bool) error {
	if quiet {
		if _, err := w.repo.Run(ctx, "fetch", "--quiet", "--tags", "origin"); err != nil {
			return &Error{Step: StepClone, Err: err}
		}
		return nil
	}
	if err := w.repo.RunPassthrough(ctx, "fetch", "--tags", "origin"); err != nil {
		return &Error{Step: StepClone, Err: err}
	}
	return nil
}
