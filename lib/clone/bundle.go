// Copyright 2026 The Grove Authors
// SPDX-License-Identifier: Apache-2.0

package clone

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/grove-scm/grove-launcher/lib/git"
)

// bundleFileName is the snapshot bundle's name on the remote and the
// temporary local file it downloads to.
const bundleFileName = "clone.bundle"

// maxErrorBody bounds how much of an HTTP error response is read for
// diagnostics.
const maxErrorBody = 4096

// bundleUnavailable are the HTTP statuses that mean "this remote does
// not serve a bundle" rather than "the transfer failed". They cover
// servers that reject the path (404, 501), require auth we did not
// present (401, 403), or cannot negotiate the content (406).
var bundleUnavailable = map[int]bool{
	http.StatusUnauthorized:   true,
	http.StatusForbidden:      true,
	http.StatusNotFound:       true,
	http.StatusNotAcceptable:  true,
	http.StatusNotImplemented: true,
}

// applyBundle attempts the snapshot acceleration: download
// <url>/clone.bundle and import its objects into the store. A missing
// bundle or inapplicable URL scheme degrades silently to the plain
// fetch. Transfer errors other than the "unavailable" statuses, and
// any import failure, are fatal *Error values. The bundle file is
// deleted once import has been attempted, whether or not it succeeded.
func (w *Workspace) applyBundle(ctx context.Context, options Options) error {
	bundleURL := w.source.URL + "/" + bundleFileName
	bundleURL = rewriteURL(ctx, w.repo, bundleURL, options.Logger)

	if !strings.HasPrefix(bundleURL, "http://") && !strings.HasPrefix(bundleURL, "https://") {
		options.Logger.Debug("snapshot bundle not applicable for URL scheme", "url", bundleURL)
		return nil
	}

	bundlePath := filepath.Join(w.dir, bundleFileName)
	downloaded, err := downloadBundle(ctx, options.HTTPClient, bundleURL, bundlePath)
	if err != nil {
		return &Error{Step: StepClone, Err: err}
	}
	if !downloaded {
		options.Logger.Debug("snapshot bundle unavailable, using incremental fetch", "url", bundleURL)
		return nil
	}
	defer os.Remove(bundlePath)

	if !options.Quiet {
		options.Logger.Info("importing snapshot bundle", "url", bundleURL)
	}
	importArgs := []string{"fetch", "--update-head-ok"}
	if options.Quiet {
		importArgs = append(importArgs, "--quiet")
	}
	importArgs = append(importArgs, bundlePath, branchMirrorFetchspec)
	if _, err := w.repo.Run(ctx, importArgs...); err != nil {
		return &Error{Step: StepClone, Err: fmt.Errorf("importing snapshot bundle: %w", err)}
	}
	return nil
}

// downloadBundle streams url to path. Returns (false, nil) when the
// remote reports the bundle unavailable, (true, nil) on success, and
// an error for any other transport failure. End of stream is detected
// by io.Copy's own contract, never by comparing reads against an
// empty-buffer sentinel.
func downloadBundle(ctx context.Context, client *http.Client, url, path string) (bool, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("building bundle request: %w", err)
	}
	response, err := client.Do(request)
	if err != nil {
		return false, fmt.Errorf("downloading %s: %w", url, err)
	}
	defer response.Body.Close()

	if bundleUnavailable[response.StatusCode] {
		return false, nil
	}
	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(response.Body, maxErrorBody))
		return false, fmt.Errorf("downloading %s: status %d: %s",
			url, response.StatusCode, strings.TrimSpace(string(body)))
	}

	file, err := os.Create(path)
	if err != nil {
		return false, fmt.Errorf("creating %s: %w", path, err)
	}
	if _, err := io.Copy(file, response.Body); err != nil {
		file.Close()
		os.Remove(path)
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return false, fmt.Errorf("closing %s: %w", path, err)
	}
	return true, nil
}

// rewriteURL applies the user's url.<base>.insteadOf rules to a bundle
// URL, longest match first, matching git's own rewriting of fetch
// URLs. Lookup failure is ignored and the original URL used — rewrite
// rules are an optimization, not a correctness requirement.
func rewriteURL(ctx context.Context, repo *git.Repository, url string, logger *slog.Logger) string {
	out, err := repo.Run(ctx, "config", "--get-regexp", `url\..*\.insteadof`)
	if err != nil {
		return url
	}

	bestBase, bestMatch := "", ""
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		key, match, found := strings.Cut(line, " ")
		if !found {
			continue
		}
		base := strings.TrimSuffix(strings.TrimPrefix(key, "url."), ".insteadof")
		if base == key || match == "" {
			continue
		}
		if strings.HasPrefix(url, match) && len(match) > len(bestMatch) {
			bestBase, bestMatch = base, match
		}
	}
	if bestMatch == "" {
		return url
	}
	rewritten := bestBase + strings.TrimPrefix(url, bestMatch)
	logger.Debug("rewrote bundle URL", "from", url, "to", rewritten)
	return rewritten
}
