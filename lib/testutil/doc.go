// Copyright 2026 The Grove Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test fixtures for launcher
// packages. The launcher's protocol is defined over the real git and
// gpg CLIs, so the fixtures build real repositories and keyrings in
// temp directories rather than mocking process execution:
//
//   - [SourceRepo] -- a repository with an initial commit on a named
//     branch, shaped like a grove source checkout
//   - [Git] -- run a git command in a fixture repository
//   - [SigningHome] -- a scratch GnuPG home with a passphrase-less
//     signing key (skips the test when gpg is unavailable)
//   - [SignedTag] -- a signed tag created with that key
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since fixture failures are not recoverable.
//
// This package has no launcher-internal dependencies.
package testutil
