// Copyright 2026 The Grove Authors
// SPDX-License-Identifier: Apache-2.0

// Package semver parses and compares the dotted version tuples the
// launcher gates on: the installed git version and the trust-store
// keyring schema version. These are not full semantic versions — git
// reports strings like "git version 1.7.2.msysgit.0" — so parsing
// truncates to the first three components and coerces anything
// non-numeric to zero rather than rejecting it.
package semver

import (
	"strconv"
	"strings"
)

// Version is an ordered tuple of non-negative integers. Comparison is
// component-wise; a missing trailing component compares as zero, so
// (1,7) and (1,7,0) are equal.
type Version []int

// Parse extracts a Version from s. The fixed textual prefix must be
// present and is stripped before parsing (pass "" when the input is a
// bare dotted tuple, as in the keyring schema marker). Returns nil if
// the prefix is absent or nothing parseable follows it; callers must
// treat nil as "unsupported".
func Parse(prefix, s string) Version {
	if !strings.HasPrefix(s, prefix) {
		return nil
	}
	rest := strings.TrimSpace(strings.TrimPrefix(s, prefix))
	if rest == "" {
		return nil
	}
	parts := strings.Split(rest, ".")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	version := make(Version, len(parts))
	for i, part := range parts {
		// Non-numeric components ("msysgit", "rc1") normalize to 0.
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			n = 0
		}
		version[i] = n
	}
	return version
}

// Compare returns -1, 0, or 1 by standard tuple ordering. Components
// past the end of the shorter tuple compare as zero.
func (v Version) Compare(other Version) int {
	length := len(v)
	if len(other) > length {
		length = len(other)
	}
	for i := 0; i < length; i++ {
		a, b := v.component(i), other.component(i)
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
	}
	return 0
}

// AtLeast reports whether v satisfies the given minimum. A nil v never
// satisfies any minimum: an unparseable version is unsupported.
func (v Version) AtLeast(minimum Version) bool {
	if v == nil {
		return false
	}
	return v.Compare(minimum) >= 0
}

// String renders the tuple in dotted form, e.g. "1.7.2".
func (v Version) String() string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}

func (v Version) component(i int) int {
	if i < len(v) {
		return v[i]
	}
	return 0
}
