// Copyright 2026 The Grove Authors
// SPDX-License-Identifier: Apache-2.0

package clone

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// credential is a login/password pair from the user's netrc file.
type credential struct {
	login    string
	password string
}

// loadNetrc reads credentials from $NETRC or ~/.netrc. A missing file
// yields an empty map, not an error.
func loadNetrc() (map[string]credential, error) {
	path := os.Getenv("NETRC")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, ".netrc")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]credential{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return parseNetrc(string(data)), nil
}

// parseNetrc handles the token subset the launcher needs: machine,
// login, password, and default entries. macdef bodies (which run to a
// blank line) are skipped so their contents cannot be misread as
// tokens.
func parseNetrc(data string) map[string]credential {
	credentials := map[string]credential{}

	lines := strings.Split(data, "\n")
	var tokens []string
	for i := 0; i < len(lines); i++ {
		fields := strings.Fields(lines[i])
		for j := 0; j < len(fields); j++ {
			if fields[j] == "macdef" {
				// Keep tokens before the macro, then skip its body,
				// which runs to the next blank line.
				tokens = append(tokens, fields[:j]...)
				for i < len(lines) && strings.TrimSpace(lines[i]) != "" {
					i++
				}
				fields = nil
				break
			}
		}
		tokens = append(tokens, fields...)
	}

	machine := ""
	active := false
	for i := 0; i < len(tokens); i++ {
		switch tokens[i] {
		case "machine":
			if i+1 < len(tokens) {
				i++
				machine = tokens[i]
				active = true
			}
		case "default":
			machine = ""
			active = true
		case "login":
			if active && i+1 < len(tokens) {
				i++
				entry := credentials[machine]
				entry.login = tokens[i]
				credentials[machine] = entry
			}
		case "password":
			if active && i+1 < len(tokens) {
				i++
				entry := credentials[machine]
				entry.password = tokens[i]
				credentials[machine] = entry
			}
		}
	}
	return credentials
}
