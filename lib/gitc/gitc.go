// Copyright 2026 The Grove Authors
// SPDX-License-Identifier: Apache-2.0

// Package gitc reads the host's GITC filesystem configuration. GITC
// mounts lazily-fetched git trees under a shared directory; grove's
// gitc-init creates per-client workspaces inside it.
package gitc

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is where a GITC-enabled host publishes its mount
// configuration.
const DefaultConfigPath = "/gitc/.config"

// configPathEnv overrides the config location, for tests and
// nonstandard mounts.
const configPathEnv = "GROVE_GITC_CONFIG"

// Config is the subset of the GITC mount configuration grove needs.
type Config struct {
	// Dir is the directory GITC clients live under.
	Dir string `yaml:"gitc_dir"`
}

// ConfigPath returns the GITC config location, honoring the
// GROVE_GITC_CONFIG override.
func ConfigPath() string {
	if path := os.Getenv(configPathEnv); path != "" {
		return path
	}
	return DefaultConfigPath
}

// Load reads the GITC configuration. A missing file means the host has
// no GITC mount; that is reported as an error so callers can refuse
// gitc-init with a clear message.
func Load() (*Config, error) {
	path := ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading GITC config %s: %w", path, err)
	}
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing GITC config %s: %w", path, err)
	}
	if config.Dir == "" {
		return nil, fmt.Errorf("GITC config %s has no gitc_dir", path)
	}
	return &config, nil
}

// ClientRoot returns the workspace directory for the named GITC
// client.
func (c *Config) ClientRoot(client string) string {
	return filepath.Join(c.Dir, client)
}
