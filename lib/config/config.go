// Copyright 2026 The Devcade Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the onboard
// runtime.
//
// Configuration is loaded from a single YAML file specified by:
//   - the DEVCADE_CONFIG environment variable, or
//   - the --config flag passed to the command
//
// The config file is the single source of truth; environment
// variables do not override values. The only expansion performed is
// ${VAR} and ${VAR:-default} in paths, for portability.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config is the runtime configuration for the cabinet.
type Config struct {
	// APIURL is the base URL of the remote game catalog.
	APIURL string `yaml:"api_url"`

	// DevcadePath is the root directory of the local game store.
	DevcadePath string `yaml:"devcade_path"`

	// PersistenceSocket is the Unix socket of the save-data service.
	// Bound into every game sandbox and used for pre-launch flushes.
	PersistenceSocket string `yaml:"persistence_socket"`

	// GatekeeperSocket is the Unix socket of the card reader daemon.
	GatekeeperSocket string `yaml:"gatekeeper_socket"`

	// Namespace is the reverse-DNS prefix for generated sandbox
	// application identities.
	Namespace string `yaml:"namespace"`
}

// Default returns the default configuration. These exist so every
// field has a sensible value before the config file is merged in —
// the cabinet image ships a config file, but a development checkout
// should work without one.
func Default() *Config {
	return &Config{
		APIURL:            "https://devcade.csh.rit.edu/api",
		DevcadePath:       "/tmp/devcade/games",
		PersistenceSocket: "/tmp/devcade/persistence.sock",
		GatekeeperSocket:  "/run/devcade/gatekeeper.sock",
		Namespace:         "edu.rit.csh.devcade",
	}
}

// Load loads configuration from the path in DEVCADE_CONFIG, or
// returns defaults when the variable is unset.
func Load() (*Config, error) {
	path := os.Getenv("DEVCADE_CONFIG")
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path, merged over
// defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in
// path-valued fields.
func (c *Config) expandVariables() {
	c.DevcadePath = expandVars(c.DevcadePath)
	c.PersistenceSocket = expandVars(c.PersistenceSocket)
	c.GatekeeperSocket = expandVars(c.GatekeeperSocket)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		if len(parts) >= 3 {
			return parts[2]
		}
		return ""
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.APIURL == "" {
		errs = append(errs, fmt.Errorf("api_url is required"))
	} else if _, err := url.Parse(c.APIURL); err != nil {
		errs = append(errs, fmt.Errorf("api_url is not a valid URL: %w", err))
	}

	if c.DevcadePath == "" {
		errs = append(errs, fmt.Errorf("devcade_path is required"))
	}
	if c.PersistenceSocket == "" {
		errs = append(errs, fmt.Errorf("persistence_socket is required"))
	}
	if c.Namespace == "" {
		errs = append(errs, fmt.Errorf("namespace is required"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// EnsurePaths creates the game store root if it does not exist.
func (c *Config) EnsurePaths() error {
	if err := os.MkdirAll(c.DevcadePath, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", c.DevcadePath, err)
	}
	if dir := filepath.Dir(c.PersistenceSocket); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}
