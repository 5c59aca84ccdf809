// Copyright 2026 The Devcade Authors
// SPDX-License-Identifier: Apache-2.0

package flatpak

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/devcade/onboard/lib/gamestore"
	"github.com/devcade/onboard/lib/schema"
)

// Builder materializes and runs sandboxed game images. It owns the
// manifest generation and the external flatpak/flatpak-builder
// invocations; the store provides the per-game directory layout.
type Builder struct {
	namespace         string
	persistenceSocket string
	store             *gamestore.Store
	runner            Runner
	logger            *slog.Logger
}

// BuilderConfig configures a Builder.
type BuilderConfig struct {
	// Namespace is the reverse-DNS prefix for application identities.
	// Defaults to DefaultNamespace.
	Namespace string

	// PersistenceSocket is the host path of the save-data socket bound
	// into every game image.
	PersistenceSocket string

	// Store provides the per-game directory layout. Required.
	Store *gamestore.Store

	// Runner executes external commands. Defaults to ExecRunner.
	Runner Runner

	// Logger is the structured logger. Required.
	Logger *slog.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(config BuilderConfig) *Builder {
	namespace := config.Namespace
	if namespace == "" {
		namespace = DefaultNamespace
	}
	runner := config.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Builder{
		namespace:         namespace,
		persistenceSocket: config.PersistenceSocket,
		store:             config.Store,
		runner:            runner,
		logger:            config.Logger,
	}
}

// AppID derives the application identity for a game under this
// builder's namespace.
func (b *Builder) AppID(game schema.Game) (string, error) {
	return AppID(b.namespace, game)
}

// Installed probes whether a sandbox image already exists for the
// game's identity. The probe is `flatpak info <app-id>`: exit zero
// means installed, non-zero means not. Because the identity encodes
// the content hash, a positive probe also proves the installed image
// matches the record's exact package version — no separate hash
// comparison is needed. Stdout is discarded; stderr is inherited for
// operator visibility.
func (b *Builder) Installed(ctx context.Context, game schema.Game) (bool, error) {
	appID, err := b.AppID(game)
	if err != nil {
		return false, err
	}

	err = b.runner.Run(ctx, Command{
		Name:   "flatpak",
		Args:   []string{"info", appID},
		Stderr: os.Stderr,
	})
	if err == nil {
		return true, nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return false, nil
	}
	return false, fmt.Errorf("probing installed image for %s: %w", game.ID, err)
}

// Build materializes the sandbox image for a game whose artifact tree
// is already unpacked in the store's publish directory. It locates the
// entry-point executable, marks it executable regardless of how it
// arrived on disk, writes the manifest, and blocks on the external
// build/install invocation. flatpak-builder's own caching and
// idempotence are relied upon; success is judged by exit status alone.
func (b *Builder) Build(ctx context.Context, game schema.Game) error {
	publishDir := b.store.PublishDir(game.ID)

	executable, err := LocateExecutable(publishDir, game, b.logger)
	if err != nil {
		return err
	}

	executablePath := filepath.Join(publishDir, executable)
	if err := os.Chmod(executablePath, 0755); err != nil {
		return fmt.Errorf("marking %s executable: %w", executablePath, err)
	}

	appID, err := b.AppID(game)
	if err != nil {
		return err
	}

	manifest := NewManifest(appID, game.ID, executable, b.persistenceSocket)
	manifestData, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("serializing manifest for %s: %w", game.ID, err)
	}

	manifestPath := b.store.ManifestPath(game.ID)
	if err := os.WriteFile(manifestPath, manifestData, 0644); err != nil {
		return fmt.Errorf("writing manifest %s: %w", manifestPath, err)
	}

	b.logger.Info("building game image", "game", game.ID, "app_id", appID)
	err = b.runner.Run(ctx, Command{
		Name: "flatpak-builder",
		Args: []string{
			"--state-dir=" + b.store.BuilderStateDir(game.ID),
			"--force-clean",
			"--user",
			"--install",
			b.store.BuildDir(game.ID),
			manifestPath,
		},
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("building image for %s: %w", game.ID, err)
	}

	b.logger.Info("built game image", "game", game.ID, "app_id", appID)
	return nil
}

// Run launches the game's sandbox image by application identity and
// blocks until the process exits. Output streams are inherited so the
// game's own diagnostics reach the operator console.
func (b *Builder) Run(ctx context.Context, game schema.Game) error {
	appID, err := b.AppID(game)
	if err != nil {
		return err
	}

	b.logger.Info("running game image", "game", game.ID, "app_id", appID)
	err = b.runner.Run(ctx, Command{
		Name:   "flatpak",
		Args:   []string{"run", appID},
		Dir:    b.store.GameDir(game.ID),
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("running image for %s: %w", game.ID, err)
	}
	return nil
}
