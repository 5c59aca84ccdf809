// Copyright 2026 The Devcade Authors
// SPDX-License-Identifier: Apache-2.0

// Package launch runs provisioned games and tracks which game is
// currently active.
package launch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/devcade/onboard/lib/clock"
	"github.com/devcade/onboard/lib/gamestore"
	"github.com/devcade/onboard/lib/schema"
)

// settleDelay is how long the launcher waits after a game exits before
// returning, so ephemeral sandbox teardown and socket cleanup finish
// before the next session action touches shared state.
const settleDelay = 200 * time.Millisecond

// Provisioner guarantees a game is present and sandboxed.
type Provisioner interface {
	Ensure(ctx context.Context, id string) error
}

// Sandbox runs a provisioned game's sandboxed process to completion.
type Sandbox interface {
	Run(ctx context.Context, game schema.Game) error
}

// Flusher flushes pending save state before a launch. The persistence
// service is an external collaborator; the launcher only asks it to
// sync.
type Flusher interface {
	Flush(ctx context.Context) error
}

// LauncherConfig carries the dependencies for NewLauncher.
type LauncherConfig struct {
	Provisioner Provisioner
	Store       *gamestore.Store
	Sandbox     Sandbox
	Registry    *Registry
	Flusher     Flusher
	Clock       clock.Clock
	Logger      *slog.Logger
}

// Launcher starts sandboxed games and blocks until they exit.
type Launcher struct {
	provisioner Provisioner
	store       *gamestore.Store
	sandbox     Sandbox
	registry    *Registry
	flusher     Flusher
	clock       clock.Clock
	logger      *slog.Logger
}

// NewLauncher constructs a launcher. Clock defaults to the real clock.
func NewLauncher(config LauncherConfig) *Launcher {
	c := config.Clock
	if c == nil {
		c = clock.Real()
	}
	return &Launcher{
		provisioner: config.Provisioner,
		store:       config.Store,
		sandbox:     config.Sandbox,
		registry:    config.Registry,
		flusher:     config.Flusher,
		clock:       c,
		logger:      config.Logger,
	}
}

// Launch provisions the game if needed, then spawns its sandboxed
// process and blocks until it exits. The launched record is published
// to the registry before the spawn, so identification requests during
// play scope correctly from the first poll.
//
// There is no degraded launch mode: any inability to provision or
// spawn is returned to the caller. A save-state flush failure is
// logged only.
func (l *Launcher) Launch(ctx context.Context, id string) error {
	if err := l.provisioner.Ensure(ctx, id); err != nil {
		return err
	}

	// Re-read from disk rather than trusting any in-memory record:
	// Ensure just guaranteed this file exists, and it is the
	// authoritative source of the sandbox identity.
	game, err := l.store.ReadGame(id)
	if err != nil {
		return fmt.Errorf("reading provisioned metadata for game %s: %w", id, err)
	}

	if l.flusher != nil {
		if err := l.flusher.Flush(ctx); err != nil {
			l.logger.Warn("save-state flush failed before launch",
				"game", id,
				"error", err)
		}
	}

	l.registry.Set(game)
	l.logger.Info("launching game", "game", id, "name", game.Name)

	runErr := l.sandbox.Run(ctx, game)

	l.clock.Sleep(settleDelay)

	if runErr != nil {
		return fmt.Errorf("running game %s: %w", id, runErr)
	}
	l.logger.Info("game exited", "game", id)
	return nil
}
