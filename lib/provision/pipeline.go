// Copyright 2026 The Devcade Authors
// SPDX-License-Identifier: Apache-2.0

// Package provision orchestrates making a game runnable on the
// cabinet: resolve metadata (catalog first, local cache as fallback),
// download and unpack the packaged artifact, persist the metadata
// record, and materialize the sandbox. The pipeline is idempotent —
// the installed-sandbox probe short-circuits repeat calls for the same
// identifier and content hash.
package provision

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/devcade/onboard/lib/gamestore"
	"github.com/devcade/onboard/lib/schema"
)

// Catalog is the subset of the catalog client the pipeline uses.
type Catalog interface {
	// Game fetches the metadata record for a game.
	Game(ctx context.Context, id string) (schema.Game, error)

	// DownloadArchive fetches the packaged game archive.
	DownloadArchive(ctx context.Context, id string) ([]byte, error)

	// DownloadIcon and DownloadBanner fetch the game's artwork.
	DownloadIcon(ctx context.Context, id string) ([]byte, error)
	DownloadBanner(ctx context.Context, id string) ([]byte, error)
}

// Sandbox materializes isolated runnable images from game records.
type Sandbox interface {
	// Installed reports whether a sandbox for this record's identity
	// already exists.
	Installed(ctx context.Context, game schema.Game) (bool, error)

	// Build generates the manifest and runs the external builder.
	Build(ctx context.Context, game schema.Game) error
}

// PipelineConfig carries the dependencies for NewPipeline.
type PipelineConfig struct {
	Catalog Catalog
	Store   *gamestore.Store
	Sandbox Sandbox
	Logger  *slog.Logger
}

// Pipeline ensures games are present and sandboxed before launch.
type Pipeline struct {
	catalog Catalog
	store   *gamestore.Store
	sandbox Sandbox
	logger  *slog.Logger
}

// NewPipeline constructs a provisioning pipeline.
func NewPipeline(config PipelineConfig) *Pipeline {
	return &Pipeline{
		catalog: config.Catalog,
		store:   config.Store,
		sandbox: config.Sandbox,
		logger:  config.Logger,
	}
}

// Ensure makes the game runnable: after a nil return, the game's
// metadata record is on disk and a sandbox for its identity is
// installed. Repeat calls for an unchanged (id, hash) pair stop at the
// installed probe and perform no network or build work.
//
// Failures are typed: *MetadataUnavailableError when neither the
// catalog nor the cache has a record, *DownloadError when the archive
// fetch fails, *BuildError when the sandbox build fails. Per-entry
// extraction failures are logged and do not fail the call.
func (p *Pipeline) Ensure(ctx context.Context, id string) error {
	game, err := p.resolveMetadata(ctx, id)
	if err != nil {
		return err
	}

	installed, err := p.sandbox.Installed(ctx, game)
	if err != nil {
		return fmt.Errorf("probing installed sandbox for game %s: %w", id, err)
	}
	if installed {
		p.logger.Debug("sandbox already installed",
			"game", id,
			"hash", game.Hash)
		return nil
	}

	archive, err := p.catalog.DownloadArchive(ctx, id)
	if err != nil {
		return &DownloadError{GameID: id, Err: err}
	}

	publishDir := p.store.PublishDir(id)
	report, err := extractArchive(archive, publishDir, p.logger)
	if err != nil {
		return &DownloadError{GameID: id, Err: err}
	}
	p.logger.Info("extracted game archive",
		"game", id,
		"extracted", report.Extracted,
		"failed", len(report.Failures))

	if err := p.store.WriteGame(game); err != nil {
		return fmt.Errorf("persisting metadata for game %s: %w", id, err)
	}

	p.ensureArtwork(ctx, game)

	if err := p.sandbox.Build(ctx, game); err != nil {
		return &BuildError{GameID: id, Err: err}
	}
	return nil
}

// resolveMetadata fetches the game record from the catalog, falling
// back to the last-persisted local record when the catalog is
// unreachable or returns garbage. The cabinet keeps working offline
// for any game it has provisioned before.
func (p *Pipeline) resolveMetadata(ctx context.Context, id string) (schema.Game, error) {
	game, catalogErr := p.catalog.Game(ctx, id)
	if catalogErr == nil {
		return game, nil
	}
	p.logger.Warn("catalog metadata request failed, trying local cache",
		"game", id,
		"error", catalogErr)

	game, cacheErr := p.store.ReadGame(id)
	if cacheErr == nil {
		return game, nil
	}
	return schema.Game{}, &MetadataUnavailableError{GameID: id, CatalogErr: catalogErr}
}

// ensureArtwork caches the game's icon and banner next to its
// metadata. Artwork is cosmetic: failures are logged, never fatal.
func (p *Pipeline) ensureArtwork(ctx context.Context, game schema.Game) {
	type asset struct {
		name  string
		path  string
		fetch func(context.Context, string) ([]byte, error)
	}
	assets := []asset{
		{"icon", p.store.IconPath(game.ID), p.catalog.DownloadIcon},
		{"banner", p.store.BannerPath(game.ID), p.catalog.DownloadBanner},
	}
	for _, a := range assets {
		if p.store.AssetExists(a.path) {
			continue
		}
		data, err := a.fetch(ctx, game.ID)
		if err != nil {
			p.logger.Warn("fetching game artwork failed",
				"game", game.ID,
				"asset", a.name,
				"error", err)
			continue
		}
		if err := p.store.WriteAsset(a.path, data); err != nil {
			p.logger.Warn("caching game artwork failed",
				"game", game.ID,
				"asset", a.name,
				"error", err)
		}
	}
}
