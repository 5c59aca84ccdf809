// Copyright 2026 The Devcade Authors
// SPDX-License-Identifier: Apache-2.0

// Package gamestore manages the on-disk cache of game metadata and
// downloaded assets. Every game owns one subdirectory under the
// configured root:
//
//	{root}/{id}/game.json    persisted catalog metadata
//	{root}/{id}/icon.png     cached icon
//	{root}/{id}/banner.png   cached banner
//	{root}/{id}/publish/     unpacked game artifact tree
//	{root}/{id}/flatpak.yml  generated sandbox manifest
//	{root}/{id}/state-dir/   flatpak-builder state (builder-owned)
//	{root}/{id}/build/       flatpak-builder output (builder-owned)
//
// Retention is not this package's concern — nothing here deletes game
// directories.
package gamestore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/devcade/onboard/lib/schema"
)

// Store is the filesystem-backed cache of per-game metadata and assets.
type Store struct {
	root   string
	logger *slog.Logger
}

// New creates a store rooted at the given directory. The directory is
// created on first write, not here.
func New(root string, logger *slog.Logger) *Store {
	return &Store{root: root, logger: logger}
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// GameDir returns the directory owned by the given game.
func (s *Store) GameDir(id string) string {
	return filepath.Join(s.root, id)
}

// MetadataPath returns the path of the persisted game.json record.
func (s *Store) MetadataPath(id string) string {
	return filepath.Join(s.root, id, "game.json")
}

// IconPath returns the path of the cached icon image.
func (s *Store) IconPath(id string) string {
	return filepath.Join(s.root, id, "icon.png")
}

// BannerPath returns the path of the cached banner image.
func (s *Store) BannerPath(id string) string {
	return filepath.Join(s.root, id, "banner.png")
}

// PublishDir returns the directory holding the unpacked artifact tree.
func (s *Store) PublishDir(id string) string {
	return filepath.Join(s.root, id, "publish")
}

// ManifestPath returns the path of the generated sandbox manifest.
func (s *Store) ManifestPath(id string) string {
	return filepath.Join(s.root, id, "flatpak.yml")
}

// BuilderStateDir returns the flatpak-builder state directory for the
// game. The external builder owns its contents.
func (s *Store) BuilderStateDir(id string) string {
	return filepath.Join(s.root, id, "state-dir")
}

// BuildDir returns the flatpak-builder output directory for the game.
// The external builder owns its contents.
func (s *Store) BuildDir(id string) string {
	return filepath.Join(s.root, id, "build")
}

// ReadGame reads the persisted metadata record for a game. The
// returned error wraps os.ErrNotExist when no record has been
// persisted yet.
func (s *Store) ReadGame(id string) (schema.Game, error) {
	return ReadGameFile(s.MetadataPath(id))
}

// ReadGameFile reads a game record from an arbitrary game.json path.
func ReadGameFile(path string) (schema.Game, error) {
	info, err := os.Stat(path)
	if err != nil {
		return schema.Game{}, fmt.Errorf("reading game record: %w", err)
	}
	if info.IsDir() {
		return schema.Game{}, fmt.Errorf("game record path %s is a directory", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return schema.Game{}, fmt.Errorf("reading game record %s: %w", path, err)
	}

	var game schema.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return schema.Game{}, fmt.Errorf("parsing game record %s: %w", path, err)
	}
	return game, nil
}

// WriteGame persists a game's metadata record, overwriting any
// previous one. The write is atomic (temporary file, fsync, rename)
// so a concurrent reader never sees a partial record.
func (s *Store) WriteGame(game schema.Game) error {
	if game.ID == "" {
		return fmt.Errorf("refusing to persist game record with empty id")
	}

	data, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("marshaling game record: %w", err)
	}

	path := s.MetadataPath(game.ID)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating game directory: %w", err)
	}

	temporaryPath := path + ".tmp"
	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating temporary game record: %w", err)
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary game record: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary game record: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary game record: %w", err)
	}

	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming game record into place: %w", err)
	}
	return nil
}

// ListInstalled returns the game records persisted on the filesystem.
// This is the offline catalog: it can serve listings when the remote
// catalog is unreachable. Entries that fail to parse are skipped.
func (s *Store) ListInstalled() ([]schema.Game, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("reading game store root %s: %w", s.root, err)
	}

	var games []schema.Game
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		game, err := ReadGameFile(s.MetadataPath(entry.Name()))
		if err != nil {
			s.logger.Debug("skipping game directory without readable record",
				"dir", entry.Name(), "error", err)
			continue
		}
		games = append(games, game)
	}
	return games, nil
}

// WriteAsset writes an image asset (icon or banner) for a game. The
// parent directory is created if needed. Asset writes are plain — the
// images are cache-only and re-downloadable.
func (s *Store) WriteAsset(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating asset directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing asset %s: %w", path, err)
	}
	return nil
}

// AssetExists reports whether an asset file is already cached.
func (s *Store) AssetExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
