// Copyright 2026 The Devcade Authors
// SPDX-License-Identifier: Apache-2.0

package provision

import "fmt"

// MetadataUnavailableError indicates that neither the catalog nor the
// local cache could produce a metadata record for a game. Provisioning
// cannot proceed without one.
type MetadataUnavailableError struct {
	GameID string

	// CatalogErr is the failure from the catalog request. The cache
	// miss has no interesting cause to carry.
	CatalogErr error
}

func (e *MetadataUnavailableError) Error() string {
	return fmt.Sprintf("metadata unavailable for game %s: catalog request failed (%v) and no cached record exists", e.GameID, e.CatalogErr)
}

func (e *MetadataUnavailableError) Unwrap() error { return e.CatalogErr }

// DownloadError indicates that fetching the packaged game archive from
// the catalog failed. Unlike metadata, the archive has no local
// fallback source.
type DownloadError struct {
	GameID string
	Err    error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("downloading archive for game %s: %v", e.GameID, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// BuildError indicates that materializing the sandbox failed after the
// artifact tree was already on disk.
type BuildError struct {
	GameID string
	Err    error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("building sandbox for game %s: %v", e.GameID, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }
