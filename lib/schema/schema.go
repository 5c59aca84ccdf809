// Copyright 2026 The Devcade Authors
// SPDX-License-Identifier: Apache-2.0

// Package schema defines the wire types shared between the catalog
// service and the on-device runtime. The JSON field names match the
// catalog API exactly — a game record persisted to the local cache
// must be byte-reproducible from the catalog response that produced
// it, so nothing here renames or reinterprets fields.
package schema

// Game is the catalog's full record of a published game. The same
// structure is served by the catalog API and persisted to the local
// cache as game.json.
type Game struct {
	// ID is the stable identifier used by both the catalog routes and
	// the on-disk directory layout.
	ID string `json:"id"`

	// Author is the display name of the publisher.
	Author string `json:"author"`

	// UploadDate is the catalog's upload timestamp, carried as an
	// opaque string — the runtime never interprets it.
	UploadDate string `json:"uploadDate"`

	// Name is the human-readable display name. Also the fallback
	// executable name for games without a runtime descriptor.
	Name string `json:"name"`

	// Hash is the base64-encoded digest of the packaged zip artifact.
	// Together with ID it determines the sandbox application identity,
	// which is how package versions are distinguished.
	Hash string `json:"hash"`

	// Description is the catalog listing text.
	Description string `json:"description"`

	// IconLink and BannerLink are catalog-relative references to the
	// game's artwork.
	IconLink   string `json:"iconLink"`
	BannerLink string `json:"bannerLink"`

	// Tags are the catalog tags attached to this game.
	Tags []Tag `json:"tags"`

	// User is the publishing user's record.
	User User `json:"user"`
}

// Empty reports whether the record is the zero sentinel. The
// current-game registry starts out holding an empty record until the
// first launch publishes a real one.
func (g Game) Empty() bool {
	return g.ID == ""
}

// MinimalGame is the abbreviated record returned by list-style catalog
// routes (for example games-by-tag). It carries just enough to resolve
// the full record with a follow-up request.
type MinimalGame struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Hash string `json:"hash"`
}

// Tag is a catalog tag.
type Tag struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// User is a catalog user record.
type User struct {
	ID        string `json:"id"`
	UserType  string `json:"userType"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Admin     bool   `json:"admin"`
}
