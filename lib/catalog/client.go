// Copyright 2026 The Devcade Authors
// SPDX-License-Identifier: Apache-2.0

// Package catalog implements the HTTP client for the remote game
// catalog service. The client is stateless beyond its shared
// http.Client connection pool; construct one at startup and inject it
// into the components that need it.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/devcade/onboard/lib/schema"
)

// Client issues JSON and byte requests against the catalog service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a catalog client for the given base URL. A trailing
// slash on the base URL is tolerated. The logger is required.
func New(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// GameList returns all games known to the catalog. This is the
// preferred source of game listings; the filesystem store's
// ListInstalled is the offline fallback.
func (c *Client) GameList(ctx context.Context) ([]schema.Game, error) {
	return requestJSON[[]schema.Game](ctx, c, gameListRoute())
}

// Game returns the full record for a single game.
func (c *Client) Game(ctx context.Context, id string) (schema.Game, error) {
	return requestJSON[schema.Game](ctx, c, gameRoute(id))
}

// TagList returns all catalog tags.
func (c *Client) TagList(ctx context.Context) ([]schema.Tag, error) {
	return requestJSON[[]schema.Tag](ctx, c, tagListRoute())
}

// Tag returns a single tag by name.
func (c *Client) Tag(ctx context.Context, name string) (schema.Tag, error) {
	return requestJSON[schema.Tag](ctx, c, tagRoute(name))
}

// TagGames returns the full records for all games carrying the given
// tag. The catalog serves minimal records on this route, so each entry
// is resolved with a follow-up request. Entries that fail to resolve
// are logged and skipped — one broken listing must not hide the rest.
func (c *Client) TagGames(ctx context.Context, name string) ([]schema.Game, error) {
	minimal, err := requestJSON[[]schema.MinimalGame](ctx, c, tagGamesRoute(name))
	if err != nil {
		return nil, err
	}

	games := make([]schema.Game, 0, len(minimal))
	for _, entry := range minimal {
		game, err := c.Game(ctx, entry.ID)
		if err != nil {
			c.logger.Warn("resolving game by tag",
				"tag", name, "game", entry.ID, "error", err)
			continue
		}
		games = append(games, game)
	}
	return games, nil
}

// User returns a catalog user record by user ID.
func (c *Client) User(ctx context.Context, uid string) (schema.User, error) {
	return requestJSON[schema.User](ctx, c, userRoute(uid))
}

// DownloadArchive fetches the packaged zip artifact for a game.
func (c *Client) DownloadArchive(ctx context.Context, id string) ([]byte, error) {
	return c.requestBytes(ctx, gameDownloadRoute(id))
}

// DownloadIcon fetches the game's icon image.
func (c *Client) DownloadIcon(ctx context.Context, id string) ([]byte, error) {
	return c.requestBytes(ctx, gameIconRoute(id))
}

// DownloadBanner fetches the game's banner image.
func (c *Client) DownloadBanner(ctx context.Context, id string) ([]byte, error) {
	return c.requestBytes(ctx, gameBannerRoute(id))
}

// requestJSON fetches a catalog route and decodes the JSON response
// body into T. A non-2xx status is an error — the catalog never
// signals "not found" with an empty success body.
func requestJSON[T any](ctx context.Context, c *Client, route string) (T, error) {
	var result T

	body, err := c.requestBytes(ctx, route)
	if err != nil {
		return result, err
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return result, fmt.Errorf("decoding catalog response for %s: %w", route, err)
	}
	return result, nil
}

// requestBytes fetches a catalog route and returns the raw body.
func (c *Client) requestBytes(ctx context.Context, route string) ([]byte, error) {
	url := c.baseURL + "/" + route
	c.logger.Debug("catalog request", "url", url)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building catalog request for %s: %w", route, err)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", url, err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, fmt.Errorf("catalog returned %s for %s", response.Status, url)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("reading catalog response for %s: %w", url, err)
	}
	return body, nil
}
