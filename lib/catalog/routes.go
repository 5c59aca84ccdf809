// Copyright 2026 The Devcade Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import "fmt"

// Route builders for the catalog API. Kept in one place so the route
// shapes are consistent across the codebase and can change from a
// single location. All routes are relative to the configured base URL.

func gameListRoute() string {
	return "games/"
}

func gameRoute(id string) string {
	return fmt.Sprintf("games/%s", id)
}

func gameIconRoute(id string) string {
	return fmt.Sprintf("games/%s/icon", id)
}

func gameBannerRoute(id string) string {
	return fmt.Sprintf("games/%s/banner", id)
}

func gameDownloadRoute(id string) string {
	return fmt.Sprintf("games/%s/game", id)
}

func tagListRoute() string {
	return "tags/"
}

func tagRoute(name string) string {
	return fmt.Sprintf("tags/%s", name)
}

func tagGamesRoute(name string) string {
	return fmt.Sprintf("tags/%s/games", name)
}

func userRoute(uid string) string {
	return fmt.Sprintf("users/%s", uid)
}
