// Copyright 2026 The Devcade Authors
// SPDX-License-Identifier: Apache-2.0

package flatpak

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/devcade/onboard/lib/schema"
)

// ErrNoExecutable is returned when neither tier of the entry-point
// heuristic locates an executable in the artifact directory.
var ErrNoExecutable = errors.New("no executable found in artifact directory")

// descriptorSuffix marks a managed-runtime descriptor. The descriptor's
// base name is the executable name for .NET-published games.
const descriptorSuffix = ".runtimeconfig.json"

// LocateExecutable finds the entry-point executable inside an
// artifact directory. Two tiers, a compromise that supports both
// managed-runtime and native games without a manifest field:
//
//  1. A runtime descriptor (*.runtimeconfig.json) names the
//     executable by its base name. The descriptor must parse —
//     authors hand-edit these and sometimes leave comments, so
//     parsing goes through a comment-tolerant pass first. A file
//     that merely looks like a descriptor but does not parse is
//     ignored.
//  2. Otherwise the game's display name is tried as the executable
//     name, which is how native games ship.
//
// Either way the named file must actually exist in the directory.
func LocateExecutable(dir string, game schema.Game, logger *slog.Logger) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading artifact directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), descriptorSuffix) {
			continue
		}
		if !validDescriptor(filepath.Join(dir, entry.Name())) {
			logger.Warn("ignoring unparseable runtime descriptor", "file", entry.Name())
			continue
		}

		executable := strings.TrimSuffix(entry.Name(), descriptorSuffix)
		logger.Debug("executable inferred from runtime descriptor",
			"descriptor", entry.Name(), "executable", executable)
		if fileExists(filepath.Join(dir, executable)) {
			return executable, nil
		}
		logger.Warn("runtime descriptor names a missing executable",
			"descriptor", entry.Name(), "executable", executable)
	}

	// Native games: the display name is the executable name.
	if game.Name != "" && fileExists(filepath.Join(dir, game.Name)) {
		logger.Debug("executable inferred from display name", "executable", game.Name)
		return game.Name, nil
	}

	return "", fmt.Errorf("locating executable for %s in %s: %w", game.ID, dir, ErrNoExecutable)
}

// validDescriptor reports whether the file parses as a runtime
// descriptor after stripping JSON comments and trailing commas.
func validDescriptor(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var descriptor struct {
		RuntimeOptions map[string]any `json:"runtimeOptions"`
	}
	return json.Unmarshal(jsonc.ToJSON(data), &descriptor) == nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
