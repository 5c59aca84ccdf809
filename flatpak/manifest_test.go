// Copyright 2026 The Devcade Authors
// SPDX-License-Identifier: Apache-2.0

package flatpak

import (
	"slices"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestNewManifestFields(t *testing.T) {
	manifest := NewManifest("ns.generated_game.id_g1.hash_01", "g1", "MyGame", "/tmp/devcade/persistence.sock")

	if manifest.AppID != "ns.generated_game.id_g1.hash_01" {
		t.Errorf("AppID = %q", manifest.AppID)
	}
	if manifest.Runtime != "org.freedesktop.Platform" || manifest.RuntimeVersion != "22.08" {
		t.Errorf("runtime pairing = %s//%s", manifest.Runtime, manifest.RuntimeVersion)
	}
	if manifest.SDK != "org.freedesktop.Sdk" {
		t.Errorf("SDK = %q", manifest.SDK)
	}
	if manifest.Command != "/app/publish/MyGame" {
		t.Errorf("Command = %q, want /app/publish/MyGame", manifest.Command)
	}

	wantArgs := []string{
		"--share=ipc",
		"--socket=x11",
		"--socket=pulseaudio",
		"--share=network",
		"--device=dri",
		"--filesystem=/tmp/devcade/persistence.sock",
	}
	if !slices.Equal(manifest.FinishArgs, wantArgs) {
		t.Errorf("FinishArgs = %v, want %v", manifest.FinishArgs, wantArgs)
	}

	if len(manifest.Modules) != 1 {
		t.Fatalf("got %d modules, want 1", len(manifest.Modules))
	}
	module := manifest.Modules[0]
	if module.Name != "g1" || module.BuildSystem != "simple" {
		t.Errorf("module = %+v", module)
	}
	if len(module.BuildCommands) != 1 || module.BuildCommands[0] != "cp -r . /app/publish" {
		t.Errorf("BuildCommands = %v", module.BuildCommands)
	}
	if len(module.Sources) != 1 || module.Sources[0].Type != "dir" || module.Sources[0].Path != "publish" {
		t.Errorf("Sources = %v", module.Sources)
	}
}

func TestManifestSerializesKebabCase(t *testing.T) {
	// flatpak-builder only understands its own kebab-case schema; a
	// silently renamed field would produce an image with no sandbox
	// restrictions rather than a build failure.
	manifest := NewManifest("ns.app", "g1", "Game", "/tmp/p.sock")
	data, err := yaml.Marshal(manifest)
	if err != nil {
		t.Fatalf("marshaling manifest: %v", err)
	}

	text := string(data)
	for _, key := range []string{"app-id:", "runtime-version:", "sdk:", "finish-args:", "buildsystem:", "build-commands:"} {
		if !strings.Contains(text, key) {
			t.Errorf("serialized manifest missing key %q:\n%s", key, text)
		}
	}
}
