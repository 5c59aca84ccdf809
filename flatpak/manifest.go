// Copyright 2026 The Devcade Authors
// SPDX-License-Identifier: Apache-2.0

package flatpak

// Manifest is the declarative build description consumed by
// flatpak-builder. Field names follow the flatpak-builder YAML schema
// (kebab-case).
type Manifest struct {
	AppID          string   `yaml:"app-id"`
	Runtime        string   `yaml:"runtime"`
	RuntimeVersion string   `yaml:"runtime-version"`
	SDK            string   `yaml:"sdk"`
	Command        string   `yaml:"command"`
	FinishArgs     []string `yaml:"finish-args"`
	Modules        []Module `yaml:"modules"`
}

// Module is one build module within a manifest.
type Module struct {
	Name          string   `yaml:"name"`
	BuildSystem   string   `yaml:"buildsystem"`
	BuildCommands []string `yaml:"build-commands"`
	Sources       []Source `yaml:"sources"`
}

// Source is a module input. The only source type the cabinet uses is
// "dir": the unpacked artifact tree copied verbatim into the image.
type Source struct {
	Type string `yaml:"type"`
	Path string `yaml:"path"`
}

// Fixed base runtime/SDK pairing for all generated game images. Games
// bring their own dependencies inside the artifact tree, so the
// runtime only needs to provide the freedesktop base platform.
const (
	runtimeName    = "org.freedesktop.Platform"
	runtimeVersion = "22.08"
	sdkName        = "org.freedesktop.Sdk"
)

// NewManifest constructs the manifest for a game image. The
// capability set is fixed: IPC, X11, PulseAudio, network, the DRI
// device, and a single filesystem bind for the persistence socket.
// Everything else is denied by omission. The single module copies the
// publish tree into /app/publish, which is also where the launch
// command points.
func NewManifest(appID, gameID, executable, persistenceSocket string) Manifest {
	return Manifest{
		AppID:          appID,
		Runtime:        runtimeName,
		RuntimeVersion: runtimeVersion,
		SDK:            sdkName,
		Command:        "/app/publish/" + executable,
		FinishArgs: []string{
			"--share=ipc",
			"--socket=x11",
			"--socket=pulseaudio",
			"--share=network",
			"--device=dri",
			"--filesystem=" + persistenceSocket,
		},
		Modules: []Module{{
			Name:          gameID,
			BuildSystem:   "simple",
			BuildCommands: []string{"cp -r . /app/publish"},
			Sources: []Source{{
				Type: "dir",
				Path: "publish",
			}},
		}},
	}
}
