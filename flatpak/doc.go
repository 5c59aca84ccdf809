// Copyright 2026 The Devcade Authors
// SPDX-License-Identifier: Apache-2.0

// Package flatpak builds and runs isolated game images via the
// external flatpak toolchain. Untrusted game binaries never run
// directly on the cabinet: each game is wrapped in a flatpak whose
// manifest grants exactly the capabilities a cabinet game needs
// (display, audio, IPC, network, GPU, and the persistence socket) and
// nothing else.
//
// The package derives a deterministic application identity from the
// game's id and content hash, so a re-published game (new hash) gets
// a new identity and a fresh build while an unchanged game is served
// by flatpak's own cache. External commands (flatpak, flatpak-builder)
// run through an injected Runner so tests never spawn real processes.
package flatpak
