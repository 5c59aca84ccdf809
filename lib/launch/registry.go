// Copyright 2026 The Devcade Authors
// SPDX-License-Identifier: Apache-2.0

package launch

import (
	"sync"

	"github.com/devcade/onboard/lib/schema"
)

// Registry is the process-wide single-slot record of the currently
// running game. The launcher writes it immediately before spawning;
// the NFC broker reads it to scope association handles per game.
//
// The critical section is a pure copy — the lock is never held across
// I/O. Staleness of at most one in-flight launch is acceptable to
// readers.
type Registry struct {
	mu      sync.Mutex
	current schema.Game
}

// NewRegistry returns a registry holding the empty sentinel record.
func NewRegistry() *Registry {
	return &Registry{}
}

// Current returns the most recently launched game record. Before the
// first launch it returns a record for which Empty() is true.
func (r *Registry) Current() schema.Game {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Set publishes a newly launched game record.
func (r *Registry) Set(game schema.Game) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = game
}
