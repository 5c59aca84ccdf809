// Copyright 2026 The Devcade Authors
// SPDX-License-Identifier: Apache-2.0

package nfc

import (
	"fmt"
	"testing"
)

func TestRingEvictsOldestFirst(t *testing.T) {
	ring := newAssociationRing()
	for i := 1; i <= ringCapacity+1; i++ {
		ring.insert(fmt.Sprintf("h%d", i), fmt.Sprintf("raw%d", i), "g1")
	}

	// The 9th insert into an 8-capacity ring evicts the 1st entry and
	// only the 1st.
	if _, ok := ring.byRawID("raw1", "g1"); ok {
		t.Error("oldest entry raw1 survived eviction")
	}
	for i := 2; i <= ringCapacity+1; i++ {
		rawID := fmt.Sprintf("raw%d", i)
		handle, ok := ring.byRawID(rawID, "g1")
		if !ok {
			t.Errorf("entry %s missing after eviction of the oldest", rawID)
			continue
		}
		if want := fmt.Sprintf("h%d", i); handle != want {
			t.Errorf("entry %s resolves to %q, want %q", rawID, handle, want)
		}
	}
}

func TestRingScopesLookupByGame(t *testing.T) {
	ring := newAssociationRing()
	ring.insert("h1", "raw1", "g1")

	if _, ok := ring.byRawID("raw1", "g2"); ok {
		t.Error("lookup under a different game returned another game's handle")
	}
	if _, ok := ring.byRawID("raw1", "g1"); !ok {
		t.Error("lookup under the inserting game missed")
	}
}

func TestRingByHandle(t *testing.T) {
	ring := newAssociationRing()
	ring.insert("h1", "raw1", "g1")
	ring.insert("h2", "raw2", "g1")

	rawID, ok := ring.byHandle("h2")
	if !ok || rawID != "raw2" {
		t.Errorf("byHandle(h2) = %q, %v, want raw2, true", rawID, ok)
	}
	if _, ok := ring.byHandle("unknown"); ok {
		t.Error("unknown handle resolved")
	}
}

func TestDeriveHandleUnlinkableAcrossGames(t *testing.T) {
	underGame1 := deriveHandle("raw1", "g1")
	underGame2 := deriveHandle("raw1", "g2")
	if underGame1 == underGame2 {
		t.Error("same card produced linkable handles under different games")
	}

	if again := deriveHandle("raw1", "g1"); again != underGame1 {
		t.Errorf("handle derivation is not deterministic: %q vs %q", again, underGame1)
	}
}

func TestDeriveHandleDoesNotLeakRawID(t *testing.T) {
	// The handle is a fixed-width hex digest regardless of input
	// sizes, so the raw id cannot be read back out of it.
	handle := deriveHandle("raw-association-id-from-the-card", "g1")
	if len(handle) != 64 {
		t.Errorf("handle length = %d, want 64 hex characters", len(handle))
	}
}
