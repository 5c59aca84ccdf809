// Copyright 2026 The Devcade Authors
// SPDX-License-Identifier: Apache-2.0

package nfc

// ringCapacity bounds the association cache. Eight entries covers the
// realistic number of distinct cards seen during one cabinet session;
// the oldest entry is evicted first when full.
const ringCapacity = 8

type association struct {
	handle string
	rawID  string
	gameID string
}

// associationRing is a fixed-capacity cache of (handle, raw id)
// pairs. Entries expire only by eviction, never by time — in
// particular, idle teardown of the hardware connection does not clear
// the ring, so a handle issued before a teardown still resolves after
// the hardware is reopened.
//
// Only the broker worker touches the ring; it needs no locking.
type associationRing struct {
	entries []association
	next    int
}

func newAssociationRing() *associationRing {
	return &associationRing{}
}

// insert records a new association, evicting the oldest entry when the
// ring is full.
func (r *associationRing) insert(handle, rawID, gameID string) {
	entry := association{handle: handle, rawID: rawID, gameID: gameID}
	if len(r.entries) < ringCapacity {
		r.entries = append(r.entries, entry)
		return
	}
	r.entries[r.next] = entry
	r.next = (r.next + 1) % ringCapacity
}

// byRawID returns the handle previously issued for a raw association
// id under a specific game, if it is still cached. The game scoping
// matters: the same card polled under a different game must get a
// fresh, unlinkable handle, not the cached one.
func (r *associationRing) byRawID(rawID, gameID string) (string, bool) {
	for _, entry := range r.entries {
		if entry.rawID == rawID && entry.gameID == gameID {
			return entry.handle, true
		}
	}
	return "", false
}

// byHandle returns the raw association id behind a previously issued
// handle, if it is still cached.
func (r *associationRing) byHandle(handle string) (string, bool) {
	for _, entry := range r.entries {
		if entry.handle == handle {
			return entry.rawID, true
		}
	}
	return "", false
}
