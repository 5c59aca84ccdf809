// Copyright 2026 The Devcade Authors
// SPDX-License-Identifier: Apache-2.0

package nfc

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// handleDomainKey is the 32-byte BLAKE3 key for handle derivation.
// Keyed hashing domain-separates handles from every other digest in
// the system. The bytes are the ASCII domain name zero-padded to 32,
// readable in hex dumps without weakening the construction.
var handleDomainKey = [32]byte{
	'd', 'e', 'v', 'c', 'a', 'd', 'e', '.', 'n', 'f', 'c', '.',
	'h', 'a', 'n', 'd', 'l', 'e', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// deriveHandle computes the pseudonymous handle for a raw association
// id under a game. Hashing the raw id together with the game
// identifier makes the same physical card yield unlinkable handles
// across games; the one-way digest keeps the raw id from ever leaving
// the broker.
func deriveHandle(rawID, gameID string) string {
	hasher, err := blake3.NewKeyed(handleDomainKey[:])
	if err != nil {
		panic("nfc: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write([]byte(rawID))
	hasher.Write([]byte{':'})
	hasher.Write([]byte(gameID))

	var digest [32]byte
	hasher.Sum(digest[:0])
	return hex.EncodeToString(digest[:])
}
