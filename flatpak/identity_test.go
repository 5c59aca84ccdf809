// Copyright 2026 The Devcade Authors
// SPDX-License-Identifier: Apache-2.0

package flatpak

import (
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/devcade/onboard/lib/schema"
)

func testGame(id string, hashBytes []byte) schema.Game {
	return schema.Game{
		ID:   id,
		Name: "Test Game",
		Hash: base64.StdEncoding.EncodeToString(hashBytes),
	}
}

func TestAppIDFormat(t *testing.T) {
	hashBytes := []byte{0xde, 0xad, 0xbe, 0xef}
	game := testGame("my-cool-game", hashBytes)

	got, err := AppID("edu.rit.csh.devcade", game)
	if err != nil {
		t.Fatalf("AppID: %v", err)
	}
	want := "edu.rit.csh.devcade.generated_game.id_my_cool_game.hash_" + hex.EncodeToString(hashBytes)
	if got != want {
		t.Errorf("AppID = %q, want %q", got, want)
	}
}

func TestAppIDIsDeterministic(t *testing.T) {
	game := testGame("g1", []byte{1, 2, 3})

	first, err := AppID("", game)
	if err != nil {
		t.Fatalf("AppID: %v", err)
	}
	second, err := AppID("", game)
	if err != nil {
		t.Fatalf("AppID: %v", err)
	}
	if first != second {
		t.Errorf("identical inputs produced different identities: %q vs %q", first, second)
	}
}

func TestAppIDDistinguishesVersions(t *testing.T) {
	// Changing either the id or the hash must change the identity;
	// the hash component is the implicit version field.
	base := testGame("g1", []byte{1, 2, 3})
	differentID := testGame("g2", []byte{1, 2, 3})
	differentHash := testGame("g1", []byte{9, 9, 9})

	baseIdentity, err := AppID("", base)
	if err != nil {
		t.Fatalf("AppID: %v", err)
	}
	idIdentity, err := AppID("", differentID)
	if err != nil {
		t.Fatalf("AppID: %v", err)
	}
	hashIdentity, err := AppID("", differentHash)
	if err != nil {
		t.Fatalf("AppID: %v", err)
	}

	if baseIdentity == idIdentity {
		t.Error("different game ids produced the same identity")
	}
	if baseIdentity == hashIdentity {
		t.Error("different content hashes produced the same identity")
	}
}

func TestAppIDDefaultNamespace(t *testing.T) {
	game := testGame("g1", []byte{1})
	got, err := AppID("", game)
	if err != nil {
		t.Fatalf("AppID: %v", err)
	}
	want := DefaultNamespace + ".generated_game.id_g1.hash_01"
	if got != want {
		t.Errorf("AppID = %q, want %q", got, want)
	}
}

func TestAppIDRejectsBadInput(t *testing.T) {
	if _, err := AppID("", schema.Game{Hash: "AQ=="}); err == nil {
		t.Error("expected error for game with no id")
	}
	if _, err := AppID("", schema.Game{ID: "g1", Hash: "not base64!!!"}); err == nil {
		t.Error("expected error for undecodable content hash")
	}
}
