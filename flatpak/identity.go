// Copyright 2026 The Devcade Authors
// SPDX-License-Identifier: Apache-2.0

package flatpak

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/devcade/onboard/lib/schema"
)

// DefaultNamespace is the reverse-DNS prefix for generated game
// application identities.
const DefaultNamespace = "edu.rit.csh.devcade"

// AppID derives the flatpak application identity for a game. The
// identity is a pure function of the game's id and content hash:
//
//	<namespace>.generated_game.id_<normalized-id>.hash_<hex-hash>
//
// Hyphens in the game id are normalized to underscores because
// flatpak forbids '-' in interior identity components. The catalog's
// base64 content hash is re-encoded as hex for the same reason.
// Because the hash participates in the identity, two versions of the
// same game never collide — there is no separate version field.
func AppID(namespace string, game schema.Game) (string, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if game.ID == "" {
		return "", fmt.Errorf("deriving app id: game has no id")
	}

	hashBytes, err := base64.StdEncoding.DecodeString(game.Hash)
	if err != nil {
		return "", fmt.Errorf("deriving app id for %s: decoding content hash: %w", game.ID, err)
	}

	normalizedID := strings.ReplaceAll(game.ID, "-", "_")
	return fmt.Sprintf("%s.generated_game.id_%s.hash_%s",
		namespace, normalizedID, hex.EncodeToString(hashBytes)), nil
}
