// Copyright 2026 The Devcade Authors
// SPDX-License-Identifier: Apache-2.0

package nfc

// Listener is the hardware identification contract. Implementations
// wrap a stateful, blocking card reader (serial device or the
// gatekeeper daemon socket) and are therefore only ever touched from
// the broker's worker goroutine.
type Listener interface {
	// Poll checks for a currently-present card and returns its raw
	// association id. An empty id with a nil error means no card is
	// present.
	Poll() (rawID string, err error)

	// FetchUser fetches the identification payload for a raw
	// association id. The payload is JSON-like; the broker extracts
	// the nested "user" object and discards the rest.
	FetchUser(rawID string) (map[string]any, error)

	// Close releases the hardware connection.
	Close() error
}

// OpenFunc opens a hardware listener. The broker calls it each time it
// transitions from idle to listening, so the device is held only while
// requests are flowing.
type OpenFunc func() (Listener, error)
