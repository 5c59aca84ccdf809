// Copyright 2026 The Devcade Authors
// SPDX-License-Identifier: Apache-2.0

// Package gatekeeper implements the broker's Listener contract against
// the gatekeeper card daemon. The daemon owns the physical serial
// reader and exposes it on a Unix socket speaking length-free CBOR
// message streams: one request map in, one response map out, over a
// connection held open for the life of the listener.
package gatekeeper

import (
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/devcade/onboard/lib/codec"
	"github.com/devcade/onboard/lib/nfc"
)

// requestTimeout bounds each request/response exchange with the
// daemon. The reader itself answers in tens of milliseconds; a stuck
// daemon should surface as an error, not a wedged broker worker.
const requestTimeout = 5 * time.Second

type request struct {
	Op    string `cbor:"op"`
	RawID string `cbor:"raw_id,omitempty"`
}

type pollResponse struct {
	Present bool   `cbor:"present"`
	RawID   string `cbor:"raw_id"`
	Error   string `cbor:"error"`
}

type userResponse struct {
	OK    bool           `cbor:"ok"`
	User  map[string]any `cbor:"user"`
	Error string         `cbor:"error"`
}

// Open returns an OpenFunc that dials the daemon socket. The broker
// calls it on each idle-to-listening transition and closes the
// returned listener on idle teardown, so the daemon connection is held
// only while identification traffic is flowing.
func Open(socketPath string, logger *slog.Logger) nfc.OpenFunc {
	return func() (nfc.Listener, error) {
		conn, err := net.Dial("unix", socketPath)
		if err != nil {
			return nil, fmt.Errorf("dialing gatekeeper socket %s: %w", socketPath, err)
		}
		return &listener{
			conn:    conn,
			encoder: codec.NewEncoder(conn),
			decoder: codec.NewDecoder(conn),
			logger:  logger,
		}, nil
	}
}

type listener struct {
	conn    net.Conn
	encoder *codec.Encoder
	decoder *codec.Decoder
	logger  *slog.Logger
}

// Poll asks the daemon for the currently-present card.
func (l *listener) Poll() (string, error) {
	var resp pollResponse
	if err := l.roundTrip(request{Op: "poll"}, &resp); err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", fmt.Errorf("gatekeeper poll: %s", resp.Error)
	}
	if !resp.Present {
		return "", nil
	}
	return resp.RawID, nil
}

// FetchUser asks the daemon for the identification payload of a raw
// association id.
func (l *listener) FetchUser(rawID string) (map[string]any, error) {
	var resp userResponse
	if err := l.roundTrip(request{Op: "user", RawID: rawID}, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("gatekeeper user lookup: %s", resp.Error)
	}
	if !resp.OK {
		return nil, fmt.Errorf("gatekeeper user lookup: no record for association")
	}
	return map[string]any{"user": resp.User}, nil
}

func (l *listener) Close() error {
	return l.conn.Close()
}

func (l *listener) roundTrip(req request, resp any) error {
	if err := l.conn.SetDeadline(time.Now().Add(requestTimeout)); err != nil {
		return fmt.Errorf("setting gatekeeper deadline: %w", err)
	}
	if err := l.encoder.Encode(req); err != nil {
		return fmt.Errorf("sending gatekeeper request: %w", err)
	}
	if err := l.decoder.Decode(resp); err != nil {
		return fmt.Errorf("reading gatekeeper response: %w", err)
	}
	return nil
}
