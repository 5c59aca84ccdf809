// Copyright 2026 The Devcade Authors
// SPDX-License-Identifier: Apache-2.0

// Package persist talks to the save-data persistence service. The
// service owns every game's save state behind a Unix socket that is
// also bound into each sandbox; the runtime's only direct use of it is
// asking for a flush before a launch, so a crash mid-game never loses
// the previous session's saves.
package persist

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/devcade/onboard/lib/codec"
)

const flushTimeout = 5 * time.Second

// Client issues one-shot requests to the persistence service. Each
// request dials a fresh connection; the service is request-scoped and
// the runtime flushes rarely.
type Client struct {
	socketPath string
	logger     *slog.Logger
}

// NewClient returns a client for the persistence socket.
func NewClient(socketPath string, logger *slog.Logger) *Client {
	return &Client{socketPath: socketPath, logger: logger}
}

type flushRequest struct {
	Op string `cbor:"op"`
}

type flushResponse struct {
	OK    bool   `cbor:"ok"`
	Error string `cbor:"error"`
}

// Flush asks the service to sync pending save state to disk and waits
// for the acknowledgement. Callers treat failure as non-fatal; the
// launcher logs it and proceeds.
func (c *Client) Flush(ctx context.Context) error {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("dialing persistence socket %s: %w", c.socketPath, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(flushTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return fmt.Errorf("setting persistence deadline: %w", err)
	}

	if err := codec.NewEncoder(conn).Encode(flushRequest{Op: "flush"}); err != nil {
		return fmt.Errorf("sending flush request: %w", err)
	}

	var resp flushResponse
	if err := codec.NewDecoder(conn).Decode(&resp); err != nil {
		return fmt.Errorf("reading flush response: %w", err)
	}
	if !resp.OK {
		return fmt.Errorf("persistence flush rejected: %s", resp.Error)
	}
	return nil
}
