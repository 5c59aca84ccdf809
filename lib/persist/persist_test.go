// Copyright 2026 The Devcade Authors
// SPDX-License-Identifier: Apache-2.0

package persist

import (
	"context"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"testing"

	"github.com/devcade/onboard/lib/codec"
	"github.com/devcade/onboard/lib/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// serveFlush runs a one-shot persistence service that answers every
// flush with the given response.
func serveFlush(t *testing.T, socketPath string, response flushResponse) {
	t.Helper()
	socket, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatalf("listening on %s: %v", socketPath, err)
	}
	t.Cleanup(func() { socket.Close() })

	go func() {
		for {
			conn, err := socket.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()
				var req flushRequest
				if err := codec.NewDecoder(conn).Decode(&req); err != nil {
					return
				}
				if req.Op != "flush" {
					codec.NewEncoder(conn).Encode(flushResponse{Error: "unknown op"})
					return
				}
				codec.NewEncoder(conn).Encode(response)
			}(conn)
		}
	}()
}

func TestFlush(t *testing.T) {
	socketPath := filepath.Join(testutil.SocketDir(t), "persistence.sock")
	serveFlush(t, socketPath, flushResponse{OK: true})

	client := NewClient(socketPath, discardLogger())
	if err := client.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

func TestFlushRejected(t *testing.T) {
	socketPath := filepath.Join(testutil.SocketDir(t), "persistence.sock")
	serveFlush(t, socketPath, flushResponse{OK: false, Error: "disk full"})

	client := NewClient(socketPath, discardLogger())
	err := client.Flush(context.Background())
	if err == nil {
		t.Fatal("expected error for a rejected flush")
	}
}

func TestFlushServiceDown(t *testing.T) {
	socketPath := filepath.Join(testutil.SocketDir(t), "absent.sock")

	client := NewClient(socketPath, discardLogger())
	if err := client.Flush(context.Background()); err == nil {
		t.Fatal("expected dial failure when the service is down")
	}
}
