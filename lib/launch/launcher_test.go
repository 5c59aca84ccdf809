// Copyright 2026 The Devcade Authors
// SPDX-License-Identifier: Apache-2.0

package launch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/devcade/onboard/lib/clock"
	"github.com/devcade/onboard/lib/gamestore"
	"github.com/devcade/onboard/lib/schema"
	"github.com/devcade/onboard/lib/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeProvisioner struct {
	err   error
	calls int
}

func (p *fakeProvisioner) Ensure(ctx context.Context, id string) error {
	p.calls++
	return p.err
}

// fakeSandbox records what the registry held at spawn time, which is
// how the publish-before-spawn ordering is observed.
type fakeSandbox struct {
	registry       *Registry
	err            error
	calls          int
	currentAtSpawn schema.Game
}

func (s *fakeSandbox) Run(ctx context.Context, game schema.Game) error {
	s.calls++
	s.currentAtSpawn = s.registry.Current()
	return s.err
}

type fakeFlusher struct {
	err   error
	calls int
}

func (f *fakeFlusher) Flush(ctx context.Context) error {
	f.calls++
	return f.err
}

func testRecord() schema.Game {
	return schema.Game{ID: "g1", Name: "MyGame", Hash: "AQ=="}
}

type launcherFixture struct {
	launcher    *Launcher
	registry    *Registry
	provisioner *fakeProvisioner
	sandbox     *fakeSandbox
	flusher     *fakeFlusher
	clock       *clock.FakeClock
	store       *gamestore.Store
}

func newFixture(t *testing.T) *launcherFixture {
	t.Helper()
	registry := NewRegistry()
	fixture := &launcherFixture{
		registry:    registry,
		provisioner: &fakeProvisioner{},
		sandbox:     &fakeSandbox{registry: registry},
		flusher:     &fakeFlusher{},
		clock:       clock.Fake(time.Unix(1000, 0)),
		store:       gamestore.New(t.TempDir(), discardLogger()),
	}
	fixture.launcher = NewLauncher(LauncherConfig{
		Provisioner: fixture.provisioner,
		Store:       fixture.store,
		Sandbox:     fixture.sandbox,
		Registry:    registry,
		Flusher:     fixture.flusher,
		Clock:       fixture.clock,
		Logger:      discardLogger(),
	})
	if err := fixture.store.WriteGame(testRecord()); err != nil {
		t.Fatalf("seeding metadata: %v", err)
	}
	return fixture
}

// launchAsync runs Launch in a goroutine and releases the settle
// delay once the fake clock sees the waiter.
func launchAsync(t *testing.T, fixture *launcherFixture, id string) error {
	t.Helper()
	result := make(chan error, 1)
	go func() { result <- fixture.launcher.Launch(context.Background(), id) }()
	fixture.clock.WaitForWaiters(1)
	fixture.clock.Advance(time.Second)
	return testutil.RequireReceive(t, result, 5*time.Second, "Launch should return after the settle delay")
}

func TestLaunchPublishesBeforeSpawn(t *testing.T) {
	fixture := newFixture(t)

	if err := launchAsync(t, fixture, "g1"); err != nil {
		t.Fatalf("Launch: %v", err)
	}

	if fixture.sandbox.calls != 1 {
		t.Fatalf("sandbox runs = %d, want 1", fixture.sandbox.calls)
	}
	if fixture.sandbox.currentAtSpawn.ID != "g1" {
		t.Errorf("registry held %q at spawn, want g1 (published before spawn)",
			fixture.sandbox.currentAtSpawn.ID)
	}
	if fixture.registry.Current().ID != "g1" {
		t.Errorf("registry holds %q after exit, want g1", fixture.registry.Current().ID)
	}
}

func TestLaunchFlushesBeforeSpawn(t *testing.T) {
	fixture := newFixture(t)

	if err := launchAsync(t, fixture, "g1"); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if fixture.flusher.calls != 1 {
		t.Errorf("flush calls = %d, want 1", fixture.flusher.calls)
	}
}

func TestLaunchFlushFailureIsNotFatal(t *testing.T) {
	fixture := newFixture(t)
	fixture.flusher.err = fmt.Errorf("persistence service down")

	if err := launchAsync(t, fixture, "g1"); err != nil {
		t.Fatalf("flush failure must not fail the launch: %v", err)
	}
	if fixture.sandbox.calls != 1 {
		t.Errorf("sandbox runs = %d, want 1", fixture.sandbox.calls)
	}
}

func TestLaunchProvisionFailureIsFatal(t *testing.T) {
	fixture := newFixture(t)
	fixture.provisioner.err = fmt.Errorf("metadata unavailable")

	if err := fixture.launcher.Launch(context.Background(), "g1"); err == nil {
		t.Fatal("expected provisioning failure to propagate")
	}
	if fixture.sandbox.calls != 0 {
		t.Errorf("sandbox spawned despite failed provisioning")
	}
}

func TestLaunchRunFailureIsFatal(t *testing.T) {
	fixture := newFixture(t)
	fixture.sandbox.err = fmt.Errorf("spawn refused")

	if err := launchAsync(t, fixture, "g1"); err == nil {
		t.Fatal("expected run failure to propagate")
	}
}

func TestLaunchMissingMetadataIsFatal(t *testing.T) {
	fixture := newFixture(t)

	// Provisioner claims success but never persisted a record.
	if err := fixture.launcher.Launch(context.Background(), "unknown"); err == nil {
		t.Fatal("expected error when provisioned metadata cannot be read back")
	}
	if fixture.sandbox.calls != 0 {
		t.Error("sandbox spawned without authoritative metadata")
	}
}

func TestLaunchWaitsForSettle(t *testing.T) {
	fixture := newFixture(t)

	result := make(chan error, 1)
	go func() { result <- fixture.launcher.Launch(context.Background(), "g1") }()

	// The game has exited but the clock has not moved: Launch must
	// still be inside the settle delay.
	fixture.clock.WaitForWaiters(1)
	select {
	case err := <-result:
		t.Fatalf("Launch returned before the settle delay elapsed: %v", err)
	default:
	}

	fixture.clock.Advance(settleDelay)
	if err := testutil.RequireReceive(t, result, 5*time.Second, "Launch should return once settled"); err != nil {
		t.Fatalf("Launch: %v", err)
	}
}
