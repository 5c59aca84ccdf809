// Copyright 2026 The Devcade Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

func TestFakeClockAfterFiresOnAdvance(t *testing.T) {
	fake := Fake(time.Unix(1000, 0))
	waiter := fake.After(10 * time.Second)

	select {
	case <-waiter:
		t.Fatal("waiter fired before the clock advanced")
	default:
	}

	fake.Advance(9 * time.Second)
	select {
	case <-waiter:
		t.Fatal("waiter fired before its deadline")
	default:
	}

	fake.Advance(time.Second)
	select {
	case fired := <-waiter:
		if want := time.Unix(1010, 0); !fired.Equal(want) {
			t.Errorf("fired at %v, want %v", fired, want)
		}
	default:
		t.Fatal("waiter did not fire at its deadline")
	}
}

func TestFakeClockImmediateAfter(t *testing.T) {
	fake := Fake(time.Unix(1000, 0))
	select {
	case <-fake.After(0):
	default:
		t.Error("non-positive duration should fire immediately")
	}
}

func TestFakeClockSleepUnblocksOnAdvance(t *testing.T) {
	fake := Fake(time.Unix(1000, 0))
	done := make(chan struct{})
	go func() {
		fake.Sleep(5 * time.Second)
		close(done)
	}()

	fake.WaitForWaiters(1)
	fake.Advance(5 * time.Second)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Sleep did not return after the clock advanced")
	}
}

func TestFakeClockWaitForWaiters(t *testing.T) {
	fake := Fake(time.Unix(1000, 0))
	go fake.After(time.Minute)
	go fake.After(time.Minute)

	fake.WaitForWaiters(2)
	if got := fake.PendingWaiters(); got != 2 {
		t.Errorf("PendingWaiters = %d, want 2", got)
	}
}

func TestFakeClockAdvanceClearsFiredWaiters(t *testing.T) {
	fake := Fake(time.Unix(1000, 0))
	fake.After(time.Second)
	fake.After(time.Hour)

	fake.Advance(time.Minute)
	if got := fake.PendingWaiters(); got != 1 {
		t.Errorf("PendingWaiters after Advance = %d, want only the unexpired one", got)
	}
}

func TestRealClockNow(t *testing.T) {
	before := time.Now()
	got := Real().Now()
	after := time.Now()
	if got.Before(before) || got.After(after) {
		t.Errorf("Real().Now() = %v outside [%v, %v]", got, before, after)
	}
}
