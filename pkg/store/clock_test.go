package store_test

import (
	"testing"
	"time"

	"github.com/goliatone/go-loform/pkg/store"
	"github.com/goliatone/go-loform/pkg/testsupport"
)

func TestDebouncer_ArmResetsWindow(t *testing.T) {
	clock := testsupport.NewManualClock()
	fired := 0
	d := store.NewDebouncer(clock, 100*time.Millisecond, func() { fired++ })

	d.Arm()
	clock.Advance(90 * time.Millisecond)
	d.Arm()
	clock.Advance(90 * time.Millisecond)
	if fired != 0 {
		t.Fatalf("fired before quiescence")
	}
	if !d.Pending() {
		t.Fatalf("expected pending run")
	}
	clock.Advance(10 * time.Millisecond)
	if fired != 1 {
		t.Fatalf("fired = %d, want 1", fired)
	}
	if d.Pending() {
		t.Fatalf("run still pending after firing")
	}
	if clock.Pending() != 0 {
		t.Fatalf("superseded timers left behind: %d", clock.Pending())
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	clock := testsupport.NewManualClock()
	fired := 0
	d := store.NewDebouncer(clock, 100*time.Millisecond, func() { fired++ })

	if d.Cancel() {
		t.Fatalf("cancel reported a pending run on an idle debouncer")
	}
	d.Arm()
	if !d.Cancel() {
		t.Fatalf("cancel did not report the pending run")
	}
	clock.Advance(time.Second)
	if fired != 0 {
		t.Fatalf("cancelled run fired")
	}
}
