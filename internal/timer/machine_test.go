// ABOUTME: Tests for the orientation-driven timer state machine.
// ABOUTME: Covers countdown completion, interruption, extra focus, and acknowledgement.
package timer

import (
	"testing"
	"time"
)

var testStart = time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

func newTestMachine(t *testing.T, d time.Duration) *Machine {
	t.Helper()
	m, err := NewMachine(d)
	if err != nil {
		t.Fatalf("NewMachine failed: %v", err)
	}
	return m.WithClock(func() time.Time { return testStart })
}

func TestNewMachineRejectsNonPositiveDuration(t *testing.T) {
	for _, d := range []time.Duration{0, -time.Second} {
		if _, err := NewMachine(d); err != ErrInvalidDuration {
			t.Errorf("NewMachine(%v) error = %v, want ErrInvalidDuration", d, err)
		}
	}
}

func TestCountdownCompletesAfterNTicks(t *testing.T) {
	const n = 5
	m := newTestMachine(t, n*time.Second)

	tr, ok := m.FaceDown()
	if !ok || tr.Kind != EventStarted || tr.To != StateFocusing {
		t.Fatalf("FaceDown() = %+v, %v; want started/focusing", tr, ok)
	}

	for i := 1; i < n; i++ {
		tr, _ = m.Tick()
		if tr.Kind != EventTick || m.State() != StateFocusing {
			t.Fatalf("tick %d: got %+v in state %s", i, tr, m.State())
		}
		if want := time.Duration(n-i) * time.Second; tr.Remaining != want {
			t.Errorf("tick %d: remaining = %v, want %v", i, tr.Remaining, want)
		}
	}

	tr, _ = m.Tick()
	if tr.Kind != EventCompleted {
		t.Errorf("tick %d kind = %s, want completed", n, tr.Kind)
	}
	if m.State() != StateContinueFocusing {
		t.Errorf("state after %d ticks = %s, want continue_focusing", n, m.State())
	}
}

func TestFaceUpBeforeCompletionPauses(t *testing.T) {
	m := newTestMachine(t, 10*time.Second)
	m.FaceDown()
	m.Tick()
	m.Tick()
	m.Tick()

	tr, ok := m.FaceUp()
	if !ok {
		t.Fatal("FaceUp() did not change state")
	}
	if tr.Kind != EventInterrupted || tr.To != StatePaused {
		t.Errorf("FaceUp() = %+v, want interrupted/paused", tr)
	}
	if tr.Result != nil {
		t.Error("interrupted session must not produce a result")
	}
	if tr.Elapsed != 3*time.Second {
		t.Errorf("Elapsed = %v, want 3s", tr.Elapsed)
	}
	if tr.Remaining != 10*time.Second {
		t.Errorf("Remaining = %v, want reset to 10s", tr.Remaining)
	}

	// Ticks while paused are ignored.
	if _, ok := m.Tick(); ok {
		t.Error("Tick() while paused should be a no-op")
	}
}

func TestFaceDownFromPausedRestarts(t *testing.T) {
	m := newTestMachine(t, 3*time.Second)
	m.FaceDown()
	m.Tick()
	m.FaceUp()

	tr, ok := m.FaceDown()
	if !ok || tr.From != StatePaused || tr.To != StateFocusing {
		t.Fatalf("FaceDown() = %+v, %v; want paused->focusing", tr, ok)
	}
	if tr.Remaining != 3*time.Second {
		t.Errorf("Remaining = %v, want full countdown", tr.Remaining)
	}
}

func TestExtraFocusAddsToDuration(t *testing.T) {
	const extra = 7
	m := newTestMachine(t, 2*time.Second)
	m.FaceDown()
	m.Tick()
	m.Tick()

	for i := 0; i < extra; i++ {
		m.Tick()
	}

	tr, ok := m.FaceUp()
	if !ok || tr.Kind != EventFinished {
		t.Fatalf("FaceUp() = %+v, %v; want finished", tr, ok)
	}
	if tr.Result == nil {
		t.Fatal("finished transition has no result")
	}
	if got, want := tr.Result.Total(), (2+extra)*time.Second; got != want {
		t.Errorf("Total() = %v, want %v", got, want)
	}
	if tr.Result.Extra != extra*time.Second {
		t.Errorf("Extra = %v, want %ds", tr.Result.Extra, extra)
	}
	if !tr.Result.StartedAt.Equal(testStart) {
		t.Errorf("StartedAt = %v, want %v", tr.Result.StartedAt, testStart)
	}
	if m.State() != StateCompleted {
		t.Errorf("state = %s, want completed", m.State())
	}
}

func TestCompletedIgnoresFaceDownUntilAcknowledged(t *testing.T) {
	m := newTestMachine(t, time.Second)
	m.FaceDown()
	m.Tick()
	m.FaceUp()

	if _, ok := m.FaceDown(); ok {
		t.Error("FaceDown() while completed should be a no-op")
	}
	if snap := m.Snapshot(); snap.Result == nil {
		t.Error("snapshot should carry the result while completed")
	}

	tr, ok := m.Acknowledge()
	if !ok || tr.From != StateCompleted || tr.To != StateReady {
		t.Fatalf("Acknowledge() = %+v, %v; want completed->ready", tr, ok)
	}
	if snap := m.Snapshot(); snap.Result != nil || snap.Extra != 0 || snap.Remaining != time.Second {
		t.Errorf("machine not reset: %+v", snap)
	}
}

func TestNoOpInputs(t *testing.T) {
	m := newTestMachine(t, time.Minute)

	if _, ok := m.FaceUp(); ok {
		t.Error("FaceUp() while ready should be a no-op")
	}
	if _, ok := m.Tick(); ok {
		t.Error("Tick() while ready should be a no-op")
	}
	if _, ok := m.Acknowledge(); ok {
		t.Error("Acknowledge() while ready should be a no-op")
	}
	if _, ok := m.Abort(); ok {
		t.Error("Abort() while ready should be a no-op")
	}

	m.FaceDown()
	if _, ok := m.FaceDown(); ok {
		t.Error("FaceDown() while focusing should be a no-op")
	}
}

func TestAbortDiscardsSession(t *testing.T) {
	m := newTestMachine(t, time.Second)
	m.FaceDown()
	m.Tick()
	m.Tick()

	tr, ok := m.Abort()
	if !ok || tr.Kind != EventAborted || tr.Result != nil {
		t.Fatalf("Abort() = %+v, %v", tr, ok)
	}
	if m.State() != StateReady {
		t.Errorf("state = %s, want ready", m.State())
	}
}

func TestSetDuration(t *testing.T) {
	m := newTestMachine(t, time.Minute)
	if err := m.SetDuration(10 * time.Minute); err != nil {
		t.Fatalf("SetDuration failed: %v", err)
	}
	if snap := m.Snapshot(); snap.Remaining != 10*time.Minute {
		t.Errorf("Remaining = %v, want 10m", snap.Remaining)
	}

	m.FaceDown()
	if err := m.SetDuration(time.Minute); err != ErrSessionActive {
		t.Errorf("SetDuration while focusing = %v, want ErrSessionActive", err)
	}
}

func TestSnapshotDisplay(t *testing.T) {
	tests := []struct {
		snap Snapshot
		want string
	}{
		{Snapshot{State: StateReady, Remaining: 25 * time.Minute}, "25:00"},
		{Snapshot{State: StateFocusing, Remaining: 61 * time.Second}, "01:01"},
		{Snapshot{State: StateContinueFocusing, Extra: 95 * time.Second}, "+01:35"},
		{Snapshot{State: StateFocusing, Remaining: 90 * time.Minute}, "90:00"},
	}

	for _, tt := range tests {
		if got := tt.snap.Display(); got != tt.want {
			t.Errorf("Display() = %q, want %q", got, tt.want)
		}
	}
}
