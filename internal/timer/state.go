// ABOUTME: Timer states, transition kinds, and session results.
// ABOUTME: Shared vocabulary between the machine, runner, and renderers.
package timer

import (
	"fmt"
	"time"
)

// TickInterval is the period of the countdown tick.
const TickInterval = time.Second

// State is the phase of a face-down focus session.
type State string

const (
	StateReady            State = "ready"
	StateFocusing         State = "focusing"
	StatePaused           State = "paused"
	StateContinueFocusing State = "continue_focusing"
	StateCompleted        State = "completed"
)

// Running reports whether the state needs the periodic tick.
func (s State) Running() bool {
	return s == StateFocusing || s == StateContinueFocusing
}

// EventKind names what happened during a transition.
type EventKind string

const (
	EventStarted      EventKind = "started"
	EventTick         EventKind = "tick"
	EventInterrupted  EventKind = "interrupted"
	EventCompleted    EventKind = "completed"
	EventFinished     EventKind = "finished"
	EventAcknowledged EventKind = "acknowledged"
	EventAborted      EventKind = "aborted"
)

// Transition describes one state change of the machine.
type Transition struct {
	Kind      EventKind
	From      State
	To        State
	Remaining time.Duration
	Extra     time.Duration
	// Elapsed is the focused time when a session was interrupted.
	Elapsed time.Duration
	Result  *Result
}

// Result is the outcome of a finished session.
type Result struct {
	StartedAt time.Time
	Planned   time.Duration
	Extra     time.Duration
}

// Total returns the configured duration plus the extra focus time.
func (r Result) Total() time.Duration {
	return r.Planned + r.Extra
}

// Snapshot is a read-only view of the machine.
type Snapshot struct {
	State     State         `json:"state"`
	Duration  time.Duration `json:"duration"`
	Remaining time.Duration `json:"remaining"`
	Extra     time.Duration `json:"extra"`
	StartedAt time.Time     `json:"started_at,omitempty"`
	Result    *Result       `json:"result,omitempty"`
}

// Display renders the remaining countdown as MM:SS, or the extra time with a
// leading plus sign once the countdown has finished.
func (s Snapshot) Display() string {
	if s.State == StateContinueFocusing || s.State == StateCompleted {
		return "+" + FormatClock(s.Extra)
	}
	return FormatClock(s.Remaining)
}

// FormatClock formats d as MM:SS, letting minutes exceed 59.
func FormatClock(d time.Duration) string {
	secs := int(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
