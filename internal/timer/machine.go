// ABOUTME: Orientation-driven focus timer state machine.
// ABOUTME: Face-down starts the countdown, face-up pauses or finishes the session.
package timer

import (
	"errors"
	"time"
)

// ErrSessionActive is returned when reconfiguring a machine mid-session.
var ErrSessionActive = errors.New("a focus session is in progress")

// ErrInvalidDuration is returned for non-positive countdowns.
var ErrInvalidDuration = errors.New("duration must be positive")

// Machine holds the timer state. It is not safe for concurrent use; Runner
// serialises access to it.
type Machine struct {
	duration  time.Duration
	state     State
	remaining time.Duration
	extra     time.Duration
	startedAt time.Time
	result    *Result
	now       func() time.Time
}

// NewMachine creates a ready machine counting down from duration.
func NewMachine(duration time.Duration) (*Machine, error) {
	if duration <= 0 {
		return nil, ErrInvalidDuration
	}
	return &Machine{
		duration:  duration,
		state:     StateReady,
		remaining: duration,
		now:       time.Now,
	}, nil
}

// WithClock replaces the clock used to stamp session start dates.
func (m *Machine) WithClock(now func() time.Time) *Machine {
	m.now = now
	return m
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// SetDuration changes the countdown. Only allowed while ready.
func (m *Machine) SetDuration(d time.Duration) error {
	if d <= 0 {
		return ErrInvalidDuration
	}
	if m.state != StateReady {
		return ErrSessionActive
	}
	m.duration = d
	m.remaining = d
	return nil
}

// Snapshot returns a copy of the machine state.
func (m *Machine) Snapshot() Snapshot {
	s := Snapshot{
		State:     m.state,
		Duration:  m.duration,
		Remaining: m.remaining,
		Extra:     m.extra,
		StartedAt: m.startedAt,
	}
	if m.result != nil {
		r := *m.result
		s.Result = &r
	}
	return s
}

// FaceDown starts the countdown unless a session is running or its result
// has not been acknowledged yet.
func (m *Machine) FaceDown() (Transition, bool) {
	switch m.state {
	case StateReady, StatePaused:
		from := m.state
		m.reset()
		m.state = StateFocusing
		m.startedAt = m.now()
		return m.transition(EventStarted, from), true
	default:
		return Transition{}, false
	}
}

// FaceUp interrupts a running countdown or finishes the extra focus phase.
func (m *Machine) FaceUp() (Transition, bool) {
	switch m.state {
	case StateFocusing:
		elapsed := m.duration - m.remaining
		m.state = StatePaused
		m.remaining = m.duration
		tr := m.transition(EventInterrupted, StateFocusing)
		tr.Elapsed = elapsed
		return tr, true
	case StateContinueFocusing:
		m.result = &Result{
			StartedAt: m.startedAt,
			Planned:   m.duration,
			Extra:     m.extra,
		}
		m.state = StateCompleted
		tr := m.transition(EventFinished, StateContinueFocusing)
		r := *m.result
		tr.Result = &r
		return tr, true
	default:
		return Transition{}, false
	}
}

// Tick advances the session by one TickInterval.
func (m *Machine) Tick() (Transition, bool) {
	switch m.state {
	case StateFocusing:
		m.remaining -= TickInterval
		if m.remaining > 0 {
			return m.transition(EventTick, StateFocusing), true
		}
		m.remaining = 0
		m.extra = 0
		m.state = StateContinueFocusing
		return m.transition(EventCompleted, StateFocusing), true
	case StateContinueFocusing:
		m.extra += TickInterval
		return m.transition(EventTick, StateContinueFocusing), true
	default:
		return Transition{}, false
	}
}

// Acknowledge confirms the pause alert or the result and returns to ready.
func (m *Machine) Acknowledge() (Transition, bool) {
	switch m.state {
	case StatePaused, StateCompleted:
		from := m.state
		m.reset()
		return m.transition(EventAcknowledged, from), true
	default:
		return Transition{}, false
	}
}

// Abort discards any session in progress without producing a result.
func (m *Machine) Abort() (Transition, bool) {
	if m.state == StateReady {
		return Transition{}, false
	}
	from := m.state
	m.reset()
	return m.transition(EventAborted, from), true
}

func (m *Machine) reset() {
	m.state = StateReady
	m.remaining = m.duration
	m.extra = 0
	m.startedAt = time.Time{}
	m.result = nil
}

func (m *Machine) transition(kind EventKind, from State) Transition {
	return Transition{
		Kind:      kind,
		From:      from,
		To:        m.state,
		Remaining: m.remaining,
		Extra:     m.extra,
	}
}
