// ABOUTME: Runner drives a Machine from orientation events and a one-second tick.
// ABOUTME: The tick only runs while a session is counting; handlers see every transition.
package timer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/harperreed/nowfocus/internal/motion"
)

// ErrRunnerStopped is returned when a command is sent after Run has returned.
var ErrRunnerStopped = errors.New("timer runner is not running")

// Ticker is the subset of time.Ticker the runner needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

// Handler receives transitions on the runner goroutine.
type Handler func(Transition)

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// NewTicker wraps time.NewTicker.
func NewTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

type command int

const (
	cmdAcknowledge command = iota
	cmdAbort
	cmdFaceDown
	cmdFaceUp
)

type request struct {
	cmd   command
	reply chan bool
}

// Runner owns a Machine and serialises all inputs through one goroutine.
type Runner struct {
	mu        sync.RWMutex
	machine   *Machine
	snapshot  Snapshot
	handlers  []Handler
	newTicker TickerFunc
	requests  chan request
	done      chan struct{}
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithTicker replaces the ticker factory.
func WithTicker(f TickerFunc) RunnerOption {
	return func(r *Runner) { r.newTicker = f }
}

// WithHandler adds a transition handler.
func WithHandler(h Handler) RunnerOption {
	return func(r *Runner) { r.handlers = append(r.handlers, h) }
}

// NewRunner creates a runner for m.
func NewRunner(m *Machine, opts ...RunnerOption) *Runner {
	r := &Runner{
		machine:   m,
		snapshot:  m.Snapshot(),
		newTicker: NewTicker,
		requests:  make(chan request),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Snapshot returns the latest machine state. Safe for concurrent use.
func (r *Runner) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

// Run processes orientation events, ticks and commands until ctx is done.
// It may only be called once.
func (r *Runner) Run(ctx context.Context, events <-chan motion.Orientation) error {
	defer close(r.done)

	var ticker Ticker
	var tick <-chan time.Time
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case o, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if o.IsFaceDown() {
				r.step(r.machine.FaceDown)
			} else {
				r.step(r.machine.FaceUp)
			}
		case req := <-r.requests:
			req.reply <- r.step(r.commandFunc(req.cmd))
		case <-tick:
			r.step(r.machine.Tick)
		}

		running := r.machine.State().Running()
		switch {
		case running && ticker == nil:
			ticker = r.newTicker(TickInterval)
			tick = ticker.C()
		case !running && ticker != nil:
			ticker.Stop()
			ticker = nil
			tick = nil
		}
	}
}

// Acknowledge confirms a pause alert or a finished result.
// It reports whether the machine changed state.
func (r *Runner) Acknowledge(ctx context.Context) (bool, error) {
	return r.send(ctx, cmdAcknowledge)
}

// Abort discards the current session.
func (r *Runner) Abort(ctx context.Context) (bool, error) {
	return r.send(ctx, cmdAbort)
}

// Orient applies an orientation reading directly, bypassing any feed.
func (r *Runner) Orient(ctx context.Context, o motion.Orientation) (bool, error) {
	if o.IsFaceDown() {
		return r.send(ctx, cmdFaceDown)
	}
	return r.send(ctx, cmdFaceUp)
}

func (r *Runner) send(ctx context.Context, cmd command) (bool, error) {
	req := request{cmd: cmd, reply: make(chan bool, 1)}
	select {
	case r.requests <- req:
	case <-r.done:
		return false, ErrRunnerStopped
	case <-ctx.Done():
		return false, ctx.Err()
	}
	return <-req.reply, nil
}

func (r *Runner) commandFunc(cmd command) func() (Transition, bool) {
	switch cmd {
	case cmdAcknowledge:
		return r.machine.Acknowledge
	case cmdFaceDown:
		return r.machine.FaceDown
	case cmdFaceUp:
		return r.machine.FaceUp
	default:
		return r.machine.Abort
	}
}

func (r *Runner) step(apply func() (Transition, bool)) bool {
	tr, changed := apply()
	if !changed {
		return false
	}

	r.mu.Lock()
	r.snapshot = r.machine.Snapshot()
	r.mu.Unlock()

	for _, h := range r.handlers {
		h(tr)
	}
	return true
}
