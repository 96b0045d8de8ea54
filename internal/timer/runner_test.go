// ABOUTME: Tests for the timer Runner with a controllable ticker.
// ABOUTME: Verifies tick lifecycle, commands, and goroutine cleanup.
package timer

import (
	"context"
	"testing"
	"time"

	"github.com/harperreed/nowfocus/internal/motion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeTicker struct {
	c       chan time.Time
	stopped chan struct{}
}

func (f *fakeTicker) C() <-chan time.Time { return f.c }
func (f *fakeTicker) Stop()               { close(f.stopped) }

type runnerHarness struct {
	runner      *Runner
	events      chan motion.Orientation
	tickers     chan *fakeTicker
	transitions chan Transition
	cancel      context.CancelFunc
	done        chan error
}

func startRunner(t *testing.T, d time.Duration) *runnerHarness {
	t.Helper()

	m, err := NewMachine(d)
	require.NoError(t, err)

	h := &runnerHarness{
		events:      make(chan motion.Orientation),
		tickers:     make(chan *fakeTicker, 4),
		transitions: make(chan Transition, 64),
		done:        make(chan error, 1),
	}
	h.runner = NewRunner(m,
		WithTicker(func(time.Duration) Ticker {
			ft := &fakeTicker{c: make(chan time.Time), stopped: make(chan struct{})}
			h.tickers <- ft
			return ft
		}),
		WithHandler(func(tr Transition) { h.transitions <- tr }),
	)

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.done <- h.runner.Run(ctx, h.events) }()

	t.Cleanup(func() {
		h.cancel()
		<-h.done
	})
	return h
}

func (h *runnerHarness) next(t *testing.T) Transition {
	t.Helper()
	select {
	case tr := <-h.transitions:
		return tr
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for transition")
		return Transition{}
	}
}

func (h *runnerHarness) ticker(t *testing.T) *fakeTicker {
	t.Helper()
	select {
	case ft := <-h.tickers:
		return ft
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for ticker")
		return nil
	}
}

func TestRunnerFullSession(t *testing.T) {
	h := startRunner(t, 3*time.Second)

	h.events <- motion.FaceDown
	assert.Equal(t, EventStarted, h.next(t).Kind)

	ft := h.ticker(t)
	for i := 0; i < 3; i++ {
		ft.c <- time.Now()
		h.next(t)
	}
	assert.Equal(t, StateContinueFocusing, h.runner.Snapshot().State)

	ft.c <- time.Now()
	ft.c <- time.Now()
	assert.Equal(t, EventTick, h.next(t).Kind)
	assert.Equal(t, EventTick, h.next(t).Kind)

	h.events <- motion.FaceUp
	tr := h.next(t)
	require.Equal(t, EventFinished, tr.Kind)
	require.NotNil(t, tr.Result)
	assert.Equal(t, 5*time.Second, tr.Result.Total())

	select {
	case <-ft.stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("ticker was not stopped after the session finished")
	}

	changed, err := h.runner.Acknowledge(context.Background())
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, EventAcknowledged, h.next(t).Kind)
	assert.Equal(t, StateReady, h.runner.Snapshot().State)
}

func TestRunnerInterruptStopsTicker(t *testing.T) {
	h := startRunner(t, time.Minute)

	h.events <- motion.FaceDown
	h.next(t)
	ft := h.ticker(t)

	ft.c <- time.Now()
	h.next(t)

	h.events <- motion.FaceUp
	tr := h.next(t)
	assert.Equal(t, EventInterrupted, tr.Kind)
	assert.Nil(t, tr.Result)
	assert.Equal(t, StatePaused, h.runner.Snapshot().State)

	select {
	case <-ft.stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("ticker was not stopped after interruption")
	}

	// Resuming face-down starts a fresh ticker.
	h.events <- motion.FaceDown
	assert.Equal(t, EventStarted, h.next(t).Kind)
	h.ticker(t)
}

func TestRunnerOrientAndAbort(t *testing.T) {
	h := startRunner(t, time.Minute)
	ctx := context.Background()

	changed, err := h.runner.Orient(ctx, motion.FaceDown)
	require.NoError(t, err)
	assert.True(t, changed)
	h.next(t)
	h.ticker(t)

	changed, err = h.runner.Orient(ctx, motion.FaceDown)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = h.runner.Abort(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, EventAborted, h.next(t).Kind)
}

func TestRunnerStopped(t *testing.T) {
	h := startRunner(t, time.Minute)
	h.cancel()
	assert.ErrorIs(t, <-h.done, context.Canceled)
	h.done <- nil // keep cleanup from blocking

	_, err := h.runner.Acknowledge(context.Background())
	assert.ErrorIs(t, err, ErrRunnerStopped)
}
