// ABOUTME: Focus session service tying the timer runner to storage and analytics.
// ABOUTME: Persists finished sessions, refreshes the streak, and reports a summary.
package focus

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/harperreed/nowfocus/internal/analytics"
	"github.com/harperreed/nowfocus/internal/logger"
	"github.com/harperreed/nowfocus/internal/models"
	"github.com/harperreed/nowfocus/internal/motion"
	"github.com/harperreed/nowfocus/internal/storage"
	"github.com/harperreed/nowfocus/internal/timer"
)

// ErrSessionActive is returned when the target changes mid-session.
var ErrSessionActive = timer.ErrSessionActive

// Summary is delivered to the renderer once a session is finished.
type Summary struct {
	History *models.FocusHistory
	Result  timer.Result
	Streak  int
	// SaveErr is set when the session could not be persisted.
	SaveErr error
}

// Options configures a Service. Feed, when set, is reset after an
// acknowledge or abort so the next face-down reading always starts a session.
type Options struct {
	Duration     time.Duration
	Target       Target
	Tracker      *analytics.Tracker
	Now          func() time.Time
	Ticker       timer.TickerFunc
	Feed         *motion.Feed
	OnTransition func(timer.Transition)
	OnSummary    func(Summary)
}

// Service runs focus sessions for one category or habit.
type Service struct {
	repo    storage.Repository
	tracker *analytics.Tracker
	runner  *timer.Runner
	feed    *motion.Feed
	now     func() time.Time

	onTransition func(timer.Transition)
	onSummary    func(Summary)

	mu          sync.RWMutex
	target      Target
	lastSummary *Summary
}

// New creates a Service. A habit target must refer to an existing habit.
func New(repo storage.Repository, opts Options) (*Service, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Target.HabitID != nil {
		if _, err := repo.GetHabit(opts.Target.HabitID.String()); err != nil {
			return nil, fmt.Errorf("load habit: %w", err)
		}
	}

	machine, err := timer.NewMachine(opts.Duration)
	if err != nil {
		return nil, err
	}
	machine.WithClock(opts.Now)

	s := &Service{
		repo:         repo,
		tracker:      opts.Tracker,
		feed:         opts.Feed,
		now:          opts.Now,
		onTransition: opts.OnTransition,
		onSummary:    opts.OnSummary,
		target:       opts.Target,
	}

	runnerOpts := []timer.RunnerOption{timer.WithHandler(s.handle)}
	if opts.Ticker != nil {
		runnerOpts = append(runnerOpts, timer.WithTicker(opts.Ticker))
	}
	s.runner = timer.NewRunner(machine, runnerOpts...)
	return s, nil
}

// Run drives sessions from events until ctx is done.
func (s *Service) Run(ctx context.Context, events <-chan motion.Orientation) error {
	err := s.runner.Run(ctx, events)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Snapshot returns the current timer state.
func (s *Service) Snapshot() timer.Snapshot {
	return s.runner.Snapshot()
}

// Orient feeds one orientation reading to the timer.
func (s *Service) Orient(ctx context.Context, o motion.Orientation) (bool, error) {
	return s.runner.Orient(ctx, o)
}

// Acknowledge dismisses the pause alert or the finished-session summary.
func (s *Service) Acknowledge(ctx context.Context) (bool, error) {
	return s.resetFeed(s.runner.Acknowledge(ctx))
}

// Abort drops the current session without saving it.
func (s *Service) Abort(ctx context.Context) (bool, error) {
	return s.resetFeed(s.runner.Abort(ctx))
}

// resetFeed forgets the last reading once the timer is back to ready.
// Readings published while the result was on screen were dropped by the
// machine but still recorded by the feed.
func (s *Service) resetFeed(changed bool, err error) (bool, error) {
	if changed && err == nil && s.feed != nil {
		s.feed.Reset()
	}
	return changed, err
}

// Target returns what the next finished session is recorded against.
func (s *Service) Target() Target {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.target
}

// SelectCategory switches the session category and remembers the choice.
func (s *Service) SelectCategory(name string) error {
	if s.Snapshot().State.Running() {
		return ErrSessionActive
	}
	if err := SelectCategory(s.repo, s.tracker, name); err != nil {
		return err
	}

	s.mu.Lock()
	s.target = CategoryTarget(name)
	s.mu.Unlock()
	return nil
}

// LastSummary returns the most recent finished session, if any.
func (s *Service) LastSummary() (Summary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastSummary == nil {
		return Summary{}, false
	}
	return *s.lastSummary, true
}

func (s *Service) handle(tr timer.Transition) {
	category := s.Target().Label()

	switch tr.Kind {
	case timer.EventStarted:
		if tr.From == timer.StatePaused {
			s.tracker.Log(analytics.EventTimerResume, analytics.Params{analytics.ParamCategory: category})
		}
		s.tracker.Log(analytics.EventTimerStart, analytics.Params{analytics.ParamCategory: category})
		s.tracker.Log(analytics.EventFocusSessionStart, analytics.Params{analytics.ParamCategory: category})
	case timer.EventInterrupted:
		s.tracker.Log(analytics.EventTimerPause, analytics.Params{analytics.ParamCategory: category})
		s.tracker.Log(analytics.EventTimerCancel, analytics.Params{
			analytics.ParamDuration: seconds(tr.Elapsed),
			analytics.ParamCategory: category,
		})
	case timer.EventCompleted:
		s.tracker.Log(analytics.EventTimerComplete, analytics.Params{
			analytics.ParamDuration: seconds(s.Snapshot().Duration),
			analytics.ParamCategory: category,
		})
	case timer.EventAborted:
		if tr.From.Running() {
			s.tracker.Log(analytics.EventTimerCancel, analytics.Params{analytics.ParamCategory: category})
		}
	case timer.EventFinished:
		if tr.Result != nil {
			s.finish(*tr.Result)
		}
	}

	if s.onTransition != nil {
		s.onTransition(tr)
	}
}

func (s *Service) finish(result timer.Result) {
	target := s.Target()
	h := models.NewFocusHistory(result.StartedAt, result.Total()).WithPlanned(result.Planned)
	switch {
	case target.HabitID != nil:
		h.WithHabit(*target.HabitID)
	case target.Category != nil:
		h.WithCategory(*target.Category)
	}

	summary := Summary{History: h, Result: result}
	if err := s.repo.CreateHistory(h); err != nil {
		logger.Error("failed to save focus session", "id", h.ID, "err", err)
		summary.SaveErr = err
	} else {
		logger.Info("focus session saved", "id", h.ID, "duration", h.Duration, "category", h.CategoryName())
	}

	now := s.now()
	days, err := CurrentStreak(s.repo, Target{}, now)
	if err != nil {
		logger.Warn("failed to compute streak", "err", err)
	} else {
		summary.Streak = days
		s.cacheStreak(days, now)
	}

	s.tracker.Log(analytics.EventFocusSessionComplete, analytics.Params{
		analytics.ParamDuration: seconds(h.Duration),
		analytics.ParamCategory: target.Label(),
	})
	if summary.Streak > 0 {
		s.tracker.Log(analytics.EventConsecutiveDaysAchieved, analytics.Params{
			analytics.ParamConsecutiveDays: summary.Streak,
		})
	}

	s.mu.Lock()
	s.lastSummary = &summary
	s.mu.Unlock()

	if s.onSummary != nil {
		s.onSummary(summary)
	}
}

func (s *Service) cacheStreak(days int, now time.Time) {
	if err := s.repo.SetPreference(storage.PrefConsecutiveDays, strconv.Itoa(days)); err != nil {
		logger.Warn("failed to cache streak", "err", err)
		return
	}
	if err := s.repo.SetPreference(storage.PrefLastCheckedDate, now.Format("2006-01-02")); err != nil {
		logger.Warn("failed to cache streak date", "err", err)
	}
}

func seconds(d time.Duration) int64 {
	return int64(d / time.Second)
}
