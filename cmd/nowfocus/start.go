// ABOUTME: CLI command that runs focus sessions from an orientation source.
// ABOUTME: Renders the countdown live and celebrates finished sessions.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/nowfocus/internal/focus"
	"github.com/harperreed/nowfocus/internal/logger"
	"github.com/harperreed/nowfocus/internal/motion"
	"github.com/harperreed/nowfocus/internal/storage"
	"github.com/harperreed/nowfocus/internal/timer"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	startDuration   time.Duration
	startCategory   string
	startHabit      string
	startSensorFile string
	startOnce       bool
)

var startCmd = &cobra.Command{
	Use:     "start",
	Aliases: []string{"s", "focus"},
	Short:   "Run a face-down focus session",
	Long: `Run focus sessions driven by device orientation.

ORIENTATION INPUT:

  By default one reading per line is read from stdin:
    down, d, face-down, 1    device is face down
    up, u, face-up, 0        device is face up

  With --sensor-file the file is watched instead and its content is read
  every time it changes.

SESSION RULES:

  face down          start the countdown
  face up early      pause; the session is discarded
  countdown ends     keep going, extra time is counted
  face up after end  the session is saved (duration + extra)

EXAMPLES:

  sensor-bridge | nowfocus start
  nowfocus start -d 50m -c writing
  nowfocus start --habit Guitar --once
  nowfocus start --sensor-file /run/phone/orientation`,
	RunE: func(cmd *cobra.Command, args []string) error {
		duration := startDuration
		if duration == 0 {
			duration = cfg.GetDuration()
		}

		category := startCategory
		if category == "" && startHabit == "" {
			if selected, ok, err := repo.GetPreference(storage.PrefSelectedCategory); err == nil && ok {
				category = selected
			}
		}
		target, err := sessionTarget(category, startHabit)
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		return runSessions(ctx, cancel, cmd.InOrStdin(), cmd.OutOrStdout(), duration, target)
	},
}

func runSessions(ctx context.Context, cancel context.CancelFunc, in io.Reader, out io.Writer, duration time.Duration, target focus.Target) error {
	r := &sessionRenderer{out: out, label: targetLabel(target)}

	feed := motion.NewFeed(0)
	var svc *focus.Service
	svc, err := focus.New(repo, focus.Options{
		Duration:     duration,
		Target:       target,
		Tracker:      tracker,
		Feed:         feed,
		OnTransition: r.transition,
		OnSummary: func(s focus.Summary) {
			r.summary(s)
			go func() {
				if startOnce {
					cancel()
					return
				}
				if _, err := svc.Acknowledge(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Debug("acknowledge after summary", "err", err)
				}
			}()
		},
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s %s for %s. Turn the device face down to begin.\n",
		color.CyanString("●"), bold.Sprint(r.label), storage.FormatDuration(duration))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return svc.Run(gctx, feed.Events())
	})
	g.Go(func() error {
		defer cancel()
		onError := func(err error) {
			fmt.Fprintf(out, "\n%s %v\n", color.YellowString("⚠"), err)
		}
		var err error
		if startSensorFile != "" {
			err = motion.WatchFile(gctx, startSensorFile, feed, onError)
		} else {
			err = motion.ReadLines(gctx, in, feed, onError)
		}
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	err = g.Wait()
	r.finish(svc.Snapshot())
	return err
}

type sessionRenderer struct {
	out   io.Writer
	label string
	live  bool
}

func (r *sessionRenderer) line(format string, args ...interface{}) {
	if r.live {
		fmt.Fprintln(r.out)
		r.live = false
	}
	fmt.Fprintf(r.out, format+"\n", args...)
}

func (r *sessionRenderer) transition(tr timer.Transition) {
	switch tr.Kind {
	case timer.EventStarted:
		r.line("%s Focusing on %s", color.GreenString("▶"), r.label)
	case timer.EventTick:
		clock := timer.FormatClock(tr.Remaining)
		if tr.To == timer.StateContinueFocusing {
			clock = color.MagentaString("+" + timer.FormatClock(tr.Extra))
		}
		fmt.Fprintf(r.out, "\r  %s ", clock)
		r.live = true
	case timer.EventCompleted:
		r.line("%s Time is up! Keep the device down to add extra focus.", color.MagentaString("★"))
	case timer.EventInterrupted:
		r.line("%s Picked up after %s. This session will not be saved.", color.YellowString("⏸"), storage.FormatDuration(tr.Elapsed))
		r.line("  Turn the device face down to start over.")
	case timer.EventAborted:
		r.line("%s Session aborted.", color.YellowString("✗"))
	}
}

func (r *sessionRenderer) summary(s focus.Summary) {
	if s.SaveErr != nil {
		r.line("%s Focused for %s but the session could not be saved: %v",
			color.RedString("✗"), storage.FormatDuration(s.Result.Total()), s.SaveErr)
		return
	}
	r.line("%s Focused for %s", color.GreenString("✓"), bold.Sprint(storage.FormatDuration(s.Result.Total())))
	if s.Result.Extra > 0 {
		r.line("  including %s of extra focus", storage.FormatDuration(s.Result.Extra))
	}
	r.line("  %s", faint.Sprint(shortID(s.History.ID)))
	if s.Streak > 0 {
		r.line("  🔥 %s in a row", pluralDays(s.Streak))
	}
}

func (r *sessionRenderer) finish(snap timer.Snapshot) {
	if snap.State.Running() {
		r.line("%s Stopped while focusing; the session was not saved.", color.YellowString("⚠"))
		return
	}
	if r.live {
		fmt.Fprintln(r.out)
		r.live = false
	}
}

func init() {
	startCmd.Flags().DurationVarP(&startDuration, "duration", "d", 0, "countdown length (default from config, 25m)")
	startCmd.Flags().StringVarP(&startCategory, "category", "c", "", "category to record the session under")
	startCmd.Flags().StringVar(&startHabit, "habit", "", "habit name or ID to record the session under")
	startCmd.Flags().StringVar(&startSensorFile, "sensor-file", "", "watch this file for orientation readings")
	startCmd.Flags().BoolVar(&startOnce, "once", false, "exit after the first finished session")
	rootCmd.AddCommand(startCmd)
}
