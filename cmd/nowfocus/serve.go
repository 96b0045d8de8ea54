// ABOUTME: CLI command running the HTTP API, timer, and reminder loop together.
// ABOUTME: Orientation readings arrive over HTTP or from a watched sensor file.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harperreed/nowfocus/internal/api"
	"github.com/harperreed/nowfocus/internal/focus"
	"github.com/harperreed/nowfocus/internal/logger"
	"github.com/harperreed/nowfocus/internal/motion"
	"github.com/harperreed/nowfocus/internal/storage"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	serveAddr       string
	serveDuration   time.Duration
	serveCategory   string
	serveHabit      string
	serveSensorFile string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and timer service",
	Long: `Run nowfocus as a local service.

The timer runs in the background and is driven by orientation readings
POSTed to the API (or read from --sensor-file). The daily reminder is
delivered from the same process.

ENDPOINTS:

  GET  /health                 liveness
  POST /orientation            {"orientation": "down"} or {"face_down": true}
  GET  /session                timer state, last reading, last finished session
  POST /session/acknowledge    confirm an alert or result
  POST /session/abort          discard the current session
  PUT  /session/category       {"category": "writing"} between sessions
  GET  /streak                 ?category= or ?habit=
  GET  /history                ?category= &habit= &since= &limit=
  GET  /history/{id}
  GET  /habits
  GET  /categories

EXAMPLES:

  nowfocus serve
  curl -X POST localhost:7315/orientation -d '{"orientation":"down"}'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		duration := serveDuration
		if duration == 0 {
			duration = cfg.GetDuration()
		}
		category := serveCategory
		if category == "" && serveHabit == "" {
			if selected, ok, err := repo.GetPreference(storage.PrefSelectedCategory); err == nil && ok {
				category = selected
			}
		}
		target, err := sessionTarget(category, serveHabit)
		if err != nil {
			return err
		}

		feed := motion.NewFeed(8)
		svc, err := focus.New(repo, focus.Options{
			Duration: duration,
			Target:   target,
			Tracker:  tracker,
			Feed:     feed,
			OnSummary: func(s focus.Summary) {
				if s.SaveErr != nil {
					return
				}
				logger.Info("session saved", "id", s.History.ID, "duration", s.History.Duration, "streak", s.Streak)
			},
		})
		if err != nil {
			return err
		}
		center, err := newCenter()
		if err != nil {
			return err
		}

		addr := serveAddr
		if addr == "" {
			addr = cfg.GetListenAddr()
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		router := api.NewRouter(api.NewServer(repo, svc, feed))

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return svc.Run(gctx, feed.Events())
		})
		g.Go(func() error {
			return api.ListenAndServe(gctx, addr, router)
		})
		g.Go(func() error {
			return center.Run(gctx)
		})
		if serveSensorFile != "" {
			g.Go(func() error {
				return motion.WatchFile(gctx, serveSensorFile, feed, func(err error) {
					logger.Warn("sensor reading rejected", "err", err)
				})
			})
		}

		fmt.Printf("Serving %s on http://%s (Ctrl-C to stop)\n", targetLabel(target), addr)
		err = g.Wait()
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, 127.0.0.1:7315)")
	serveCmd.Flags().DurationVarP(&serveDuration, "duration", "d", 0, "countdown length (default from config, 25m)")
	serveCmd.Flags().StringVarP(&serveCategory, "category", "c", "", "category to record sessions under")
	serveCmd.Flags().StringVar(&serveHabit, "habit", "", "habit name or ID to record sessions under")
	serveCmd.Flags().StringVar(&serveSensorFile, "sensor-file", "", "also watch this file for orientation readings")
	rootCmd.AddCommand(serveCmd)
}
