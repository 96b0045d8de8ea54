// ABOUTME: Root Cobra command for the nowfocus CLI.
// ABOUTME: Loads config and opens storage, logging, and analytics via PersistentPre/PostRunE.
package main

import (
	"errors"
	"fmt"

	"github.com/harperreed/nowfocus/internal/analytics"
	"github.com/harperreed/nowfocus/internal/config"
	"github.com/harperreed/nowfocus/internal/logger"
	"github.com/harperreed/nowfocus/internal/storage"
	"github.com/spf13/cobra"
)

var (
	cfg     *config.Config
	repo    storage.Repository
	tracker *analytics.Tracker

	debugFlag bool
)

// skipStorage marks commands that only need the config file.
const skipStorage = "skip-storage"

var rootCmd = &cobra.Command{
	Use:   "nowfocus",
	Short: "Face-down focus timer",
	Long: `nowfocus is a focus timer you start by turning your phone face down.

HOW IT WORKS:

  Turn the device face down and the countdown starts. Pick it up before the
  time is over and the session is paused and thrown away. Leave it down past
  zero and extra focus time keeps counting until you pick it up, then the
  whole session is saved to your history.

  Orientation readings come from a sensor bridge: pipe "down"/"up" lines into
  'nowfocus start', point --sensor-file at a file the bridge rewrites, or POST
  them to the HTTP API started by 'nowfocus serve'.

QUICK START:

  $ nowfocus start                         # Read down/up lines from stdin
  $ nowfocus start -c writing -d 50m       # 50 minute writing session
  $ nowfocus today                         # Sessions finished today
  $ nowfocus streak                        # Consecutive days with focus

HABITS AND CATEGORIES:

  $ nowfocus habit add "Guitar" --reason "Play in a band"
  $ nowfocus start --habit Guitar
  $ nowfocus category add writing
  $ nowfocus history stats --days 30

REMINDERS:

  $ nowfocus remind set 09:00 --days mon,tue,wed,thu,fri
  $ nowfocus remind run                    # Deliver reminders until Ctrl-C

MCP INTEGRATION:

  Run 'nowfocus mcp' to start the Model Context Protocol server for use with
  Claude Desktop or other MCP-compatible AI assistants. Add to your Claude
  config:

  {
    "mcpServers": {
      "nowfocus": { "command": "nowfocus", "args": ["mcp"] }
    }
  }

DATA STORAGE:

  History is stored in SQLite at ~/.local/share/nowfocus/nowfocus.db by
  default. Switch to plain markdown files with:
    nowfocus config set backend markdown`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if _, ok := cmd.Annotations[skipStorage]; ok {
			return nil
		}

		if err := logger.Init(logger.Config{
			Debug:   cfg.Debug || debugFlag,
			DataDir: cfg.GetDataDir(),
		}); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		repo, err = cfg.OpenStorage()
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}

		tracker, err = openTracker(cfg, debugFlag)
		if err != nil {
			logger.Warn("analytics disabled", "err", err)
		}
		tracker.Log(analytics.EventAppLaunch, analytics.Params{
			analytics.ParamScreenName: cmd.CommandPath(),
		})
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeAll()
	},
}

// openTracker builds the analytics tracker. It returns nil when analytics
// are turned off; a nil tracker drops every event.
func openTracker(c *config.Config, debug bool) (*analytics.Tracker, error) {
	if !c.AnalyticsEnabled() {
		return nil, nil
	}
	sinks := []analytics.Sink{analytics.LogSink{}}
	fileSink, err := analytics.NewFileSink(c.AnalyticsPath())
	if err != nil {
		return analytics.NewTracker(debug || c.Debug, sinks...), err
	}
	sinks = append(sinks, fileSink)
	return analytics.NewTracker(debug || c.Debug, sinks...), nil
}

func closeAll() error {
	var errs []error
	if tracker != nil {
		errs = append(errs, tracker.Close())
		tracker = nil
	}
	if repo != nil {
		errs = append(errs, repo.Close())
		repo = nil
	}
	return errors.Join(errs...)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "verbose logging to stderr")
}
