// ABOUTME: CLI commands for the daily focus reminder.
// ABOUTME: Supports set, cancel, status, and a foreground delivery loop.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/nowfocus/internal/models"
	"github.com/harperreed/nowfocus/internal/notify"
	"github.com/spf13/cobra"
)

var (
	remindDays  string
	remindTitle string
	remindBody  string
)

var remindCmd = &cobra.Command{
	Use:     "remind",
	Aliases: []string{"reminder"},
	Short:   "Manage the daily focus reminder",
	Long: `Manage the daily reminder that nudges you to focus.

COMMANDS:

  set HH:MM   Schedule the reminder (every day unless --days is given)
  cancel      Turn the reminder off
  status      Show the reminder and when it fires next
  run         Deliver reminders in the foreground until Ctrl-C

DELIVERY:

  The notifier comes from config (console, desktop, or webhook):
    nowfocus config set notifier desktop

EXAMPLES:

  nowfocus remind set 09:00
  nowfocus remind set 18:30 --days mon,wed,fri --title "Deep work"`,
}

var remindSetCmd = &cobra.Command{
	Use:   "set <HH:MM>",
	Short: "Schedule the daily reminder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var days []time.Weekday
		if remindDays != "" {
			for _, s := range strings.Split(remindDays, ",") {
				d, err := models.ParseWeekday(s)
				if err != nil {
					return err
				}
				days = append(days, d)
			}
		}

		r := models.NewReminder(args[0], days...)
		if remindTitle != "" {
			r.Title = remindTitle
		}
		if remindBody != "" {
			r.Body = remindBody
		}

		center, err := newCenter()
		if err != nil {
			return err
		}
		if err := center.Schedule(cmd.Context(), r); err != nil {
			if errors.Is(err, notify.ErrPermissionDenied) {
				color.Yellow("⚠ Notifications are not allowed for the %s notifier.", center.Notifier().Name())
				fmt.Println(notify.PermissionHelp(center.Notifier()))
				return err
			}
			return fmt.Errorf("failed to schedule reminder: %w", err)
		}

		color.Green("✓ Reminder set for %s (%s)", r.Time, r.FormatWeekdays())
		if next, ok := notify.NextFire(r, timeNow()); ok {
			fmt.Printf("  %s\n", faint.Sprintf("next: %s", next.Format("Mon Jan 2 15:04")))
		}
		return nil
	},
}

var remindCancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Turn the reminder off",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		center, err := newCenter()
		if err != nil {
			return err
		}
		if err := center.Cancel(cmd.Context()); err != nil {
			return fmt.Errorf("failed to cancel reminder: %w", err)
		}
		color.Yellow("✗ Reminder off")
		return nil
	},
}

var remindStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the reminder",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		center, err := newCenter()
		if err != nil {
			return err
		}
		r, next, ok, err := center.Status()
		if err != nil {
			return err
		}
		if r == nil {
			fmt.Println("No reminder set. Add one with 'nowfocus remind set 09:00'.")
			return nil
		}

		state := color.GreenString("on")
		if !r.Enabled {
			state = color.YellowString("off")
		}
		fmt.Printf("Reminder: %s\n", state)
		fmt.Printf("  Time:   %s\n", r.Time)
		fmt.Printf("  Days:   %s\n", r.FormatWeekdays())
		fmt.Printf("  Title:  %s\n", r.Title)
		fmt.Printf("  Body:   %s\n", r.Body)
		fmt.Printf("  Via:    %s\n", center.Notifier().Name())
		if ok {
			fmt.Printf("  Next:   %s\n", next.Format("Mon Jan 2 15:04"))
		}
		return nil
	},
}

var remindRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Deliver reminders until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		center, err := newCenter()
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		fmt.Printf("Waiting for reminders via %s. Press Ctrl-C to stop.\n", center.Notifier().Name())
		if err := center.Run(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

func newCenter() (*notify.Center, error) {
	n, err := notify.New(cfg.GetNotifier(), cfg.WebhookURL, os.Stdout)
	if err != nil {
		return nil, err
	}
	return notify.NewCenter(repo, n), nil
}

func init() {
	remindSetCmd.Flags().StringVar(&remindDays, "days", "", "comma-separated weekdays, e.g. mon,wed,fri (default every day)")
	remindSetCmd.Flags().StringVar(&remindTitle, "title", "", "notification title")
	remindSetCmd.Flags().StringVar(&remindBody, "body", "", "notification body")

	remindCmd.AddCommand(remindSetCmd, remindCancelCmd, remindStatusCmd, remindRunCmd)
	rootCmd.AddCommand(remindCmd)
}
