// ABOUTME: CLI commands for managing habits.
// ABOUTME: Supports add, list, show, edit, and delete subcommands.
package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/nowfocus/internal/focus"
	"github.com/harperreed/nowfocus/internal/models"
	"github.com/harperreed/nowfocus/internal/storage"
	"github.com/spf13/cobra"
)

var (
	habitReason  string
	habitNewName string
)

var habitCmd = &cobra.Command{
	Use:   "habit",
	Short: "Manage habits",
	Long: `Track habits you want to build with focus sessions.

A habit is a named activity with an optional reason. Sessions started with
'nowfocus start --habit NAME' are recorded against the habit.

COMMANDS:

  add      Create a habit
  list     List habits with their total focus time
  show     Show a habit and its sessions
  edit     Rename a habit or change its reason
  delete   Delete a habit and all of its sessions

Habit names are unique. Commands accept the name, the ID, or an ID prefix.`,
}

var habitAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a habit",
	Long: `Add a habit.

Examples:
  nowfocus habit add Guitar
  nowfocus habit add "Read papers" --reason "Stay current"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h := models.NewHabit(args[0]).WithReason(habitReason)

		if err := repo.CreateHabit(h); err != nil {
			return habitSaveError(err)
		}

		color.Green("✓ Added habit %s", h.Name)
		fmt.Printf("  ID: %s\n", shortID(h.ID))
		return nil
	},
}

var habitListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List habits",
	RunE: func(cmd *cobra.Command, args []string) error {
		habits, err := repo.ListHabits()
		if err != nil {
			return fmt.Errorf("failed to list habits: %w", err)
		}

		if len(habits) == 0 {
			fmt.Println("No habits found.")
			return nil
		}

		now := timeNow()
		for _, h := range habits {
			full, err := repo.GetHabitWithHistory(h.ID.String())
			if err != nil {
				return fmt.Errorf("failed to load habit %s: %w", h.Name, err)
			}
			days, err := focus.CurrentStreak(repo, focus.HabitTarget(h.ID), now)
			if err != nil {
				return err
			}
			streak := ""
			if days > 0 {
				streak = color.YellowString(" 🔥%d", days)
			}
			fmt.Printf("%s %s %s %s%s\n",
				faint.Sprint(shortID(h.ID)),
				padRight(truncate(h.Name, 24), 24),
				padRight(storage.FormatDuration(full.TotalDuration()), 8),
				faint.Sprintf("%d session(s)", len(full.History)),
				streak)
		}

		return nil
	},
}

var habitShowCmd = &cobra.Command{
	Use:   "show <name|id>",
	Short: "Show habit details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := repo.GetHabitWithHistory(args[0])
		if err != nil {
			return fmt.Errorf("failed to get habit: %w", err)
		}

		days, err := focus.CurrentStreak(repo, focus.HabitTarget(h.ID), timeNow())
		if err != nil {
			return err
		}

		fmt.Printf("Habit: %s\n", h.Name)
		fmt.Printf("ID: %s\n", shortID(h.ID))
		if h.Reason != nil {
			fmt.Printf("Reason: %s\n", *h.Reason)
		}
		fmt.Printf("Created: %s\n", h.CreatedAt.Local().Format("2006-01-02"))
		fmt.Printf("Total focus: %s\n", storage.FormatDuration(h.TotalDuration()))
		fmt.Printf("Streak: %s\n", pluralDays(days))

		if len(h.History) > 0 {
			fmt.Println("\nSessions:")
			for _, fh := range h.History {
				fmt.Printf("  %s %s %s\n",
					faint.Sprint(shortID(fh.ID)),
					fh.StartDate.Local().Format("2006-01-02 15:04"),
					storage.FormatDuration(fh.Duration))
			}
		}

		return nil
	},
}

var habitEditCmd = &cobra.Command{
	Use:   "edit <name|id>",
	Short: "Rename a habit or change its reason",
	Long: `Edit a habit.

Examples:
  nowfocus habit edit Guitar --name "Bass guitar"
  nowfocus habit edit Guitar --reason ""`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("name") && !cmd.Flags().Changed("reason") {
			return fmt.Errorf("nothing to change: use --name or --reason")
		}

		h, err := repo.GetHabit(args[0])
		if err != nil {
			return fmt.Errorf("failed to get habit: %w", err)
		}

		if cmd.Flags().Changed("name") {
			h.Name = habitNewName
		}
		if cmd.Flags().Changed("reason") {
			h.WithReason(habitReason)
		}

		if err := repo.UpdateHabit(h); err != nil {
			return habitSaveError(err)
		}

		color.Green("✓ Updated habit %s", h.Name)
		return nil
	},
}

var habitDeleteCmd = &cobra.Command{
	Use:     "delete <name|id>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a habit and its sessions",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := repo.GetHabitWithHistory(args[0])
		if err != nil {
			return fmt.Errorf("habit not found: %s", args[0])
		}

		if err := repo.DeleteHabit(h.ID.String()); err != nil {
			return fmt.Errorf("failed to delete habit: %w", err)
		}

		color.Yellow("✗ Deleted habit %s", h.Name)
		if n := len(h.History); n > 0 {
			fmt.Printf("  and %d session(s)\n", n)
		}
		return nil
	},
}

// habitSaveError turns storage failures into messages a person can act on.
func habitSaveError(err error) error {
	var saveErr *storage.HabitSaveError
	switch {
	case errors.Is(err, storage.ErrDuplicateHabitName) && errors.As(err, &saveErr):
		return fmt.Errorf("a habit named %q already exists; pick another name", saveErr.Name)
	case errors.Is(err, models.ErrEmptyHabitName):
		return fmt.Errorf("habit name cannot be empty")
	default:
		return fmt.Errorf("failed to save habit: %w", err)
	}
}

func init() {
	habitAddCmd.Flags().StringVar(&habitReason, "reason", "", "why this habit matters")
	habitEditCmd.Flags().StringVar(&habitNewName, "name", "", "new habit name")
	habitEditCmd.Flags().StringVar(&habitReason, "reason", "", "new reason (empty clears it)")

	habitCmd.AddCommand(habitAddCmd, habitListCmd, habitShowCmd, habitEditCmd, habitDeleteCmd)
	rootCmd.AddCommand(habitCmd)
}
