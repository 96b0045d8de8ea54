// ABOUTME: CLI command showing the consecutive-day focus streak.
// ABOUTME: Overall by default, or for one category or habit.
package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/harperreed/nowfocus/internal/focus"
	"github.com/harperreed/nowfocus/internal/storage"
	"github.com/spf13/cobra"
)

var (
	streakCategory string
	streakHabit    string
)

var streakCmd = &cobra.Command{
	Use:   "streak",
	Short: "Show your consecutive-day streak",
	Long: `Show how many days in a row you have focused.

A streak counts back from today, or from yesterday when you have not
focused yet today, and only looks at the last 30 days.

EXAMPLES:

  nowfocus streak
  nowfocus streak -c reading
  nowfocus streak --habit Guitar`,
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := resolveTarget(streakCategory, streakHabit)
		if err != nil {
			return err
		}

		now := timeNow()
		days, err := focus.CurrentStreak(repo, target, now)
		if err != nil {
			return err
		}
		best, err := focus.LongestStreak(repo, target, now.Location())
		if err != nil {
			return err
		}

		if target == (focus.Target{}) {
			if err := repo.SetPreference(storage.PrefConsecutiveDays, strconv.Itoa(days)); err != nil {
				return err
			}
			if err := repo.SetPreference(storage.PrefLastCheckedDate, now.Format("2006-01-02")); err != nil {
				return err
			}
		}

		if days == 0 {
			fmt.Printf("No streak for %s yet. Focus today to start one.\n", targetLabel(target))
		} else {
			fmt.Printf("🔥 %s in a row for %s\n", color.YellowString(pluralDays(days)), targetLabel(target))
		}
		fmt.Printf("  %s\n", faint.Sprintf("best: %s", pluralDays(best)))
		return nil
	},
}

func init() {
	streakCmd.Flags().StringVarP(&streakCategory, "category", "c", "", "only count this category")
	streakCmd.Flags().StringVar(&streakHabit, "habit", "", "only count this habit")
	rootCmd.AddCommand(streakCmd)
}
