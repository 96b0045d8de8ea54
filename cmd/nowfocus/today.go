// ABOUTME: CLI command listing today's focus sessions.
// ABOUTME: Shows the total, the sessions, and which presets were finished.
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/nowfocus/internal/focus"
	"github.com/harperreed/nowfocus/internal/storage"
	"github.com/spf13/cobra"
)

var todayCategory string

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's focus",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := focus.CategoryTarget(todayCategory)
		now := timeNow()

		sessions, err := focus.Today(repo, target, now)
		if err != nil {
			return fmt.Errorf("failed to list today's sessions: %w", err)
		}

		var total time.Duration
		for _, h := range sessions {
			total += h.Duration
		}
		bold.Printf("Today: %s in %d session(s)\n", storage.FormatDuration(total), len(sessions))

		habitNames := loadHabitNames()
		for _, h := range sessions {
			fmt.Printf("  %s %s %s\n",
				faint.Sprint(h.StartDate.Local().Format("15:04")),
				padRight(storage.FormatDuration(h.Duration), 8),
				sessionLabel(h, habitNames))
		}

		done, err := focus.PresetsCompletedToday(repo, target, now)
		if err != nil {
			return err
		}
		finished := make(map[time.Duration]bool, len(done))
		for _, d := range done {
			finished[d] = true
		}
		marks := make([]string, len(focus.Presets))
		for i, p := range focus.Presets {
			name := storage.FormatDuration(p)
			if finished[p] {
				marks[i] = color.GreenString("✓ %s", name)
			} else {
				marks[i] = faint.Sprintf("· %s", name)
			}
		}
		fmt.Printf("\nPresets: %s\n", strings.Join(marks, "  "))
		return nil
	},
}

func init() {
	todayCmd.Flags().StringVarP(&todayCategory, "category", "c", "", "only show this category")
	rootCmd.AddCommand(todayCmd)
}
