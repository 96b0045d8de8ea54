// ABOUTME: CLI commands for browsing focus history.
// ABOUTME: Supports list, show, delete, stats, and calendar subcommands.
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/nowfocus/internal/focus"
	"github.com/harperreed/nowfocus/internal/models"
	"github.com/harperreed/nowfocus/internal/storage"
	"github.com/spf13/cobra"
)

var (
	historyCategory string
	historyHabit    string
	historyLimit    int
	historySince    string
	statsDays       int
	calendarMonth   string
)

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"h", "hist"},
	Short:   "Browse focus history",
	Long: `Browse the focus sessions you have finished.

COMMANDS:

  list       List sessions, newest first
  show       Show one session
  delete     Delete a session
  stats      Totals, extra time, and streaks
  calendar   Daily focus totals for a month

Sessions are created by 'nowfocus start' when a session is finished.
The ID column is an 8-character prefix usable with show and delete.`,
}

var historyListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List focus sessions",
	Long: `List focus sessions, newest first.

OUTPUT FORMAT:

  Each line shows: ID  STARTED  DURATION  CATEGORY/HABIT  (+EXTRA)

EXAMPLES:

  nowfocus history list                    # Last 20 sessions
  nowfocus history list -c reading         # Only reading
  nowfocus history list --habit Guitar     # Only one habit
  nowfocus history list --since 2025-03-01 -n 100`,
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := resolveTarget(historyCategory, historyHabit)
		if err != nil {
			return err
		}

		filter := storage.HistoryFilter{
			Category: target.Category,
			HabitID:  target.HabitID,
			Limit:    historyLimit,
		}
		if historySince != "" {
			since, err := parseTime(historySince)
			if err != nil {
				return fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", historySince)
			}
			filter.Since = since
		}

		history, err := repo.ListHistory(filter)
		if err != nil {
			return fmt.Errorf("failed to list history: %w", err)
		}

		if len(history) == 0 {
			fmt.Println("No focus sessions found.")
			return nil
		}

		habitNames := loadHabitNames()
		for _, h := range history {
			extra := ""
			if h.Extra() > 0 {
				extra = color.MagentaString(" (+%s)", storage.FormatDuration(h.Extra()))
			}
			fmt.Printf("%s %s %s %s%s\n",
				faint.Sprint(shortID(h.ID)),
				faint.Sprint(h.StartDate.Local().Format("2006-01-02 15:04")),
				padRight(storage.FormatDuration(h.Duration), 8),
				truncate(sessionLabel(h, habitNames), 30),
				extra)
		}

		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show session details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := repo.GetHistory(args[0])
		if err != nil {
			return fmt.Errorf("failed to get session: %w", err)
		}

		fmt.Printf("Session: %s\n", shortID(h.ID))
		fmt.Printf("Started: %s\n", h.StartDate.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Duration: %s\n", storage.FormatDuration(h.Duration))
		fmt.Printf("Planned: %s\n", storage.FormatDuration(h.Planned))
		if h.Extra() > 0 {
			fmt.Printf("Extra: %s\n", storage.FormatDuration(h.Extra()))
		}
		if h.Category != nil {
			fmt.Printf("Category: %s\n", *h.Category)
		}
		if h.HabitID != nil {
			name := shortID(*h.HabitID)
			if habit, err := repo.GetHabit(h.HabitID.String()); err == nil {
				name = habit.Name
			}
			fmt.Printf("Habit: %s\n", name)
		}

		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a focus session",
	Long: `Delete a focus session by its ID or ID prefix.

CAUTION:

  This permanently deletes the session. There is no undo.
  If the prefix matches multiple sessions, an error is returned.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := repo.GetHistory(args[0])
		if err != nil {
			return fmt.Errorf("session not found: %s", args[0])
		}

		if err := repo.DeleteHistory(h.ID.String()); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}

		color.Yellow("✗ Deleted session")
		fmt.Printf("  %s %s %s\n",
			faint.Sprint(shortID(h.ID)),
			h.StartDate.Local().Format("2006-01-02 15:04"),
			storage.FormatDuration(h.Duration))

		return nil
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show focus statistics",
	Long: `Show totals, extra time, category breakdown, and streaks.

EXAMPLES:

  nowfocus history stats               # Last 7 days
  nowfocus history stats --days 30     # Last 30 days
  nowfocus history stats --days 0      # All time
  nowfocus history stats -c reading`,
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := resolveTarget(historyCategory, historyHabit)
		if err != nil {
			return err
		}

		now := timeNow()
		var since time.Time
		period := "all time"
		if statsDays > 0 {
			since = now.AddDate(0, 0, -statsDays)
			period = "last " + pluralDays(statsDays)
		}

		stats, err := focus.ComputeStats(repo, target, since, now)
		if err != nil {
			return err
		}

		bold.Printf("Focus stats for %s (%s)\n", targetLabel(target), period)
		fmt.Printf("  Sessions:        %d\n", stats.Sessions)
		fmt.Printf("  Total focus:     %s\n", storage.FormatDuration(stats.Total))
		fmt.Printf("  Extra focus:     %s\n", storage.FormatDuration(stats.Extra))
		fmt.Printf("  Longest session: %s\n", storage.FormatDuration(stats.Longest))
		fmt.Printf("  Current streak:  %s\n", pluralDays(stats.Streak))
		fmt.Printf("  Best streak:     %s\n", pluralDays(stats.BestStreak))

		if len(stats.Categories) > 0 {
			fmt.Println()
			bold.Println("By category")
			for _, c := range stats.Categories {
				name := c.Category
				if name == "" {
					name = "uncategorized"
				}
				fmt.Printf("  %s %s %s\n", padRight(name, 16), padRight(storage.FormatDuration(c.Total), 8),
					faint.Sprintf("%d session(s)", c.Sessions))
			}
		}

		return nil
	},
}

var historyCalendarCmd = &cobra.Command{
	Use:     "calendar",
	Aliases: []string{"cal"},
	Short:   "Show daily focus totals for a month",
	Long: `Show a month calendar with the focus time of each day.

EXAMPLES:

  nowfocus history calendar                  # This month
  nowfocus history calendar --month 2025-02  # February 2025`,
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := resolveTarget(historyCategory, historyHabit)
		if err != nil {
			return err
		}

		month := timeNow()
		if calendarMonth != "" {
			month, err = time.ParseInLocation("2006-01", calendarMonth, time.Local)
			if err != nil {
				return fmt.Errorf("invalid month: %s (use YYYY-MM)", calendarMonth)
			}
		}

		days, err := focus.MonthTotals(repo, target, month)
		if err != nil {
			return err
		}

		fmt.Print(renderCalendar(days))
		return nil
	},
}

// renderCalendar lays out day totals as a Monday-first month grid.
func renderCalendar(days []focus.DayTotal) string {
	if len(days) == 0 {
		return ""
	}

	var sb strings.Builder
	first := days[0].Date
	sb.WriteString(bold.Sprintf("%s\n", first.Format("January 2006")))
	sb.WriteString("  Mon    Tue    Wed    Thu    Fri    Sat    Sun\n")

	offset := (int(first.Weekday()) + 6) % 7
	sb.WriteString(strings.Repeat("       ", offset))

	var total time.Duration
	for i, d := range days {
		total += d.Total
		cell := fmt.Sprintf("%2d", d.Date.Day())
		if d.Total > 0 {
			cell += fmt.Sprintf(" %3d", int(d.Total/time.Minute))
			cell = color.GreenString("%s", cell)
		} else {
			cell += "    "
		}
		sb.WriteString(" " + cell + " ")
		if (offset+i+1)%7 == 0 {
			sb.WriteString("\n")
		}
	}
	if (offset+len(days))%7 != 0 {
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("\nTotal: %s (minutes per day shown)\n", storage.FormatDuration(total)))
	return sb.String()
}

func loadHabitNames() map[string]string {
	names := make(map[string]string)
	habits, err := repo.ListHabits()
	if err != nil {
		return names
	}
	for _, h := range habits {
		names[h.ID.String()] = h.Name
	}
	return names
}

func sessionLabel(h *models.FocusHistory, habitNames map[string]string) string {
	if h.HabitID != nil {
		if name, ok := habitNames[h.HabitID.String()]; ok {
			return "habit:" + name
		}
		return "habit:" + shortID(*h.HabitID)
	}
	if h.Category != nil {
		return *h.Category
	}
	return "-"
}

func init() {
	for _, c := range []*cobra.Command{historyListCmd, historyStatsCmd, historyCalendarCmd} {
		c.Flags().StringVarP(&historyCategory, "category", "c", "", "filter by category")
		c.Flags().StringVar(&historyHabit, "habit", "", "filter by habit name or ID")
	}
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "max number of results")
	historyListCmd.Flags().StringVar(&historySince, "since", "", "only sessions since date (YYYY-MM-DD)")
	historyStatsCmd.Flags().IntVar(&statsDays, "days", 7, "number of days to include (0 = all time)")
	historyCalendarCmd.Flags().StringVar(&calendarMonth, "month", "", "month to show (YYYY-MM, default current)")

	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyDeleteCmd, historyStatsCmd, historyCalendarCmd)
	rootCmd.AddCommand(historyCmd)
}
