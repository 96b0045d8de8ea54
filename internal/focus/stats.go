// ABOUTME: Read-side focus statistics built on the repository.
// ABOUTME: Streaks, presets finished today, calendar totals, and category totals.
package focus

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/nowfocus/internal/models"
	"github.com/harperreed/nowfocus/internal/storage"
	"github.com/harperreed/nowfocus/internal/streak"
)

// Presets are the countdown lengths offered by the timer picker.
var Presets = []time.Duration{
	1 * time.Minute,
	5 * time.Minute,
	10 * time.Minute,
	15 * time.Minute,
	30 * time.Minute,
	50 * time.Minute,
}

// Target selects the sessions a statistic covers. The zero value means all.
type Target struct {
	Category *string
	HabitID  *uuid.UUID
}

// CategoryTarget returns a target for one category; an empty name means all.
func CategoryTarget(name string) Target {
	if name == "" {
		return Target{}
	}
	return Target{Category: &name}
}

// HabitTarget returns a target for one habit.
func HabitTarget(id uuid.UUID) Target {
	return Target{HabitID: &id}
}

// Label names the target for analytics and display.
func (t Target) Label() string {
	switch {
	case t.Category != nil:
		return *t.Category
	case t.HabitID != nil:
		return "habit:" + t.HabitID.String()[:8]
	default:
		return ""
	}
}

func (t Target) filter() storage.HistoryFilter {
	return storage.HistoryFilter{Category: t.Category, HabitID: t.HabitID}
}

// CurrentStreak returns the consecutive-day streak for target as of now.
func CurrentStreak(repo storage.Repository, target Target, now time.Time) (int, error) {
	f := target.filter()
	f.Since = streak.WindowStart(now)
	history, err := repo.ListHistory(f)
	if err != nil {
		return 0, fmt.Errorf("load streak history: %w", err)
	}
	return streak.Current(startDates(history), now), nil
}

// LongestStreak returns the longest run of consecutive days for target.
func LongestStreak(repo storage.Repository, target Target, loc *time.Location) (int, error) {
	history, err := repo.ListHistory(target.filter())
	if err != nil {
		return 0, fmt.Errorf("load history: %w", err)
	}
	return streak.Longest(startDates(history), loc), nil
}

func startDates(history []*models.FocusHistory) []time.Time {
	dates := make([]time.Time, len(history))
	for i, h := range history {
		dates[i] = h.StartDate
	}
	return dates
}

// Today returns the sessions that started on now's calendar day.
func Today(repo storage.Repository, target Target, now time.Time) ([]*models.FocusHistory, error) {
	start := streak.Day(now, now.Location())
	f := target.filter()
	f.Since = start
	f.Until = start.AddDate(0, 0, 1)
	return repo.ListHistory(f)
}

// PresetsCompletedToday returns the presets used by sessions finished today.
func PresetsCompletedToday(repo storage.Repository, target Target, now time.Time) ([]time.Duration, error) {
	today, err := Today(repo, target, now)
	if err != nil {
		return nil, err
	}

	used := make(map[time.Duration]bool)
	for _, h := range today {
		used[h.Planned] = true
	}
	var done []time.Duration
	for _, p := range Presets {
		if used[p] {
			done = append(done, p)
		}
	}
	return done, nil
}

// DayTotal is the focus time for one calendar day.
type DayTotal struct {
	Date     time.Time     `json:"date"`
	Total    time.Duration `json:"total"`
	Sessions int           `json:"sessions"`
}

// MonthTotals returns one entry per day of the month containing month, in
// month's location.
func MonthTotals(repo storage.Repository, target Target, month time.Time) ([]DayTotal, error) {
	loc := month.Location()
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, loc)
	next := first.AddDate(0, 1, 0)

	f := target.filter()
	f.Since = first
	f.Until = next
	history, err := repo.ListHistory(f)
	if err != nil {
		return nil, fmt.Errorf("load month history: %w", err)
	}

	var days []DayTotal
	for d := first; d.Before(next); d = d.AddDate(0, 0, 1) {
		days = append(days, DayTotal{Date: d})
	}
	for _, h := range history {
		i := h.StartDate.In(loc).Day() - 1
		days[i].Total += h.Duration
		days[i].Sessions++
	}
	return days, nil
}

// CategoryTotal is the focus time for one category.
type CategoryTotal struct {
	Category string        `json:"category"`
	Total    time.Duration `json:"total"`
	Sessions int           `json:"sessions"`
}

// Stats summarizes sessions over a time range.
type Stats struct {
	Total      time.Duration   `json:"total"`
	Sessions   int             `json:"sessions"`
	Extra      time.Duration   `json:"extra"`
	Longest    time.Duration   `json:"longest"`
	Categories []CategoryTotal `json:"categories"`
	Streak     int             `json:"streak"`
	BestStreak int             `json:"best_streak"`
}

// ComputeStats aggregates sessions since the given time (zero means all time).
func ComputeStats(repo storage.Repository, target Target, since, now time.Time) (*Stats, error) {
	f := target.filter()
	f.Since = since
	history, err := repo.ListHistory(f)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	stats := &Stats{Sessions: len(history)}
	byCategory := make(map[string]*CategoryTotal)
	for _, h := range history {
		stats.Total += h.Duration
		stats.Extra += h.Extra()
		if h.Duration > stats.Longest {
			stats.Longest = h.Duration
		}

		name := h.CategoryName()
		if name == "" && h.HabitID != nil {
			name = "habits"
		}
		ct, ok := byCategory[name]
		if !ok {
			ct = &CategoryTotal{Category: name}
			byCategory[name] = ct
		}
		ct.Total += h.Duration
		ct.Sessions++
	}

	for _, ct := range byCategory {
		stats.Categories = append(stats.Categories, *ct)
	}
	sort.Slice(stats.Categories, func(i, j int) bool {
		if stats.Categories[i].Total != stats.Categories[j].Total {
			return stats.Categories[i].Total > stats.Categories[j].Total
		}
		return stats.Categories[i].Category < stats.Categories[j].Category
	})

	if stats.Streak, err = CurrentStreak(repo, target, now); err != nil {
		return nil, err
	}
	if stats.BestStreak, err = LongestStreak(repo, target, now.Location()); err != nil {
		return nil, err
	}
	return stats, nil
}
