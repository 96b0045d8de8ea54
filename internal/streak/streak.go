// ABOUTME: Consecutive-day streak calculation over focus session dates.
// ABOUTME: Collapses sessions to calendar days and walks back from today or yesterday.
package streak

import (
	"time"
)

// LookbackDays is how far back sessions are considered for the current streak.
const LookbackDays = 30

// Day truncates t to midnight in loc.
func Day(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// WindowStart returns the first instant counted by Current for the given now.
func WindowStart(now time.Time) time.Time {
	return Day(now, now.Location()).AddDate(0, 0, -LookbackDays)
}

// Current returns the number of consecutive calendar days ending today, or
// ending yesterday when today has no session, that contain at least one of
// the given dates. Dates older than the lookback window are ignored.
// Days are computed in now's location.
func Current(dates []time.Time, now time.Time) int {
	loc := now.Location()
	today := Day(now, loc)
	cutoff := WindowStart(now)

	days := make(map[time.Time]bool)
	for _, d := range dates {
		if d.Before(cutoff) {
			continue
		}
		days[Day(d, loc)] = true
	}
	if len(days) == 0 {
		return 0
	}

	check := today
	if !days[check] {
		check = check.AddDate(0, 0, -1)
	}

	count := 0
	for days[check] {
		count++
		check = check.AddDate(0, 0, -1)
	}
	return count
}

// Longest returns the longest run of consecutive days in dates, in loc.
func Longest(dates []time.Time, loc *time.Location) int {
	days := make(map[time.Time]bool)
	for _, d := range dates {
		days[Day(d, loc)] = true
	}

	longest := 0
	for d := range days {
		// Only start counting at the first day of a run.
		if days[d.AddDate(0, 0, -1)] {
			continue
		}
		run := 0
		for next := d; days[next]; next = next.AddDate(0, 0, 1) {
			run++
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}
