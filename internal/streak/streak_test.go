// ABOUTME: Tests for consecutive-day streak calculation.
// ABOUTME: Covers empty input, gaps, yesterday anchoring, and the lookback window.
package streak

import (
	"testing"
	"time"
)

func daysAgo(now time.Time, n int, hour int) time.Time {
	d := now.AddDate(0, 0, -n)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 15, 0, 0, now.Location())
}

func TestCurrent(t *testing.T) {
	now := time.Date(2025, 6, 15, 20, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		dates []time.Time
		want  int
	}{
		{
			name:  "empty",
			dates: nil,
			want:  0,
		},
		{
			name:  "single session today",
			dates: []time.Time{daysAgo(now, 0, 9)},
			want:  1,
		},
		{
			name:  "gap on day minus three",
			dates: []time.Time{daysAgo(now, 0, 9), daysAgo(now, 1, 9), daysAgo(now, 2, 9), daysAgo(now, 4, 9)},
			want:  3,
		},
		{
			name:  "multiple sessions on the same day count once",
			dates: []time.Time{daysAgo(now, 0, 8), daysAgo(now, 0, 18), daysAgo(now, 1, 7)},
			want:  2,
		},
		{
			name:  "anchored on yesterday when today is empty",
			dates: []time.Time{daysAgo(now, 1, 9), daysAgo(now, 2, 9)},
			want:  2,
		},
		{
			name:  "broken when neither today nor yesterday",
			dates: []time.Time{daysAgo(now, 2, 9), daysAgo(now, 3, 9)},
			want:  0,
		},
		{
			name:  "nothing in the lookback window",
			dates: []time.Time{daysAgo(now, 31, 9), daysAgo(now, 45, 9)},
			want:  0,
		},
		{
			name:  "unordered input",
			dates: []time.Time{daysAgo(now, 2, 9), daysAgo(now, 0, 9), daysAgo(now, 1, 9)},
			want:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Current(tt.dates, now); got != tt.want {
				t.Errorf("Current() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCurrentCappedByWindow(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	var dates []time.Time
	for i := 0; i < 60; i++ {
		dates = append(dates, daysAgo(now, i, 10))
	}

	if got := Current(dates, now); got != LookbackDays+1 {
		t.Errorf("Current() = %d, want %d", got, LookbackDays+1)
	}
}

func TestCurrentUsesNowLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	now := time.Date(2025, 6, 15, 8, 0, 0, 0, tokyo)

	// 2025-06-14 23:30 UTC is 2025-06-15 08:30 in Tokyo.
	session := time.Date(2025, 6, 14, 23, 30, 0, 0, time.UTC)
	if got := Current([]time.Time{session}, now); got != 1 {
		t.Errorf("Current() = %d, want 1", got)
	}
}

func TestLongest(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	dates := []time.Time{
		daysAgo(now, 0, 9),
		daysAgo(now, 5, 9), daysAgo(now, 6, 9), daysAgo(now, 7, 9), daysAgo(now, 8, 9),
		daysAgo(now, 10, 9), daysAgo(now, 11, 9),
	}

	if got := Longest(dates, time.UTC); got != 4 {
		t.Errorf("Longest() = %d, want 4", got)
	}
	if got := Longest(nil, time.UTC); got != 0 {
		t.Errorf("Longest(nil) = %d, want 0", got)
	}
}
