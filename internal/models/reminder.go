// ABOUTME: Reminder model for the daily focus notification.
// ABOUTME: Holds time of day, weekday selection, and message text.
package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	// ReminderID identifies the single daily reminder.
	ReminderID = "daily_reminder"

	DefaultReminderTitle = "Time to focus"
	DefaultReminderBody  = "How about focusing for just one minute?"
)

// Reminder is a local notification scheduled at Time on Weekdays.
// An empty Weekdays slice means every day.
type Reminder struct {
	ID        string         `json:"id" yaml:"id"`
	Enabled   bool           `json:"enabled" yaml:"enabled"`
	Time      string         `json:"time" yaml:"time"` // HH:MM
	Weekdays  []time.Weekday `json:"weekdays,omitempty" yaml:"weekdays,omitempty"`
	Title     string         `json:"title" yaml:"title"`
	Body      string         `json:"body" yaml:"body"`
	UpdatedAt time.Time      `json:"updated_at" yaml:"updated_at"`
}

// NewReminder creates an enabled reminder with the default message.
func NewReminder(at string, weekdays ...time.Weekday) *Reminder {
	r := &Reminder{
		ID:        ReminderID,
		Enabled:   true,
		Time:      at,
		Title:     DefaultReminderTitle,
		Body:      DefaultReminderBody,
		UpdatedAt: time.Now(),
	}
	r.SetWeekdays(weekdays)
	return r
}

// SetWeekdays stores a sorted, de-duplicated weekday set.
func (r *Reminder) SetWeekdays(days []time.Weekday) {
	seen := make(map[time.Weekday]bool)
	var out []time.Weekday
	for _, d := range days {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	r.Weekdays = out
}

// Validate checks the time format and weekday range.
func (r *Reminder) Validate() error {
	if _, _, err := r.Clock(); err != nil {
		return err
	}
	for _, d := range r.Weekdays {
		if d < time.Sunday || d > time.Saturday {
			return fmt.Errorf("invalid weekday: %d", d)
		}
	}
	return nil
}

// Clock returns the hour and minute of the reminder.
func (r *Reminder) Clock() (int, int, error) {
	t, err := time.Parse("15:04", r.Time)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time format (expected HH:MM): %w", err)
	}
	return t.Hour(), t.Minute(), nil
}

// FiresOn reports whether the reminder is due on the given weekday.
func (r *Reminder) FiresOn(day time.Weekday) bool {
	if len(r.Weekdays) == 0 {
		return true
	}
	for _, d := range r.Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// FormatWeekdays returns a short human-readable description of the days.
func (r *Reminder) FormatWeekdays() string {
	if len(r.Weekdays) == 0 || len(r.Weekdays) == 7 {
		return "Every day"
	}
	days := make([]string, len(r.Weekdays))
	for i, d := range r.Weekdays {
		days[i] = d.String()[:3]
	}
	return strings.Join(days, ", ")
}

// ParseWeekday accepts full or three-letter English weekday names.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday: %q", s)
}
