// ABOUTME: Shared helpers for CLI commands.
// ABOUTME: Time parsing, column formatting, and category/habit target resolution.
package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/nowfocus/internal/focus"
	"github.com/harperreed/nowfocus/internal/storage"
	"github.com/mattn/go-runewidth"
)

var (
	faint = color.New(color.Faint)
	bold  = color.New(color.Bold)

	timeNow = time.Now
)

func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02",
	}
	for _, f := range formats {
		if t, err := time.ParseInLocation(f, s, time.Local); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized time format")
}

// truncate and padRight measure terminal cells, not bytes.
func truncate(s string, maxLen int) string {
	return runewidth.Truncate(s, maxLen, "...")
}

func padRight(s string, length int) string {
	return runewidth.FillRight(s, length)
}

func shortID(id fmt.Stringer) string {
	return id.String()[:8]
}

// resolveTarget turns --category/--habit flags into a focus target.
// A habit wins over a category.
func resolveTarget(category, habit string) (focus.Target, error) {
	if habit != "" {
		h, err := repo.GetHabit(habit)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return focus.Target{}, fmt.Errorf("habit not found: %s", habit)
			}
			return focus.Target{}, err
		}
		return focus.HabitTarget(h.ID), nil
	}
	return focus.CategoryTarget(category), nil
}

// sessionTarget is resolveTarget for commands that record sessions; the
// category must be on the category list.
func sessionTarget(category, habit string) (focus.Target, error) {
	if habit == "" && category != "" {
		if err := focus.ValidateCategory(repo, category); err != nil {
			if errors.Is(err, focus.ErrUnknownCategory) {
				return focus.Target{}, fmt.Errorf("%w (add it with 'nowfocus category add')", err)
			}
			return focus.Target{}, err
		}
	}
	return resolveTarget(category, habit)
}

// targetLabel describes a target for headings.
func targetLabel(t focus.Target) string {
	if t.HabitID != nil {
		if h, err := repo.GetHabit(t.HabitID.String()); err == nil {
			return "habit " + h.Name
		}
	}
	if t.Category != nil {
		return *t.Category
	}
	return "all sessions"
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
