// ABOUTME: Data migration between focus storage backends.
// ABOUTME: Copies categories, habits, history, preferences, and the reminder.

package storage

import (
	"errors"
	"fmt"
	"os"
)

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Categories  int
	Habits      int
	History     int
	Preferences int
	Reminder    bool
}

// MigrateData copies all data from src to dst storage.
// Habits are copied before history so habit links stay valid.
// The destination should be empty before calling this function.
func MigrateData(src, dst Repository) (*MigrateSummary, error) {
	summary := &MigrateSummary{}

	data, err := src.GetAllData()
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}

	for _, c := range data.Categories {
		if err := dst.AddCategory(c); err != nil {
			if errors.Is(err, ErrDuplicateCategory) {
				continue
			}
			return nil, fmt.Errorf("add category %s: %w", c, err)
		}
		summary.Categories++
	}

	for _, h := range data.Habits {
		if err := dst.CreateHabit(h); err != nil {
			return nil, fmt.Errorf("create habit %s: %w", h.ID, err)
		}
		summary.Habits++
	}

	for _, h := range data.History {
		if err := dst.CreateHistory(h); err != nil {
			return nil, fmt.Errorf("create history %s: %w", h.ID, err)
		}
		summary.History++
	}

	for k, v := range data.Preferences {
		if err := dst.SetPreference(k, v); err != nil {
			return nil, fmt.Errorf("set preference %s: %w", k, err)
		}
		summary.Preferences++
	}

	if data.Reminder != nil {
		if err := dst.SaveReminder(data.Reminder); err != nil {
			return nil, fmt.Errorf("save reminder: %w", err)
		}
		summary.Reminder = true
	}

	return summary, nil
}

// IsDirNonEmpty checks whether a directory exists and contains any files or subdirectories.
// Returns false if the directory does not exist or is empty.
func IsDirNonEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read directory %q: %w", path, err)
	}
	return len(entries) > 0, nil
}
