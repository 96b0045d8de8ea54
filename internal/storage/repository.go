// ABOUTME: Repository interface for focus data storage.
// ABOUTME: Defines the contract for history, habits, categories, preferences, and reminders.
package storage

import (
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/nowfocus/internal/models"
)

// Preference keys shared by every backend.
const (
	PrefConsecutiveDays  = "consecutive_days"
	PrefLastCheckedDate  = "last_checked_date"
	PrefSelectedCategory = "selected_category"
)

// HistoryFilter narrows ListHistory. Zero values mean "no constraint".
type HistoryFilter struct {
	Category *string
	HabitID  *uuid.UUID
	Since    time.Time // inclusive
	Until    time.Time // exclusive
	Limit    int
}

// Matches reports whether h passes the filter, ignoring Limit.
func (f HistoryFilter) Matches(h *models.FocusHistory) bool {
	if f.Category != nil && (h.Category == nil || *h.Category != *f.Category) {
		return false
	}
	if f.HabitID != nil && (h.HabitID == nil || *h.HabitID != *f.HabitID) {
		return false
	}
	if !f.Since.IsZero() && h.StartDate.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && !h.StartDate.Before(f.Until) {
		return false
	}
	return true
}

// Repository defines the storage interface for focus data.
type Repository interface {
	// Focus history
	CreateHistory(h *models.FocusHistory) error
	GetHistory(idOrPrefix string) (*models.FocusHistory, error)
	ListHistory(filter HistoryFilter) ([]*models.FocusHistory, error)
	DeleteHistory(idOrPrefix string) error

	// Habits; deleting a habit deletes its history
	CreateHabit(h *models.Habit) error
	GetHabit(idPrefixOrName string) (*models.Habit, error)
	GetHabitWithHistory(idPrefixOrName string) (*models.Habit, error)
	ListHabits() ([]*models.Habit, error)
	UpdateHabit(h *models.Habit) error
	DeleteHabit(idPrefixOrName string) error

	// Categories; removing a category deletes the history tagged with it
	ListCategories() ([]string, error)
	AddCategory(name string) error
	RemoveCategory(name string) (int, error)

	// Preferences
	GetPreference(key string) (string, bool, error)
	SetPreference(key, value string) error

	// Reminder
	GetReminder() (*models.Reminder, error)
	SaveReminder(r *models.Reminder) error

	// Export/Import
	GetAllData() (*ExportData, error)
	ImportData(data *ExportData) error

	// Lifecycle
	Close() error
}
