// ABOUTME: FocusHistory model for completed focus sessions.
// ABOUTME: Records start date, planned and total duration, and category or habit.
package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// FocusHistory represents one completed focus session.
type FocusHistory struct {
	ID        uuid.UUID     `json:"id" yaml:"id"`
	StartDate time.Time     `json:"start_date" yaml:"start_date"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
	Planned   time.Duration `json:"planned" yaml:"planned"`
	Category  *string       `json:"category,omitempty" yaml:"category,omitempty"`
	HabitID   *uuid.UUID    `json:"habit_id,omitempty" yaml:"habit_id,omitempty"`
	CreatedAt time.Time     `json:"created_at" yaml:"created_at"`
}

var (
	// ErrNegativeDuration is returned when a history record has a negative duration.
	ErrNegativeDuration = errors.New("duration must not be negative")
	// ErrMissingStartDate is returned when a history record has no start date.
	ErrMissingStartDate = errors.New("start date is required")
)

// NewFocusHistory creates a FocusHistory with a generated UUID.
// Planned defaults to the total duration.
func NewFocusHistory(startDate time.Time, duration time.Duration) *FocusHistory {
	return &FocusHistory{
		ID:        uuid.New(),
		StartDate: startDate,
		Duration:  duration,
		Planned:   duration,
		CreatedAt: time.Now(),
	}
}

// WithCategory tags the record with a category.
func (h *FocusHistory) WithCategory(category string) *FocusHistory {
	if category == "" {
		h.Category = nil
		return h
	}
	h.Category = &category
	return h
}

// WithHabit links the record to a habit.
func (h *FocusHistory) WithHabit(id uuid.UUID) *FocusHistory {
	h.HabitID = &id
	return h
}

// WithPlanned sets the configured countdown the session was started with.
func (h *FocusHistory) WithPlanned(planned time.Duration) *FocusHistory {
	h.Planned = planned
	return h
}

// Extra returns the focus time accumulated after the countdown finished.
func (h *FocusHistory) Extra() time.Duration {
	if h.Duration <= h.Planned {
		return 0
	}
	return h.Duration - h.Planned
}

// CategoryName returns the category or an empty string.
func (h *FocusHistory) CategoryName() string {
	if h.Category == nil {
		return ""
	}
	return *h.Category
}

// Validate checks the record invariants.
func (h *FocusHistory) Validate() error {
	if h.StartDate.IsZero() {
		return ErrMissingStartDate
	}
	if h.Duration < 0 || h.Planned < 0 {
		return ErrNegativeDuration
	}
	return nil
}
