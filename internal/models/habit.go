// ABOUTME: Habit model for user-defined focus activities.
// ABOUTME: A habit owns its focus history; names are unique per store.
package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultCategory is used when no category list has been saved yet.
const DefaultCategory = "reading"

// ErrEmptyHabitName is returned when a habit name is blank after trimming.
var ErrEmptyHabitName = errors.New("habit name cannot be empty")

// Habit represents a named activity the user wants to build.
type Habit struct {
	ID        uuid.UUID      `json:"id" yaml:"id"`
	Name      string         `json:"name" yaml:"name"`
	Reason    *string        `json:"reason,omitempty" yaml:"reason,omitempty"`
	CreatedAt time.Time      `json:"created_at" yaml:"created_at"`
	History   []FocusHistory `json:"history,omitempty" yaml:"history,omitempty"` // Populated when fetching full habit
}

// NewHabit creates a Habit with a trimmed name and generated UUID.
func NewHabit(name string) *Habit {
	return &Habit{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		CreatedAt: time.Now(),
	}
}

// WithReason sets the reason; a blank reason clears it.
func (h *Habit) WithReason(reason string) *Habit {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		h.Reason = nil
		return h
	}
	h.Reason = &reason
	return h
}

// Validate checks the habit has a usable name.
func (h *Habit) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return ErrEmptyHabitName
	}
	return nil
}

// TotalDuration sums the duration of the loaded history.
func (h *Habit) TotalDuration() time.Duration {
	var total time.Duration
	for _, fh := range h.History {
		total += fh.Duration
	}
	return total
}
