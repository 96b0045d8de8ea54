// ABOUTME: Tests for FocusHistory and Habit models.
// ABOUTME: Validates constructors, invariants, and helper accessors.
package models

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewFocusHistory(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	h := NewFocusHistory(start, 25*time.Minute)

	if h.ID == uuid.Nil {
		t.Error("expected UUID to be set")
	}
	if !h.StartDate.Equal(start) {
		t.Errorf("StartDate = %v, want %v", h.StartDate, start)
	}
	if h.Planned != 25*time.Minute {
		t.Errorf("Planned = %v, want 25m", h.Planned)
	}
	if h.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestFocusHistoryExtra(t *testing.T) {
	h := NewFocusHistory(time.Now(), 27*time.Minute).WithPlanned(25 * time.Minute)
	if got := h.Extra(); got != 2*time.Minute {
		t.Errorf("Extra() = %v, want 2m", got)
	}

	h.Duration = 10 * time.Minute
	if got := h.Extra(); got != 0 {
		t.Errorf("Extra() = %v, want 0", got)
	}
}

func TestFocusHistoryWithCategory(t *testing.T) {
	h := NewFocusHistory(time.Now(), time.Minute).WithCategory("reading")
	if h.CategoryName() != "reading" {
		t.Errorf("CategoryName() = %q, want reading", h.CategoryName())
	}

	h.WithCategory("")
	if h.Category != nil {
		t.Error("empty category should clear the tag")
	}
}

func TestFocusHistoryValidate(t *testing.T) {
	tests := []struct {
		name    string
		history FocusHistory
		wantErr error
	}{
		{
			name:    "valid",
			history: FocusHistory{StartDate: time.Now(), Duration: time.Minute},
		},
		{
			name:    "zero duration is allowed",
			history: FocusHistory{StartDate: time.Now()},
		},
		{
			name:    "missing start date",
			history: FocusHistory{Duration: time.Minute},
			wantErr: ErrMissingStartDate,
		},
		{
			name:    "negative duration",
			history: FocusHistory{StartDate: time.Now(), Duration: -time.Second},
			wantErr: ErrNegativeDuration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.history.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewHabitTrims(t *testing.T) {
	h := NewHabit("  Reading  ").WithReason("   ")
	if h.Name != "Reading" {
		t.Errorf("Name = %q, want Reading", h.Name)
	}
	if h.Reason != nil {
		t.Errorf("blank reason should be nil, got %q", *h.Reason)
	}

	h.WithReason(" learn more ")
	if h.Reason == nil || *h.Reason != "learn more" {
		t.Errorf("Reason = %v, want 'learn more'", h.Reason)
	}
}

func TestHabitValidate(t *testing.T) {
	if err := NewHabit("   ").Validate(); !errors.Is(err, ErrEmptyHabitName) {
		t.Errorf("Validate() = %v, want ErrEmptyHabitName", err)
	}
	if err := NewHabit("Write").Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
}

func TestHabitTotalDuration(t *testing.T) {
	h := NewHabit("Write")
	h.History = []FocusHistory{
		{Duration: 10 * time.Minute},
		{Duration: 15 * time.Minute},
	}
	if got := h.TotalDuration(); got != 25*time.Minute {
		t.Errorf("TotalDuration() = %v, want 25m", got)
	}
}
