// ABOUTME: Habit CRUD operations for SQLite storage.
// ABOUTME: Enforces unique names and cascades deletes to focus history.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/harperreed/nowfocus/internal/models"
)

const habitColumns = `id, name, reason, created_at`

// CreateHabit stores a new habit. Duplicate names fail with ErrDuplicateHabitName.
func (d *DB) CreateHabit(h *models.Habit) error {
	h.Name = strings.TrimSpace(h.Name)
	if err := h.Validate(); err != nil {
		return &HabitSaveError{Name: h.Name, Err: err}
	}
	if err := d.checkHabitName(h); err != nil {
		return err
	}

	_, err := d.db.Exec(`INSERT INTO habits (`+habitColumns+`) VALUES (?, ?, ?, ?)`,
		h.ID.String(), h.Name, h.Reason, formatTime(h.CreatedAt))
	if err != nil {
		return &HabitSaveError{Name: h.Name, Err: mapUniqueErr(err)}
	}
	return nil
}

// GetHabit retrieves a habit by exact name, ID, or ID prefix (without history).
func (d *DB) GetHabit(idPrefixOrName string) (*models.Habit, error) {
	h, err := scanHabit(d.db.QueryRow(`SELECT `+habitColumns+` FROM habits WHERE name = ?`, idPrefixOrName))
	if err == nil {
		return h, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	id, err := d.resolveID("habits", "habit", idPrefixOrName)
	if err != nil {
		return nil, err
	}
	h, err = scanHabit(d.db.QueryRow(`SELECT `+habitColumns+` FROM habits WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("habit", idPrefixOrName)
	}
	return h, err
}

// GetHabitWithHistory retrieves a habit with all its focus history.
func (d *DB) GetHabitWithHistory(idPrefixOrName string) (*models.Habit, error) {
	h, err := d.GetHabit(idPrefixOrName)
	if err != nil {
		return nil, err
	}

	history, err := d.ListHistory(HistoryFilter{HabitID: &h.ID})
	if err != nil {
		return nil, fmt.Errorf("list habit history: %w", err)
	}
	for _, fh := range history {
		h.History = append(h.History, *fh)
	}
	return h, nil
}

// ListHabits returns all habits ordered by name.
func (d *DB) ListHabits() ([]*models.Habit, error) {
	rows, err := d.db.Query(`SELECT ` + habitColumns + ` FROM habits ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	defer rows.Close()

	var habits []*models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

// UpdateHabit renames a habit or changes its reason.
func (d *DB) UpdateHabit(h *models.Habit) error {
	h.Name = strings.TrimSpace(h.Name)
	if err := h.Validate(); err != nil {
		return &HabitSaveError{Name: h.Name, Err: err}
	}
	if err := d.checkHabitName(h); err != nil {
		return err
	}

	result, err := d.db.Exec(`UPDATE habits SET name = ?, reason = ? WHERE id = ?`,
		h.Name, h.Reason, h.ID.String())
	if err != nil {
		return &HabitSaveError{Name: h.Name, Err: mapUniqueErr(err)}
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update habit: %w", err)
	}
	if affected == 0 {
		return notFound("habit", h.ID.String())
	}
	return nil
}

// DeleteHabit removes a habit and its focus history (cascade delete).
func (d *DB) DeleteHabit(idPrefixOrName string) error {
	h, err := d.GetHabit(idPrefixOrName)
	if err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}

	if _, err := d.db.Exec("DELETE FROM habits WHERE id = ?", h.ID.String()); err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	return nil
}

// checkHabitName rejects a name used by a different habit.
func (d *DB) checkHabitName(h *models.Habit) error {
	var id string
	err := d.db.QueryRow(`SELECT id FROM habits WHERE name = ? AND id != ?`, h.Name, h.ID.String()).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil
	case err != nil:
		return fmt.Errorf("check habit name: %w", err)
	default:
		return &HabitSaveError{Name: h.Name, Err: ErrDuplicateHabitName}
	}
}

func mapUniqueErr(err error) error {
	if strings.Contains(err.Error(), "UNIQUE constraint failed: habits.name") {
		return ErrDuplicateHabitName
	}
	return err
}

func scanHabit(row rowScanner) (*models.Habit, error) {
	var h models.Habit
	var idStr, createdAt string
	var reason sql.NullString

	if err := row.Scan(&idStr, &h.Name, &reason, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan habit: %w", err)
	}

	h.ID, _ = uuid.Parse(idStr)
	h.CreatedAt = parseTime(createdAt)
	if reason.Valid {
		h.Reason = &reason.String
	}
	return &h, nil
}
