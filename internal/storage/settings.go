// ABOUTME: Categories, preferences, and reminder storage for SQLite.
// ABOUTME: Removing a category deletes every history record tagged with it.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/nowfocus/internal/models"
)

// ListCategories returns categories in the order they were added.
func (d *DB) ListCategories() ([]string, error) {
	rows, err := d.db.Query(`SELECT name FROM categories ORDER BY position, created_at`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, name)
	}
	return categories, rows.Err()
}

// AddCategory appends a category to the list.
func (d *DB) AddCategory(name string) error {
	name, err := normalizeCategory(name)
	if err != nil {
		return err
	}

	var exists int
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM categories WHERE name = ?`, name).Scan(&exists); err != nil {
		return fmt.Errorf("add category: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateCategory, name)
	}

	_, err = d.db.Exec(`
		INSERT INTO categories (name, position, created_at)
		VALUES (?, (SELECT COALESCE(MAX(position), -1) + 1 FROM categories), ?)`,
		name, formatTime(timeNow()))
	if err != nil {
		return fmt.Errorf("add category: %w", err)
	}
	return nil
}

// RemoveCategory deletes a category and its history, returning the number of
// history records removed.
func (d *DB) RemoveCategory(name string) (int, error) {
	name = strings.TrimSpace(name)

	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("remove category: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.Exec(`DELETE FROM categories WHERE name = ?`, name)
	if err != nil {
		return 0, fmt.Errorf("remove category: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return 0, notFound("category", name)
	}

	result, err = tx.Exec(`DELETE FROM focus_history WHERE category = ?`, name)
	if err != nil {
		return 0, fmt.Errorf("remove category history: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("remove category history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("remove category: %w", err)
	}
	return int(removed), nil
}

// GetPreference returns a stored preference and whether it was set.
func (d *DB) GetPreference(key string) (string, bool, error) {
	var value string
	err := d.db.QueryRow(`SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get preference %s: %w", key, err)
	}
	return value, true, nil
}

// SetPreference stores a preference, replacing any previous value.
func (d *DB) SetPreference(key, value string) error {
	_, err := d.db.Exec(`
		INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, formatTime(timeNow()))
	if err != nil {
		return fmt.Errorf("set preference %s: %w", key, err)
	}
	return nil
}

// listPreferences returns user-visible preferences.
func (d *DB) listPreferences() (map[string]string, error) {
	rows, err := d.db.Query(`SELECT key, value FROM preferences WHERE key != ?`, categoriesSeededKey)
	if err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	defer rows.Close()

	prefs := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan preference: %w", err)
		}
		prefs[k] = v
	}
	return prefs, rows.Err()
}

// GetReminder returns the daily reminder or ErrNotFound.
func (d *DB) GetReminder() (*models.Reminder, error) {
	var r models.Reminder
	var enabled int
	var weekdays, updatedAt string

	err := d.db.QueryRow(`
		SELECT id, enabled, time, weekdays, title, body, updated_at
		FROM reminders WHERE id = ?`, models.ReminderID).
		Scan(&r.ID, &enabled, &r.Time, &weekdays, &r.Title, &r.Body, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("reminder", models.ReminderID)
	}
	if err != nil {
		return nil, fmt.Errorf("get reminder: %w", err)
	}

	r.Enabled = enabled != 0
	r.UpdatedAt = parseTime(updatedAt)
	r.Weekdays = decodeWeekdays(weekdays)
	return &r, nil
}

// SaveReminder creates or replaces the daily reminder.
func (d *DB) SaveReminder(r *models.Reminder) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("save reminder: %w", err)
	}
	r.ID = models.ReminderID

	enabled := 0
	if r.Enabled {
		enabled = 1
	}
	_, err := d.db.Exec(`
		INSERT INTO reminders (id, enabled, time, weekdays, title, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			enabled = excluded.enabled, time = excluded.time, weekdays = excluded.weekdays,
			title = excluded.title, body = excluded.body, updated_at = excluded.updated_at`,
		r.ID, enabled, r.Time, encodeWeekdays(r.Weekdays), r.Title, r.Body, formatTime(r.UpdatedAt))
	if err != nil {
		return fmt.Errorf("save reminder: %w", err)
	}
	return nil
}

func encodeWeekdays(days []time.Weekday) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(int(d))
	}
	return strings.Join(parts, ",")
}

func decodeWeekdays(s string) []time.Weekday {
	if s == "" {
		return nil
	}
	var days []time.Weekday
	for _, p := range strings.Split(s, ",") {
		n, err := strconv.Atoi(p)
		if err != nil {
			continue
		}
		days = append(days, time.Weekday(n))
	}
	return days
}
