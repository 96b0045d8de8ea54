// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: Defines tables for habits, focus history, categories, preferences, and reminders.
package storage

import (
	"fmt"

	"github.com/harperreed/nowfocus/internal/models"
)

// categoriesSeededKey marks that the default category list has been written once.
const categoriesSeededKey = "categories_seeded"

// initSchema creates or updates the database schema.
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS habits (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		reason TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS focus_history (
		id TEXT PRIMARY KEY,
		start_date DATETIME NOT NULL,
		duration_seconds INTEGER NOT NULL CHECK (duration_seconds >= 0),
		planned_seconds INTEGER NOT NULL CHECK (planned_seconds >= 0),
		category TEXT,
		habit_id TEXT,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (habit_id) REFERENCES habits(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS categories (
		name TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS preferences (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS reminders (
		id TEXT PRIMARY KEY,
		enabled INTEGER NOT NULL,
		time TEXT NOT NULL,
		weekdays TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL,
		body TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_habits_name ON habits(name);
	CREATE INDEX IF NOT EXISTS idx_history_start ON focus_history(start_date DESC);
	CREATE INDEX IF NOT EXISTS idx_history_category ON focus_history(category, start_date DESC);
	CREATE INDEX IF NOT EXISTS idx_history_habit ON focus_history(habit_id);
	`

	if _, err := d.db.Exec(schema); err != nil {
		return err
	}
	return d.seedCategories()
}

// seedCategories writes the default category list the first time the database is opened.
func (d *DB) seedCategories() error {
	_, seeded, err := d.GetPreference(categoriesSeededKey)
	if err != nil {
		return err
	}
	if seeded {
		return nil
	}

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := formatTime(timeNow())
	if _, err := tx.Exec(
		`INSERT OR IGNORE INTO categories (name, position, created_at) VALUES (?, 0, ?)`,
		models.DefaultCategory, now,
	); err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO preferences (key, value, updated_at) VALUES (?, 'true', ?)`,
		categoriesSeededKey, now,
	); err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	return tx.Commit()
}
