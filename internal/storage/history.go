// ABOUTME: FocusHistory CRUD operations for SQLite storage.
// ABOUTME: Durations are stored as whole seconds, timestamps as UTC RFC3339.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/nowfocus/internal/models"
)

const historyColumns = `id, start_date, duration_seconds, planned_seconds, category, habit_id, created_at`

// CreateHistory stores a completed focus session.
func (d *DB) CreateHistory(h *models.FocusHistory) error {
	if err := h.Validate(); err != nil {
		return fmt.Errorf("create history: %w", err)
	}

	var habitID *string
	if h.HabitID != nil {
		s := h.HabitID.String()
		habitID = &s
	}

	query := `INSERT INTO focus_history (` + historyColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := d.db.Exec(query,
		h.ID.String(),
		formatTime(h.StartDate),
		int64(h.Duration/time.Second),
		int64(h.Planned/time.Second),
		h.Category,
		habitID,
		formatTime(h.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("create history: %w", err)
	}
	return nil
}

// GetHistory retrieves a history record by ID or ID prefix.
func (d *DB) GetHistory(idOrPrefix string) (*models.FocusHistory, error) {
	id, err := d.resolveID("focus_history", "history", idOrPrefix)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + historyColumns + ` FROM focus_history WHERE id = ?`
	h, err := scanHistory(d.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("history", idOrPrefix)
	}
	return h, err
}

// ListHistory retrieves history sorted by StartDate descending.
func (d *DB) ListHistory(filter HistoryFilter) ([]*models.FocusHistory, error) {
	var where []string
	var args []interface{}

	if filter.Category != nil {
		where = append(where, "category = ?")
		args = append(args, *filter.Category)
	}
	if filter.HabitID != nil {
		where = append(where, "habit_id = ?")
		args = append(args, filter.HabitID.String())
	}
	if !filter.Since.IsZero() {
		where = append(where, "start_date >= ?")
		args = append(args, formatTime(filter.Since))
	}
	if !filter.Until.IsZero() {
		where = append(where, "start_date < ?")
		args = append(args, formatTime(filter.Until))
	}

	query := `SELECT ` + historyColumns + ` FROM focus_history`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY start_date DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var out []*models.FocusHistory
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// DeleteHistory removes a history record by ID or prefix.
func (d *DB) DeleteHistory(idOrPrefix string) error {
	id, err := d.resolveID("focus_history", "history", idOrPrefix)
	if err != nil {
		return fmt.Errorf("delete history: %w", err)
	}

	result, err := d.db.Exec("DELETE FROM focus_history WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete history: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete history: %w", err)
	}
	if affected == 0 {
		return notFound("history", idOrPrefix)
	}
	return nil
}

// resolveID finds the full ID in table from a prefix.
func (d *DB) resolveID(table, what, idOrPrefix string) (string, error) {
	if isFullUUID(idOrPrefix) {
		return idOrPrefix, nil
	}
	if idOrPrefix == "" {
		return "", notFound(what, `""`)
	}

	rows, err := d.db.Query(`SELECT id FROM `+table+` WHERE id LIKE ? || '%'`, idOrPrefix)
	if err != nil {
		return "", fmt.Errorf("resolve %s ID: %w", what, err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scan %s ID: %w", what, err)
		}
		matches = append(matches, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch len(matches) {
	case 0:
		return "", notFound(what, idOrPrefix)
	case 1:
		return matches[0], nil
	default:
		return "", ambiguous(idOrPrefix)
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanHistory(row rowScanner) (*models.FocusHistory, error) {
	var h models.FocusHistory
	var idStr, startDate, createdAt string
	var duration, planned int64
	var category, habitID sql.NullString

	err := row.Scan(&idStr, &startDate, &duration, &planned, &category, &habitID, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan history: %w", err)
	}

	h.ID, _ = uuid.Parse(idStr)
	h.StartDate = parseTime(startDate)
	h.CreatedAt = parseTime(createdAt)
	h.Duration = time.Duration(duration) * time.Second
	h.Planned = time.Duration(planned) * time.Second
	if category.Valid {
		h.Category = &category.String
	}
	if habitID.Valid {
		if id, err := uuid.Parse(habitID.String); err == nil {
			h.HabitID = &id
		}
	}
	return &h, nil
}
