// ABOUTME: Sentinel errors shared by every storage backend.
// ABOUTME: Callers match them with errors.Is and errors.As.
package storage

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when no record matches an ID, prefix, or name.
	ErrNotFound = errors.New("not found")
	// ErrAmbiguousPrefix is returned when an ID prefix matches several records.
	ErrAmbiguousPrefix = errors.New("ambiguous prefix")
	// ErrDuplicateHabitName is returned when a habit name is already taken.
	ErrDuplicateHabitName = errors.New("a habit with this name already exists")
	// ErrDuplicateCategory is returned when adding a category that exists.
	ErrDuplicateCategory = errors.New("category already exists")
	// ErrEmptyCategory is returned for blank category names.
	ErrEmptyCategory = errors.New("category name cannot be empty")
)

// HabitSaveError reports a failed habit write.
type HabitSaveError struct {
	Name string
	Err  error
}

func (e *HabitSaveError) Error() string {
	return fmt.Sprintf("save habit %q: %v", e.Name, e.Err)
}

func (e *HabitSaveError) Unwrap() error {
	return e.Err
}

func notFound(what, key string) error {
	return fmt.Errorf("%s %s: %w", what, key, ErrNotFound)
}

func ambiguous(key string) error {
	return fmt.Errorf("%w %s: matches multiple records", ErrAmbiguousPrefix, key)
}

// isFullUUID reports whether s has the shape of a canonical UUID.
func isFullUUID(s string) bool {
	return len(s) == 36 && strings.Count(s, "-") == 4
}

// normalizeCategory trims a category name and rejects blanks.
func normalizeCategory(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyCategory
	}
	return name, nil
}
