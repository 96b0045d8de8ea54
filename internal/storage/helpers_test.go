// ABOUTME: Shared fixtures for storage tests.
// ABOUTME: Opens temp SQLite and markdown stores and runs tests against both.
package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/nowfocus/internal/models"
)

// setupTestDB creates a test database in a temp directory.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "nowfocus-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(tmpDir) })

	db, err := Open(filepath.Join(tmpDir, "nowfocus.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

// setupTestMarkdownStore creates a MarkdownStore in a temp directory.
func setupTestMarkdownStore(t *testing.T) *MarkdownStore {
	t.Helper()

	store, err := NewMarkdownStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create MarkdownStore: %v", err)
	}
	return store
}

// forEachBackend runs fn as a subtest against every Repository implementation.
func forEachBackend(t *testing.T, fn func(t *testing.T, repo Repository)) {
	t.Helper()

	t.Run("sqlite", func(t *testing.T) { fn(t, setupTestDB(t)) })
	t.Run("markdown", func(t *testing.T) { fn(t, setupTestMarkdownStore(t)) })
}

var baseTime = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

func newSession(offset time.Duration, minutes int, category string) *models.FocusHistory {
	d := time.Duration(minutes) * time.Minute
	return models.NewFocusHistory(baseTime.Add(offset), d).WithCategory(category)
}

func mustCreateHistory(t *testing.T, repo Repository, hs ...*models.FocusHistory) {
	t.Helper()
	for _, h := range hs {
		if err := repo.CreateHistory(h); err != nil {
			t.Fatalf("CreateHistory failed: %v", err)
		}
	}
}
