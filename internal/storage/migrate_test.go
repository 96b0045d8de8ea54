// ABOUTME: Tests for migrating data between storage backends.
// ABOUTME: Copies a seeded SQLite store into markdown and back.
package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMigrateSQLiteToMarkdown(t *testing.T) {
	src := setupTestDB(t)
	habit := seedExportData(t, src)
	dst := setupTestMarkdownStore(t)

	summary, err := MigrateData(src, dst)
	if err != nil {
		t.Fatalf("MigrateData failed: %v", err)
	}
	if summary.Habits != 1 || summary.History != 3 || !summary.Reminder {
		t.Errorf("summary = %+v", summary)
	}
	// "reading" already exists as the destination default.
	if summary.Categories != 1 {
		t.Errorf("categories migrated = %d, want 1", summary.Categories)
	}

	full, err := dst.GetHabitWithHistory(habit.Name)
	if err != nil {
		t.Fatalf("GetHabitWithHistory failed: %v", err)
	}
	if len(full.History) != 1 {
		t.Errorf("habit history = %d records, want 1", len(full.History))
	}
	if v, ok, _ := dst.GetPreference(PrefSelectedCategory); !ok || v != "writing" {
		t.Errorf("preference = %q, %v", v, ok)
	}
}

func TestMigrateMarkdownToSQLite(t *testing.T) {
	src := setupTestMarkdownStore(t)
	seedExportData(t, src)
	dst := setupTestDB(t)

	summary, err := MigrateData(src, dst)
	if err != nil {
		t.Fatalf("MigrateData failed: %v", err)
	}
	if summary.History != 3 {
		t.Errorf("history migrated = %d, want 3", summary.History)
	}

	all, err := dst.ListHistory(HistoryFilter{})
	if err != nil || len(all) != 3 {
		t.Errorf("destination history = %d, %v", len(all), err)
	}
}

func TestIsDirNonEmpty(t *testing.T) {
	dir := t.TempDir()

	if nonEmpty, err := IsDirNonEmpty(filepath.Join(dir, "missing")); err != nil || nonEmpty {
		t.Errorf("missing dir = %v, %v", nonEmpty, err)
	}
	if nonEmpty, err := IsDirNonEmpty(dir); err != nil || nonEmpty {
		t.Errorf("empty dir = %v, %v", nonEmpty, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "x"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	if nonEmpty, err := IsDirNonEmpty(dir); err != nil || !nonEmpty {
		t.Errorf("non-empty dir = %v, %v", nonEmpty, err)
	}
}
