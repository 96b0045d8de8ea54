// ABOUTME: Tests for CLI helper functions and command execution.
// ABOUTME: Runs commands against a temp data directory and checks storage afterwards.
package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/harperreed/nowfocus/internal/config"
	"github.com/harperreed/nowfocus/internal/focus"
	"github.com/harperreed/nowfocus/internal/models"
	"github.com/harperreed/nowfocus/internal/storage"
	"github.com/mattn/go-runewidth"
)

func TestParseTime(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "date and time with space", input: "2025-01-31 08:30"},
		{name: "date and time with T", input: "2025-01-31T08:30"},
		{name: "date only", input: "2025-01-31"},
		{name: "RFC3339", input: "2025-01-31T08:30:00Z"},
		{name: "RFC3339 with offset", input: "2025-01-31T08:30:00+05:00"},
		{name: "invalid format", input: "31-01-2025", wantErr: true},
		{name: "invalid random string", input: "not a date", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseTime(tt.input)

			if tt.wantErr {
				if err == nil {
					t.Errorf("parseTime(%q) expected error, got nil", tt.input)
				}
				return
			}
			if err != nil {
				t.Errorf("parseTime(%q) unexpected error: %v", tt.input, err)
				return
			}
			if result.IsZero() {
				t.Errorf("parseTime(%q) returned zero time", tt.input)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"reading", 30, "reading"},
		{"exactly ten", 11, "exactly ten"},
		{"a very long category name", 10, "a very ..."},
		{"読書の時間です", 10, "読書の..."},
		{"crème brûlée", 8, "crème..."},
	}
	for _, tt := range tests {
		got := truncate(tt.input, tt.maxLen)
		if got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("truncate(%q, %d) produced invalid UTF-8", tt.input, tt.maxLen)
		}
		if w := runewidth.StringWidth(got); w > tt.maxLen {
			t.Errorf("truncate(%q, %d) is %d cells wide", tt.input, tt.maxLen, w)
		}
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("25m", 6); got != "25m   " {
		t.Errorf("padRight = %q", got)
	}
	if got := padRight("1h 05m", 3); got != "1h 05m" {
		t.Errorf("padRight should not cut long strings, got %q", got)
	}
	if got := padRight("読書", 6); got != "読書  " {
		t.Errorf("padRight should count wide runes as two cells, got %q", got)
	}
	if got := padRight("café", 6); got != "café  " {
		t.Errorf("padRight should count runes, not bytes, got %q", got)
	}
}

func TestPluralDays(t *testing.T) {
	if pluralDays(1) != "1 day" {
		t.Errorf("pluralDays(1) = %q", pluralDays(1))
	}
	if pluralDays(3) != "3 days" {
		t.Errorf("pluralDays(3) = %q", pluralDays(3))
	}
}

func TestRootCmdFlags(t *testing.T) {
	if rootCmd.Use != "nowfocus" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "nowfocus")
	}
	if rootCmd.PersistentFlags().Lookup("debug") == nil {
		t.Error("Expected --debug persistent flag")
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{
		"start", "history", "habit", "category", "streak", "today", "remind",
		"serve", "mcp", "export", "import", "migrate", "config", "install-skill",
	}
	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, name := range want {
		if !names[name] {
			t.Errorf("Expected %q command to be registered", name)
		}
	}
}

func TestSubcommands(t *testing.T) {
	tests := map[string][]string{
		"history":  {"list", "show", "delete", "stats", "calendar"},
		"habit":    {"add", "list", "show", "edit", "delete"},
		"category": {"list", "add", "remove", "select"},
		"remind":   {"set", "cancel", "status", "run"},
		"config":   {"show", "set"},
	}
	for parent, subs := range tests {
		cmd, _, err := rootCmd.Find([]string{parent})
		if err != nil {
			t.Fatalf("Find(%q): %v", parent, err)
		}
		names := make(map[string]bool)
		for _, c := range cmd.Commands() {
			names[c.Name()] = true
		}
		for _, sub := range subs {
			if !names[sub] {
				t.Errorf("Expected %s %s subcommand", parent, sub)
			}
		}
	}
}

func TestStartCmdFlags(t *testing.T) {
	for _, name := range []string{"duration", "category", "habit", "sensor-file", "once"} {
		if startCmd.Flags().Lookup(name) == nil {
			t.Errorf("Expected --%s flag on start command", name)
		}
	}
	if startCmd.Flags().Lookup("duration").Shorthand != "d" {
		t.Error("Expected -d shorthand for --duration")
	}
}

func TestHistoryListDefaultLimit(t *testing.T) {
	limit := historyListCmd.Flags().Lookup("limit")
	if limit == nil {
		t.Fatal("Expected --limit flag on history list")
	}
	if limit.DefValue != "20" {
		t.Errorf("Expected default limit 20, got %s", limit.DefValue)
	}
}

func TestExportCmdValidArgs(t *testing.T) {
	want := map[string]bool{"json": true, "yaml": true, "markdown": true}
	for _, arg := range exportCmd.ValidArgs {
		delete(want, arg)
	}
	if len(want) != 0 {
		t.Errorf("missing export formats: %v", want)
	}
}

// setupTestCLI points the CLI at a temp data and config directory.
// It returns a separate handle on the same database for assertions.
func setupTestCLI(t *testing.T) *storage.DB {
	t.Helper()

	tmpDir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "config"))

	testDB, err := storage.Open(filepath.Join(tmpDir, "nowfocus", "nowfocus.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}

	t.Cleanup(func() {
		_ = closeAll()
		testDB.Close()
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
	})

	resetFlags()
	return testDB
}

func resetFlags() {
	startDuration, startCategory, startHabit, startSensorFile, startOnce = 0, "", "", "", false
	historyCategory, historyHabit, historyLimit, historySince = "", "", 20, ""
	statsDays, calendarMonth = 7, ""
	habitReason, habitNewName = "", ""
	streakCategory, streakHabit = "", ""
	todayCategory = ""
	exportOutput, exportCategory, exportSince = "", "", ""
	migrateTo, migrateDest, migrateDryRun, migrateSwitch = "", "", false, false
	remindDays, remindTitle, remindBody = "", "", ""
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	defer func() { _ = closeAll() }()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestStartInterruptedSessionNotSaved(t *testing.T) {
	testDB := setupTestCLI(t)

	rootCmd.SetIn(strings.NewReader("down\nup\n"))
	rootCmd.SetOut(io.Discard)
	if err := execute(t, "start", "-d", "1m", "-c", "reading"); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	history, err := testDB.ListHistory(storage.HistoryFilter{})
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("Expected no saved sessions, got %d", len(history))
	}
}

func TestStartCompletedSessionSaved(t *testing.T) {
	if testing.Short() {
		t.Skip("uses the real one-second ticker")
	}
	testDB := setupTestCLI(t)

	pr, pw := io.Pipe()
	go func() {
		_, _ = io.WriteString(pw, "down\n")
		time.Sleep(1500 * time.Millisecond)
		_, _ = io.WriteString(pw, "up\n")
		pw.Close()
	}()

	rootCmd.SetIn(pr)
	rootCmd.SetOut(io.Discard)
	if err := execute(t, "start", "-d", "1s", "-c", "reading"); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	history, err := testDB.ListHistory(storage.HistoryFilter{})
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("Expected 1 saved session, got %d", len(history))
	}
	h := history[0]
	if h.Planned != time.Second {
		t.Errorf("Planned = %v, want 1s", h.Planned)
	}
	if h.Duration < time.Second {
		t.Errorf("Duration = %v, want at least 1s", h.Duration)
	}
	if h.CategoryName() != "reading" {
		t.Errorf("Category = %q, want reading", h.CategoryName())
	}

	days, ok, err := testDB.GetPreference(storage.PrefConsecutiveDays)
	if err != nil || !ok || days != "1" {
		t.Errorf("consecutive_days = %q (ok=%v, err=%v), want 1", days, ok, err)
	}
}

func TestStartUnknownCategory(t *testing.T) {
	testDB := setupTestCLI(t)

	rootCmd.SetIn(strings.NewReader("down\nup\n"))
	rootCmd.SetOut(io.Discard)
	err := execute(t, "start", "-d", "1m", "-c", "unknown")
	if err == nil || !strings.Contains(err.Error(), "unknown category") {
		t.Errorf("Expected unknown category error, got %v", err)
	}

	categories, err := testDB.ListCategories()
	if err != nil {
		t.Fatalf("ListCategories failed: %v", err)
	}
	if strings.Join(categories, ",") != "reading" {
		t.Errorf("categories = %v, want only reading", categories)
	}
}

func TestStartUnknownHabit(t *testing.T) {
	setupTestCLI(t)

	rootCmd.SetIn(strings.NewReader(""))
	err := execute(t, "start", "--habit", "nope")
	if err == nil || !strings.Contains(err.Error(), "habit not found") {
		t.Errorf("Expected habit not found error, got %v", err)
	}
}

func TestHabitAddAndDuplicate(t *testing.T) {
	testDB := setupTestCLI(t)

	if err := execute(t, "habit", "add", "Guitar", "--reason", "Join a band"); err != nil {
		t.Fatalf("habit add failed: %v", err)
	}

	h, err := testDB.GetHabit("Guitar")
	if err != nil {
		t.Fatalf("GetHabit failed: %v", err)
	}
	if h.Reason == nil || *h.Reason != "Join a band" {
		t.Errorf("Reason = %v, want 'Join a band'", h.Reason)
	}

	habitReason = ""
	err = execute(t, "habit", "add", "Guitar")
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("Expected duplicate name error, got %v", err)
	}
}

func TestHabitDeleteCascades(t *testing.T) {
	testDB := setupTestCLI(t)

	h := models.NewHabit("Guitar")
	if err := testDB.CreateHabit(h); err != nil {
		t.Fatalf("CreateHabit failed: %v", err)
	}
	s := models.NewFocusHistory(time.Now().Add(-time.Hour), 10*time.Minute).WithHabit(h.ID)
	if err := testDB.CreateHistory(s); err != nil {
		t.Fatalf("CreateHistory failed: %v", err)
	}

	if err := execute(t, "habit", "delete", "Guitar"); err != nil {
		t.Fatalf("habit delete failed: %v", err)
	}

	history, err := testDB.ListHistory(storage.HistoryFilter{})
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("Expected habit sessions to be deleted, got %d", len(history))
	}
}

func seedSessions(t *testing.T, db *storage.DB) []*models.FocusHistory {
	t.Helper()
	y, m, d := time.Now().Date()
	today := time.Date(y, m, d, 0, 1, 0, 0, time.Local)
	sessions := []*models.FocusHistory{
		models.NewFocusHistory(today, 25*time.Minute).WithCategory("reading").WithPlanned(25 * time.Minute),
		models.NewFocusHistory(today.AddDate(0, 0, -1), 50*time.Minute).WithCategory("writing").WithPlanned(50 * time.Minute),
	}
	if err := db.AddCategory("writing"); err != nil {
		t.Fatalf("AddCategory failed: %v", err)
	}
	for _, s := range sessions {
		if err := db.CreateHistory(s); err != nil {
			t.Fatalf("CreateHistory failed: %v", err)
		}
	}
	return sessions
}

func TestHistoryCommands(t *testing.T) {
	testDB := setupTestCLI(t)
	sessions := seedSessions(t, testDB)

	commands := [][]string{
		{"history", "list"},
		{"history", "list", "-c", "reading", "-n", "5"},
		{"history", "show", sessions[0].ID.String()[:8]},
		{"history", "stats", "--days", "30"},
		{"history", "calendar"},
		{"streak"},
		{"today"},
	}
	for _, args := range commands {
		resetFlags()
		if err := execute(t, args...); err != nil {
			t.Errorf("%v failed: %v", args, err)
		}
	}
}

func TestHistoryDelete(t *testing.T) {
	testDB := setupTestCLI(t)
	sessions := seedSessions(t, testDB)

	if err := execute(t, "history", "delete", sessions[1].ID.String()[:8]); err != nil {
		t.Fatalf("history delete failed: %v", err)
	}
	if _, err := testDB.GetHistory(sessions[1].ID.String()); err == nil {
		t.Error("Expected session to be deleted")
	}
}

func TestHistoryCalendarInvalidMonth(t *testing.T) {
	setupTestCLI(t)

	if err := execute(t, "history", "calendar", "--month", "March"); err == nil {
		t.Error("Expected error for invalid month")
	}
}

func TestRenderCalendar(t *testing.T) {
	first := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	days := make([]focus.DayTotal, 31)
	for i := range days {
		days[i] = focus.DayTotal{Date: first.AddDate(0, 0, i)}
	}
	days[9].Total = 30 * time.Minute
	days[9].Sessions = 1

	out := renderCalendar(days)
	if !strings.Contains(out, "March 2025") {
		t.Errorf("Expected month heading, got:\n%s", out)
	}
	if !strings.Contains(out, "10  30") {
		t.Errorf("Expected minutes next to day 10, got:\n%s", out)
	}
	if !strings.Contains(out, "Total: 30m") {
		t.Errorf("Expected total line, got:\n%s", out)
	}

	lines := strings.Split(out, "\n")
	// March 1st 2025 is a Saturday: five empty cells precede it.
	if !strings.HasPrefix(lines[2], strings.Repeat("       ", 5)+"  1") {
		t.Errorf("First week misaligned: %q", lines[2])
	}

	if renderCalendar(nil) != "" {
		t.Error("Expected empty output for no days")
	}
}

func TestStreakForUnknownHabit(t *testing.T) {
	setupTestCLI(t)

	if err := execute(t, "streak", "--habit", "missing"); err == nil {
		t.Error("Expected error for unknown habit")
	}
}

func TestStreakCachesPreference(t *testing.T) {
	testDB := setupTestCLI(t)
	seedSessions(t, testDB)

	if err := execute(t, "streak"); err != nil {
		t.Fatalf("streak failed: %v", err)
	}
	days, ok, err := testDB.GetPreference(storage.PrefConsecutiveDays)
	if err != nil || !ok {
		t.Fatalf("GetPreference: ok=%v err=%v", ok, err)
	}
	if days != "2" {
		t.Errorf("consecutive_days = %q, want 2", days)
	}
}

func TestCategoryCommands(t *testing.T) {
	testDB := setupTestCLI(t)
	seedSessions(t, testDB)

	if err := execute(t, "category", "add", "music"); err != nil {
		t.Fatalf("category add failed: %v", err)
	}
	if err := execute(t, "category", "add", "music"); err == nil {
		t.Error("Expected duplicate category error")
	}
	if err := execute(t, "category", "select", "writing"); err != nil {
		t.Fatalf("category select failed: %v", err)
	}
	selected, _, _ := testDB.GetPreference(storage.PrefSelectedCategory)
	if selected != "writing" {
		t.Errorf("selected_category = %q, want writing", selected)
	}
	if err := execute(t, "category", "select", "nope"); err == nil {
		t.Error("Expected error selecting unknown category")
	}

	if err := execute(t, "category", "remove", "writing"); err != nil {
		t.Fatalf("category remove failed: %v", err)
	}
	writing := "writing"
	left, err := testDB.ListHistory(storage.HistoryFilter{Category: &writing})
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	if len(left) != 0 {
		t.Errorf("Expected writing sessions removed, got %d", len(left))
	}
	selected, _, _ = testDB.GetPreference(storage.PrefSelectedCategory)
	if selected != "" {
		t.Errorf("Expected selection cleared, got %q", selected)
	}

	categories, err := testDB.ListCategories()
	if err != nil {
		t.Fatalf("ListCategories failed: %v", err)
	}
	if strings.Join(categories, ",") != "reading,music" {
		t.Errorf("categories = %v", categories)
	}
}

func TestExportImport(t *testing.T) {
	testDB := setupTestCLI(t)
	seedSessions(t, testDB)

	backup := filepath.Join(t.TempDir(), "backup.json")
	if err := execute(t, "export", "json", "-o", backup); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	resetFlags()
	rootCmd.SetOut(io.Discard)
	for _, format := range []string{"yaml", "markdown"} {
		if err := execute(t, "export", format); err != nil {
			t.Errorf("export %s failed: %v", format, err)
		}
	}
	if err := execute(t, "export", "csv"); err == nil {
		t.Error("Expected error for unknown format")
	}

	freshDB := setupTestCLI(t)
	if err := execute(t, "import", backup); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	history, err := freshDB.ListHistory(storage.HistoryFilter{})
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("Expected 2 imported sessions, got %d", len(history))
	}
}

func TestMigrateToMarkdown(t *testing.T) {
	testDB := setupTestCLI(t)
	seedSessions(t, testDB)

	dest := filepath.Join(t.TempDir(), "md")
	if err := execute(t, "migrate", "--to", "markdown", "--dest", dest); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	md, err := storage.NewMarkdownStore(dest)
	if err != nil {
		t.Fatalf("NewMarkdownStore failed: %v", err)
	}
	history, err := md.ListHistory(storage.HistoryFilter{})
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("Expected 2 migrated sessions, got %d", len(history))
	}

	resetFlags()
	if err := execute(t, "migrate", "--to", "markdown", "--dest", dest); err == nil {
		t.Error("Expected refusal to migrate into a non-empty destination")
	}
}

func TestDestinationHasData(t *testing.T) {
	dir := t.TempDir()

	has, err := destinationHasData("sqlite", dir)
	if err != nil || has {
		t.Errorf("empty dir: has=%v err=%v", has, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "nowfocus.db"), nil, 0600); err != nil {
		t.Fatal(err)
	}
	has, err = destinationHasData("sqlite", dir)
	if err != nil || !has {
		t.Errorf("with db file: has=%v err=%v", has, err)
	}

	has, err = destinationHasData("markdown", dir)
	if err != nil || has {
		t.Errorf("markdown without history: has=%v err=%v", has, err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "habits"), 0750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "habits", "guitar.md"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	has, err = destinationHasData("markdown", dir)
	if err != nil || !has {
		t.Errorf("markdown with habits: has=%v err=%v", has, err)
	}
}

func TestConfigSetAndShow(t *testing.T) {
	setupTestCLI(t)

	if err := execute(t, "config", "set", "duration_minutes", "50"); err != nil {
		t.Fatalf("config set failed: %v", err)
	}
	loaded, err := config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.GetDuration() != 50*time.Minute {
		t.Errorf("duration = %v, want 50m", loaded.GetDuration())
	}

	rootCmd.SetOut(io.Discard)
	if err := execute(t, "config", "show"); err != nil {
		t.Errorf("config show failed: %v", err)
	}
	if err := execute(t, "config", "set", "colour", "blue"); err == nil {
		t.Error("Expected error for unknown key")
	}
}

func TestRemindCommands(t *testing.T) {
	testDB := setupTestCLI(t)

	if err := execute(t, "remind", "set", "09:30", "--days", "mon,fri"); err != nil {
		t.Fatalf("remind set failed: %v", err)
	}
	r, err := testDB.GetReminder()
	if err != nil {
		t.Fatalf("GetReminder failed: %v", err)
	}
	if !r.Enabled || r.Time != "09:30" || len(r.Weekdays) != 2 {
		t.Errorf("unexpected reminder: %+v", r)
	}
	if r.Title != models.DefaultReminderTitle {
		t.Errorf("Title = %q, want default", r.Title)
	}

	if err := execute(t, "remind", "status"); err != nil {
		t.Errorf("remind status failed: %v", err)
	}
	if err := execute(t, "remind", "cancel"); err != nil {
		t.Fatalf("remind cancel failed: %v", err)
	}
	r, err = testDB.GetReminder()
	if err != nil {
		t.Fatalf("GetReminder failed: %v", err)
	}
	if r.Enabled {
		t.Error("Expected reminder disabled after cancel")
	}

	resetFlags()
	if err := execute(t, "remind", "set", "25:00"); err == nil {
		t.Error("Expected error for invalid time")
	}
	remindDays = ""
	if err := execute(t, "remind", "set", "09:00", "--days", "someday"); err == nil {
		t.Error("Expected error for invalid weekday")
	}
}

func TestRemindPermissionDenied(t *testing.T) {
	setupTestCLI(t)

	if err := execute(t, "config", "set", "notifier", "webhook"); err != nil {
		t.Fatalf("config set failed: %v", err)
	}
	if err := execute(t, "remind", "set", "09:00"); err == nil {
		t.Error("Expected permission error without a webhook URL")
	}
}
