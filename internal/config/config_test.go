// ABOUTME: Tests for nowfocus configuration management.
// ABOUTME: Covers load, save, defaults, key edits, backend selection, and path expansion.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestGetBackend(t *testing.T) {
	if got := (&Config{}).GetBackend(); got != "sqlite" {
		t.Errorf("default GetBackend() = %q, want sqlite", got)
	}
	if got := (&Config{Backend: "markdown"}).GetBackend(); got != "markdown" {
		t.Errorf("GetBackend() = %q, want markdown", got)
	}
}

func TestGetDataDir(t *testing.T) {
	home, _ := os.UserHomeDir()
	t.Setenv("XDG_DATA_HOME", "/xdg/data")

	tests := []struct {
		dataDir string
		want    string
	}{
		{"", filepath.Join("/xdg/data", "nowfocus")},
		{"/srv/focus", "/srv/focus"},
		{"~/focus-data", filepath.Join(home, "focus-data")},
	}
	for _, tt := range tests {
		cfg := &Config{DataDir: tt.dataDir}
		if got := cfg.GetDataDir(); got != tt.want {
			t.Errorf("GetDataDir() with %q = %q, want %q", tt.dataDir, got, tt.want)
		}
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := map[string]string{
		"":               "",
		"/tmp/foo":       "/tmp/foo",
		"~":              home,
		"~/data/focus":   filepath.Join(home, "data/focus"),
		"data/nowfocus":  "data/nowfocus",
		"~other/nowhere": "~other/nowhere",
	}
	for in, want := range tests {
		if got := ExpandPath(in); got != want {
			t.Errorf("ExpandPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadMissingConfigGivesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with no config file should not error: %v", err)
	}
	if cfg.GetBackend() != "sqlite" || cfg.GetDuration() != 25*time.Minute {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "missing"))

	off := false
	cfg := &Config{
		Backend:         "markdown",
		DataDir:         "/tmp/nowfocus-data",
		DurationMinutes: 50,
		Notifier:        "desktop",
		Analytics:       &off,
	}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if GetConfigPath() != filepath.Join(dir, "missing", "nowfocus", "config.json") {
		t.Errorf("GetConfigPath() = %q", GetConfigPath())
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if loaded.Backend != "markdown" || loaded.DataDir != "/tmp/nowfocus-data" {
		t.Errorf("storage settings not restored: %+v", loaded)
	}
	if loaded.GetDuration() != 50*time.Minute {
		t.Errorf("GetDuration() = %v, want 50m", loaded.GetDuration())
	}
	if loaded.GetNotifier() != "desktop" {
		t.Errorf("GetNotifier() = %q, want desktop", loaded.GetNotifier())
	}
	if loaded.AnalyticsEnabled() {
		t.Error("analytics should stay disabled after reload")
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	if err := os.MkdirAll(filepath.Join(dir, "nowfocus"), 0750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "nowfocus", "config.json"), []byte("{duration"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil {
		t.Error("Expected error for invalid JSON config")
	}
}

func TestOpenStorage(t *testing.T) {
	for _, backend := range []string{"", "sqlite", "markdown"} {
		t.Run("backend="+backend, func(t *testing.T) {
			dir := t.TempDir()
			cfg := &Config{Backend: backend, DataDir: dir}

			repo, err := cfg.OpenStorage()
			if err != nil {
				t.Fatalf("OpenStorage() failed: %v", err)
			}
			defer repo.Close()

			categories, err := repo.ListCategories()
			if err != nil {
				t.Fatalf("ListCategories() failed: %v", err)
			}
			if len(categories) != 1 || categories[0] != "reading" {
				t.Errorf("fresh store categories = %v, want [reading]", categories)
			}

			_, statErr := os.Stat(filepath.Join(dir, "nowfocus.db"))
			if isSQLite := backend != "markdown"; isSQLite == os.IsNotExist(statErr) {
				t.Errorf("nowfocus.db presence wrong for backend %q: %v", backend, statErr)
			}
		})
	}

	if _, err := (&Config{Backend: "postgres", DataDir: t.TempDir()}).OpenStorage(); err == nil {
		t.Error("Expected error for unknown backend")
	}
}

func TestConfigJSON(t *testing.T) {
	data, err := json.Marshal(&Config{})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("Expected empty JSON object, got %s", data)
	}

	data, err = json.Marshal(&Config{DurationMinutes: 15, ListenAddr: ":7000"})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	for _, key := range []string{`"duration_minutes":15`, `"listen_addr":":7000"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("Expected %s in %s", key, data)
		}
	}
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}

	if got := cfg.GetDuration(); got != 25*time.Minute {
		t.Errorf("GetDuration() = %v, want 25m", got)
	}
	if got := cfg.GetNotifier(); got != "console" {
		t.Errorf("GetNotifier() = %q, want console", got)
	}
	if got := cfg.GetListenAddr(); got != DefaultListenAddr {
		t.Errorf("GetListenAddr() = %q, want %q", got, DefaultListenAddr)
	}
	if !cfg.AnalyticsEnabled() {
		t.Error("analytics should default to enabled")
	}
}

func TestSet(t *testing.T) {
	tests := []struct {
		key, value string
		wantErr    bool
		check      func(*Config) bool
	}{
		{"backend", "markdown", false, func(c *Config) bool { return c.Backend == "markdown" }},
		{"backend", "postgres", true, nil},
		{"duration_minutes", "50", false, func(c *Config) bool { return c.GetDuration() == 50*time.Minute }},
		{"duration_minutes", "0", true, nil},
		{"duration_minutes", "abc", true, nil},
		{"notifier", "webhook", false, func(c *Config) bool { return c.Notifier == "webhook" }},
		{"notifier", "pager", true, nil},
		{"webhook_url", "https://example.com/hook", false, func(c *Config) bool { return c.WebhookURL == "https://example.com/hook" }},
		{"webhook_url", "ftp://example.com", true, nil},
		{"analytics", "false", false, func(c *Config) bool { return !c.AnalyticsEnabled() }},
		{"analytics", "maybe", true, nil},
		{"debug", "true", false, func(c *Config) bool { return c.Debug }},
		{"listen_addr", ":9000", false, func(c *Config) bool { return c.GetListenAddr() == ":9000" }},
		{"color", "blue", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			cfg := &Config{}
			err := cfg.Set(tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Set(%q, %q) error = %v, wantErr %v", tt.key, tt.value, err, tt.wantErr)
			}
			if tt.check != nil && !tt.check(cfg) {
				t.Errorf("Set(%q, %q) did not apply: %+v", tt.key, tt.value, cfg)
			}
		})
	}
}

func TestValuesCoversKeys(t *testing.T) {
	values := (&Config{}).Values()
	for _, k := range Keys() {
		if _, ok := values[k]; !ok {
			t.Errorf("Values() missing key %q", k)
		}
	}
}
