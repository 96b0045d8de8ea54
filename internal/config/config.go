// ABOUTME: nowfocus configuration management with backend selection.
// ABOUTME: Handles settings, defaults, key/value edits, and the storage backend factory.

package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/nowfocus/internal/storage"
)

const (
	DefaultDurationMinutes = 25
	DefaultListenAddr      = "127.0.0.1:7315"
	DefaultNotifier        = "console"
)

// Config stores nowfocus configuration.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default) or "markdown".
	Backend string `json:"backend,omitempty"`

	// DataDir is the root directory for data storage.
	// SQLite puts nowfocus.db here. Markdown puts history/ and habits/ folders here.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/nowfocus.
	DataDir string `json:"data_dir,omitempty"`

	// DurationMinutes is the focus countdown length.
	DurationMinutes int `json:"duration_minutes,omitempty"`

	// Notifier selects reminder delivery: "console", "desktop", or "webhook".
	Notifier   string `json:"notifier,omitempty"`
	WebhookURL string `json:"webhook_url,omitempty"`

	// ListenAddr is where `nowfocus serve` binds the HTTP API.
	ListenAddr string `json:"listen_addr,omitempty"`

	// Analytics toggles the local event log. Nil means enabled.
	Analytics *bool `json:"analytics,omitempty"`
	Debug     bool  `json:"debug,omitempty"`
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return "sqlite"
	}
	return c.Backend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetDuration returns the focus countdown length.
func (c *Config) GetDuration() time.Duration {
	if c.DurationMinutes <= 0 {
		return DefaultDurationMinutes * time.Minute
	}
	return time.Duration(c.DurationMinutes) * time.Minute
}

// GetNotifier returns the reminder delivery method.
func (c *Config) GetNotifier() string {
	if c.Notifier == "" {
		return DefaultNotifier
	}
	return c.Notifier
}

// GetListenAddr returns the HTTP API address.
func (c *Config) GetListenAddr() string {
	if c.ListenAddr == "" {
		return DefaultListenAddr
	}
	return c.ListenAddr
}

// AnalyticsEnabled reports whether events are recorded.
func (c *Config) AnalyticsEnabled() bool {
	return c.Analytics == nil || *c.Analytics
}

// AnalyticsPath returns the JSONL event log location.
func (c *Config) AnalyticsPath() string {
	return filepath.Join(c.GetDataDir(), "analytics", "events.jsonl")
}

// Keys lists the settable configuration keys in display order.
func Keys() []string {
	return []string{
		"backend", "data_dir", "duration_minutes", "notifier",
		"webhook_url", "listen_addr", "analytics", "debug",
	}
}

// Values returns every key with its effective value.
func (c *Config) Values() map[string]string {
	return map[string]string{
		"backend":          c.GetBackend(),
		"data_dir":         c.GetDataDir(),
		"duration_minutes": strconv.Itoa(int(c.GetDuration() / time.Minute)),
		"notifier":         c.GetNotifier(),
		"webhook_url":      c.WebhookURL,
		"listen_addr":      c.GetListenAddr(),
		"analytics":        strconv.FormatBool(c.AnalyticsEnabled()),
		"debug":            strconv.FormatBool(c.Debug),
	}
}

// Set updates one key from its string form.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)

	switch key {
	case "backend":
		if value != "sqlite" && value != "markdown" {
			return fmt.Errorf("invalid backend %q (use sqlite or markdown)", value)
		}
		c.Backend = value
	case "data_dir":
		c.DataDir = value
	case "duration_minutes":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid duration_minutes %q: must be a positive integer", value)
		}
		c.DurationMinutes = n
	case "notifier":
		if value != "console" && value != "desktop" && value != "webhook" {
			return fmt.Errorf("invalid notifier %q (use console, desktop, or webhook)", value)
		}
		c.Notifier = value
	case "webhook_url":
		if value != "" {
			u, err := url.Parse(value)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return fmt.Errorf("invalid webhook_url %q", value)
			}
		}
		c.WebhookURL = value
	case "listen_addr":
		c.ListenAddr = value
	case "analytics":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid analytics value %q: %w", value, err)
		}
		c.Analytics = &b
	case "debug":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid debug value %q: %w", value, err)
		}
		c.Debug = b
	default:
		keys := Keys()
		sort.Strings(keys)
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(keys, ", "))
	}
	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage creates a Repository implementation based on the configured backend.
func (c *Config) OpenStorage() (storage.Repository, error) {
	backend := c.GetBackend()
	dataDir := c.GetDataDir()

	switch backend {
	case "sqlite":
		return storage.Open(filepath.Join(dataDir, "nowfocus.db"))
	case "markdown":
		return storage.NewMarkdownStore(dataDir)
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "nowfocus", "config.json")
}

// Load reads config from disk.
func Load() (*Config, error) {
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
