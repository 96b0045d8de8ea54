// ABOUTME: Export and import functionality for focus data.
// ABOUTME: Supports JSON, YAML, and Markdown export formats over any Repository.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/nowfocus/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportVersion is the current export format version.
const ExportVersion = "1.0"

// ExportData represents the full export format for focus data.
type ExportData struct {
	Version     string                 `json:"version" yaml:"version"`
	ExportedAt  time.Time              `json:"exported_at" yaml:"exported_at"`
	Tool        string                 `json:"tool" yaml:"tool"`
	Categories  []string               `json:"categories" yaml:"categories"`
	Habits      []*models.Habit        `json:"habits" yaml:"habits"`
	History     []*models.FocusHistory `json:"history" yaml:"history"`
	Preferences map[string]string      `json:"preferences,omitempty" yaml:"preferences,omitempty"`
	Reminder    *models.Reminder       `json:"reminder,omitempty" yaml:"reminder,omitempty"`
}

// collectData gathers everything a repository holds into an ExportData.
func collectData(repo Repository, prefs map[string]string) (*ExportData, error) {
	categories, err := repo.ListCategories()
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	habits, err := repo.ListHabits()
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	history, err := repo.ListHistory(HistoryFilter{})
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	reminder, err := repo.GetReminder()
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get reminder: %w", err)
	}

	return &ExportData{
		Version:     ExportVersion,
		ExportedAt:  time.Now(),
		Tool:        "nowfocus",
		Categories:  categories,
		Habits:      habits,
		History:     history,
		Preferences: prefs,
		Reminder:    reminder,
	}, nil
}

// importInto writes data into repo. Existing categories are skipped;
// duplicate habits or history IDs fail.
func importInto(repo Repository, data *ExportData) error {
	for _, c := range data.Categories {
		if err := repo.AddCategory(c); err != nil && !errors.Is(err, ErrDuplicateCategory) {
			return fmt.Errorf("import category: %w", err)
		}
	}

	for _, h := range data.Habits {
		h.History = nil
		if err := repo.CreateHabit(h); err != nil {
			return fmt.Errorf("import habit: %w", err)
		}
	}

	for _, h := range data.History {
		if err := repo.CreateHistory(h); err != nil {
			return fmt.Errorf("import history: %w", err)
		}
	}

	keys := make([]string, 0, len(data.Preferences))
	for k := range data.Preferences {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := repo.SetPreference(k, data.Preferences[k]); err != nil {
			return fmt.Errorf("import preference: %w", err)
		}
	}

	if data.Reminder != nil {
		if err := repo.SaveReminder(data.Reminder); err != nil {
			return fmt.Errorf("import reminder: %w", err)
		}
	}
	return nil
}

// GetAllData retrieves all data for export.
func (d *DB) GetAllData() (*ExportData, error) {
	prefs, err := d.listPreferences()
	if err != nil {
		return nil, err
	}
	return collectData(d, prefs)
}

// ImportData imports data from an export file.
func (d *DB) ImportData(data *ExportData) error {
	return importInto(d, data)
}

// ExportJSON exports all data as JSON.
func ExportJSON(repo Repository) ([]byte, error) {
	data, err := repo.GetAllData()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ImportJSON imports data from JSON bytes.
func ImportJSON(repo Repository, raw []byte) (*ExportData, error) {
	var data ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("unmarshal JSON: %w", err)
	}
	if err := repo.ImportData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

type yamlSession struct {
	ID       string `yaml:"id"`
	Start    string `yaml:"start"`
	Duration string `yaml:"duration"`
	Planned  string `yaml:"planned"`
	Habit    string `yaml:"habit,omitempty"`
}

type yamlHabit struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Reason string `yaml:"reason,omitempty"`
}

type yamlReminder struct {
	Enabled bool   `yaml:"enabled"`
	Time    string `yaml:"time"`
	Days    string `yaml:"days"`
}

// ExportYAML exports all data as YAML with sessions grouped by category.
func ExportYAML(repo Repository) ([]byte, error) {
	data, err := repo.GetAllData()
	if err != nil {
		return nil, err
	}

	habitNames := make(map[uuid.UUID]string)
	out := struct {
		Version    string                   `yaml:"version"`
		ExportedAt string                   `yaml:"exported_at"`
		Tool       string                   `yaml:"tool"`
		Categories []string                 `yaml:"categories"`
		Habits     []yamlHabit              `yaml:"habits,omitempty"`
		Sessions   map[string][]yamlSession `yaml:"sessions"`
		Reminder   *yamlReminder            `yaml:"reminder,omitempty"`
	}{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		Categories: data.Categories,
		Sessions:   make(map[string][]yamlSession),
	}

	for _, h := range data.Habits {
		habitNames[h.ID] = h.Name
		yh := yamlHabit{ID: h.ID.String()[:8], Name: h.Name}
		if h.Reason != nil {
			yh.Reason = *h.Reason
		}
		out.Habits = append(out.Habits, yh)
	}

	for _, h := range data.History {
		group := h.CategoryName()
		ys := yamlSession{
			ID:       h.ID.String()[:8],
			Start:    h.StartDate.Format(time.RFC3339),
			Duration: h.Duration.String(),
			Planned:  h.Planned.String(),
		}
		if h.HabitID != nil {
			ys.Habit = habitNames[*h.HabitID]
			if group == "" {
				group = "habits"
			}
		}
		if group == "" {
			group = "uncategorized"
		}
		out.Sessions[group] = append(out.Sessions[group], ys)
	}

	if data.Reminder != nil {
		out.Reminder = &yamlReminder{
			Enabled: data.Reminder.Enabled,
			Time:    data.Reminder.Time,
			Days:    data.Reminder.FormatWeekdays(),
		}
	}

	return yaml.Marshal(out)
}

// ExportMarkdown exports sessions as Markdown tables grouped by category.
// A nil category exports every session; since filters by start date.
func ExportMarkdown(repo Repository, category *string, since *time.Time) (string, error) {
	filter := HistoryFilter{Category: category}
	if since != nil {
		filter.Since = *since
	}
	history, err := repo.ListHistory(filter)
	if err != nil {
		return "", err
	}
	habits, err := repo.ListHabits()
	if err != nil {
		return "", err
	}
	habitNames := make(map[uuid.UUID]string, len(habits))
	for _, h := range habits {
		habitNames[h.ID] = h.Name
	}

	var sb strings.Builder
	now := time.Now()

	sb.WriteString(fmt.Sprintf("# Focus Export - %s\n\n", now.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	grouped := make(map[string][]*models.FocusHistory)
	for _, h := range history {
		group := h.CategoryName()
		if h.HabitID != nil {
			if name, ok := habitNames[*h.HabitID]; ok {
				group = "Habit: " + name
			}
		}
		if group == "" {
			group = "Uncategorized"
		}
		grouped[group] = append(grouped[group], h)
	}

	groups := make([]string, 0, len(grouped))
	for g := range grouped {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	for _, g := range groups {
		var total time.Duration
		sb.WriteString(fmt.Sprintf("## %s\n\n", g))
		sb.WriteString("| Date | Duration | Planned |\n")
		sb.WriteString("|------|----------|---------|\n")
		for _, h := range grouped[g] {
			total += h.Duration
			sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n",
				h.StartDate.Local().Format("2006-01-02 15:04"),
				FormatDuration(h.Duration), FormatDuration(h.Planned)))
		}
		sb.WriteString(fmt.Sprintf("\nTotal: %s\n\n", FormatDuration(total)))
	}

	return sb.String(), nil
}

// FormatDuration renders a duration as "1h 05m", "25m", or "40s".
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %02dm", h, m)
	case m > 0 && s > 0:
		return fmt.Sprintf("%dm %02ds", m, s)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
