// ABOUTME: MarkdownStore keeps focus data as markdown files with YAML frontmatter.
// ABOUTME: History and habits are one file each; settings live in small YAML files.

package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/nowfocus/internal/models"
	"gopkg.in/yaml.v3"
)

// MarkdownStore provides file-based storage for focus data using markdown files.
type MarkdownStore struct {
	mu      sync.Mutex
	dataDir string
}

// Compile-time check that MarkdownStore implements Repository.
var _ Repository = (*MarkdownStore)(nil)

// NewMarkdownStore creates a new markdown-backed store rooted at dataDir.
func NewMarkdownStore(dataDir string) (*MarkdownStore, error) {
	if err := os.MkdirAll(dataDir, 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &MarkdownStore{dataDir: dataDir}, nil
}

// Close releases resources. For MarkdownStore this is a no-op.
func (s *MarkdownStore) Close() error {
	return nil
}

func (s *MarkdownStore) historyDir() string     { return filepath.Join(s.dataDir, "history") }
func (s *MarkdownStore) habitsDir() string      { return filepath.Join(s.dataDir, "habits") }
func (s *MarkdownStore) categoriesPath() string { return filepath.Join(s.dataDir, "categories.yaml") }
func (s *MarkdownStore) prefsPath() string      { return filepath.Join(s.dataDir, "preferences.yaml") }
func (s *MarkdownStore) reminderPath() string   { return filepath.Join(s.dataDir, "reminder.yaml") }

// historyFilePath returns history/YYYY/MM/YYYY-MM-DD-<label>-<id_prefix>.md.
func (s *MarkdownStore) historyFilePath(h *models.FocusHistory) string {
	start := h.StartDate.UTC()
	label := h.CategoryName()
	if label == "" {
		label = "focus"
	}
	return filepath.Join(s.historyDir(), start.Format("2006"), start.Format("01"),
		fmt.Sprintf("%s-%s-%s.md", start.Format("2006-01-02"), slugify(label), h.ID.String()[:8]))
}

// habitFilePath returns habits/<slug>-<id_prefix>.md.
func (s *MarkdownStore) habitFilePath(h *models.Habit) string {
	return filepath.Join(s.habitsDir(), fmt.Sprintf("%s-%s.md", slugify(h.Name), h.ID.String()[:8]))
}

type historyFrontmatter struct {
	ID              string `yaml:"id"`
	StartDate       string `yaml:"start_date"`
	DurationSeconds int64  `yaml:"duration_seconds"`
	PlannedSeconds  int64  `yaml:"planned_seconds"`
	Category        string `yaml:"category,omitempty"`
	HabitID         string `yaml:"habit_id,omitempty"`
	CreatedAt       string `yaml:"created_at"`
}

type habitFrontmatter struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	CreatedAt string `yaml:"created_at"`
}

func historyToFrontmatter(h *models.FocusHistory) historyFrontmatter {
	fm := historyFrontmatter{
		ID:              h.ID.String(),
		StartDate:       formatFileTime(h.StartDate),
		DurationSeconds: int64(h.Duration / time.Second),
		PlannedSeconds:  int64(h.Planned / time.Second),
		Category:        h.CategoryName(),
		CreatedAt:       formatFileTime(h.CreatedAt),
	}
	if h.HabitID != nil {
		fm.HabitID = h.HabitID.String()
	}
	return fm
}

func historyFromFrontmatter(fm *historyFrontmatter) (*models.FocusHistory, error) {
	id, err := uuid.Parse(fm.ID)
	if err != nil {
		return nil, fmt.Errorf("parse history ID %q: %w", fm.ID, err)
	}
	start, err := parseFileTime(fm.StartDate)
	if err != nil {
		return nil, fmt.Errorf("parse start_date %q: %w", fm.StartDate, err)
	}
	created, err := parseFileTime(fm.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", fm.CreatedAt, err)
	}

	h := &models.FocusHistory{
		ID:        id,
		StartDate: start,
		Duration:  time.Duration(fm.DurationSeconds) * time.Second,
		Planned:   time.Duration(fm.PlannedSeconds) * time.Second,
		CreatedAt: created,
	}
	h.WithCategory(fm.Category)
	if fm.HabitID != "" {
		habitID, err := uuid.Parse(fm.HabitID)
		if err != nil {
			return nil, fmt.Errorf("parse habit_id %q: %w", fm.HabitID, err)
		}
		h.WithHabit(habitID)
	}
	return h, nil
}

func readHistoryFile(path string) (*models.FocusHistory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	yamlStr, _ := parseFrontmatter(string(data))
	if yamlStr == "" {
		return nil, fmt.Errorf("no frontmatter in %s", path)
	}

	var fm historyFrontmatter
	if err := yaml.Unmarshal([]byte(yamlStr), &fm); err != nil {
		return nil, fmt.Errorf("parse frontmatter in %s: %w", path, err)
	}
	return historyFromFrontmatter(&fm)
}

func (s *MarkdownStore) writeHistoryFile(h *models.FocusHistory) error {
	fm := historyToFrontmatter(h)
	content, err := renderFrontmatter(&fm, "")
	if err != nil {
		return fmt.Errorf("render history file: %w", err)
	}
	return atomicWrite(s.historyFilePath(h), []byte(content))
}

func readHabitFile(path string) (*models.Habit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	yamlStr, body := parseFrontmatter(string(data))
	if yamlStr == "" {
		return nil, fmt.Errorf("no frontmatter in %s", path)
	}

	var fm habitFrontmatter
	if err := yaml.Unmarshal([]byte(yamlStr), &fm); err != nil {
		return nil, fmt.Errorf("parse frontmatter in %s: %w", path, err)
	}
	id, err := uuid.Parse(fm.ID)
	if err != nil {
		return nil, fmt.Errorf("parse habit ID %q: %w", fm.ID, err)
	}
	created, err := parseFileTime(fm.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", fm.CreatedAt, err)
	}

	h := &models.Habit{ID: id, Name: fm.Name, CreatedAt: created}
	h.WithReason(body)
	return h, nil
}

func (s *MarkdownStore) writeHabitFile(h *models.Habit) error {
	fm := habitFrontmatter{
		ID:        h.ID.String(),
		Name:      h.Name,
		CreatedAt: formatFileTime(h.CreatedAt),
	}
	body := ""
	if h.Reason != nil {
		body = "\n" + *h.Reason + "\n"
	}
	content, err := renderFrontmatter(&fm, body)
	if err != nil {
		return fmt.Errorf("render habit file: %w", err)
	}
	return atomicWrite(s.habitFilePath(h), []byte(content))
}

// walkMarkdown calls fn for every .md file under dir.
func walkMarkdown(dir string, fn func(path string) error) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}
		return fn(path)
	})
}

func (s *MarkdownStore) walkHistory(fn func(path string, h *models.FocusHistory) error) error {
	return walkMarkdown(s.historyDir(), func(path string) error {
		h, err := readHistoryFile(path)
		if err != nil {
			return fmt.Errorf("read history file %s: %w", path, err)
		}
		return fn(path, h)
	})
}

func (s *MarkdownStore) walkHabits(fn func(path string, h *models.Habit) error) error {
	return walkMarkdown(s.habitsDir(), func(path string) error {
		h, err := readHabitFile(path)
		if err != nil {
			return fmt.Errorf("read habit file %s: %w", path, err)
		}
		return fn(path, h)
	})
}

func (s *MarkdownStore) findHistory(idOrPrefix string) (string, *models.FocusHistory, error) {
	full := isFullUUID(idOrPrefix)
	var foundPath string
	var found *models.FocusHistory
	matches := 0

	err := s.walkHistory(func(path string, h *models.FocusHistory) error {
		idStr := h.ID.String()
		if full && idStr == idOrPrefix {
			foundPath, found, matches = path, h, 1
			return filepath.SkipAll
		}
		if !full && idOrPrefix != "" && strings.HasPrefix(idStr, idOrPrefix) {
			foundPath, found = path, h
			matches++
		}
		return nil
	})
	if err != nil {
		return "", nil, err
	}

	switch matches {
	case 0:
		return "", nil, notFound("history", idOrPrefix)
	case 1:
		return foundPath, found, nil
	default:
		return "", nil, ambiguous(idOrPrefix)
	}
}

func (s *MarkdownStore) findHabit(idPrefixOrName string) (string, *models.Habit, error) {
	full := isFullUUID(idPrefixOrName)
	var byName, byID *models.Habit
	var byNamePath, byIDPath string
	idMatches := 0

	err := s.walkHabits(func(path string, h *models.Habit) error {
		if h.Name == idPrefixOrName {
			byName, byNamePath = h, path
			return filepath.SkipAll
		}
		idStr := h.ID.String()
		if (full && idStr == idPrefixOrName) || (!full && idPrefixOrName != "" && strings.HasPrefix(idStr, idPrefixOrName)) {
			byID, byIDPath = h, path
			idMatches++
		}
		return nil
	})
	if err != nil {
		return "", nil, err
	}

	switch {
	case byName != nil:
		return byNamePath, byName, nil
	case idMatches == 1:
		return byIDPath, byID, nil
	case idMatches > 1:
		return "", nil, ambiguous(idPrefixOrName)
	default:
		return "", nil, notFound("habit", idPrefixOrName)
	}
}

// --- Repository interface methods ---

// CreateHistory stores a completed focus session as a markdown file.
func (s *MarkdownStore) CreateHistory(h *models.FocusHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := h.Validate(); err != nil {
		return fmt.Errorf("create history: %w", err)
	}
	if h.HabitID != nil {
		if _, _, err := s.findHabit(h.HabitID.String()); err != nil {
			return fmt.Errorf("create history: %w", err)
		}
	}
	if _, err := os.Stat(s.historyFilePath(h)); err == nil {
		return fmt.Errorf("create history: %s already exists", h.ID)
	}
	return s.writeHistoryFile(h)
}

// GetHistory retrieves a history record by ID or ID prefix.
func (s *MarkdownStore) GetHistory(idOrPrefix string) (*models.FocusHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, h, err := s.findHistory(idOrPrefix)
	return h, err
}

// ListHistory retrieves history sorted by StartDate descending.
func (s *MarkdownStore) ListHistory(filter HistoryFilter) ([]*models.FocusHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listHistory(filter)
}

func (s *MarkdownStore) listHistory(filter HistoryFilter) ([]*models.FocusHistory, error) {
	var out []*models.FocusHistory
	err := s.walkHistory(func(_ string, h *models.FocusHistory) error {
		if filter.Matches(h) {
			out = append(out, h)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].StartDate.After(out[j].StartDate)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// DeleteHistory removes a history file by ID or prefix.
func (s *MarkdownStore) DeleteHistory(idOrPrefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, _, err := s.findHistory(idOrPrefix)
	if err != nil {
		return fmt.Errorf("delete history: %w", err)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete history file: %w", err)
	}
	return nil
}

// deleteHistoryWhere removes every history file for which match returns true.
func (s *MarkdownStore) deleteHistoryWhere(match func(h *models.FocusHistory) bool) (int, error) {
	var paths []string
	err := s.walkHistory(func(path string, h *models.FocusHistory) error {
		if match(h) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	for _, p := range paths {
		if err := os.Remove(p); err != nil {
			return 0, fmt.Errorf("delete history file: %w", err)
		}
	}
	return len(paths), nil
}

// CreateHabit stores a new habit. Duplicate names fail with ErrDuplicateHabitName.
func (s *MarkdownStore) CreateHabit(h *models.Habit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h.Name = strings.TrimSpace(h.Name)
	if err := h.Validate(); err != nil {
		return &HabitSaveError{Name: h.Name, Err: err}
	}
	if err := s.checkHabitName(h); err != nil {
		return err
	}
	return s.writeHabitFile(h)
}

func (s *MarkdownStore) checkHabitName(h *models.Habit) error {
	duplicate := false
	err := s.walkHabits(func(_ string, other *models.Habit) error {
		if other.Name == h.Name && other.ID != h.ID {
			duplicate = true
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("check habit name: %w", err)
	}
	if duplicate {
		return &HabitSaveError{Name: h.Name, Err: ErrDuplicateHabitName}
	}
	return nil
}

// GetHabit retrieves a habit by exact name, ID, or ID prefix (without history).
func (s *MarkdownStore) GetHabit(idPrefixOrName string) (*models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, h, err := s.findHabit(idPrefixOrName)
	return h, err
}

// GetHabitWithHistory retrieves a habit with all its focus history.
func (s *MarkdownStore) GetHabitWithHistory(idPrefixOrName string) (*models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, h, err := s.findHabit(idPrefixOrName)
	if err != nil {
		return nil, err
	}
	history, err := s.listHistory(HistoryFilter{HabitID: &h.ID})
	if err != nil {
		return nil, fmt.Errorf("list habit history: %w", err)
	}
	for _, fh := range history {
		h.History = append(h.History, *fh)
	}
	return h, nil
}

// ListHabits returns all habits ordered by name.
func (s *MarkdownStore) ListHabits() ([]*models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var habits []*models.Habit
	err := s.walkHabits(func(_ string, h *models.Habit) error {
		habits = append(habits, h)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	sort.Slice(habits, func(i, j int) bool {
		return strings.ToLower(habits[i].Name) < strings.ToLower(habits[j].Name)
	})
	return habits, nil
}

// UpdateHabit renames a habit or changes its reason.
func (s *MarkdownStore) UpdateHabit(h *models.Habit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h.Name = strings.TrimSpace(h.Name)
	if err := h.Validate(); err != nil {
		return &HabitSaveError{Name: h.Name, Err: err}
	}
	oldPath, _, err := s.findHabit(h.ID.String())
	if err != nil {
		return err
	}
	if err := s.checkHabitName(h); err != nil {
		return err
	}
	if err := s.writeHabitFile(h); err != nil {
		return err
	}
	if newPath := s.habitFilePath(h); newPath != oldPath {
		if err := os.Remove(oldPath); err != nil {
			return fmt.Errorf("remove old habit file: %w", err)
		}
	}
	return nil
}

// DeleteHabit removes a habit file and its focus history.
func (s *MarkdownStore) DeleteHabit(idPrefixOrName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, h, err := s.findHabit(idPrefixOrName)
	if err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	if _, err := s.deleteHistoryWhere(func(fh *models.FocusHistory) bool {
		return fh.HabitID != nil && *fh.HabitID == h.ID
	}); err != nil {
		return fmt.Errorf("delete habit history: %w", err)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete habit file: %w", err)
	}
	return nil
}

func (s *MarkdownStore) loadCategories() ([]string, error) {
	var categories []string
	ok, err := readYAMLFile(s.categoriesPath(), &categories)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []string{models.DefaultCategory}, nil
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

// ListCategories returns the saved category list, or the default list when
// none was ever saved.
func (s *MarkdownStore) ListCategories() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadCategories()
}

// AddCategory appends a category to the list.
func (s *MarkdownStore) AddCategory(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name, err := normalizeCategory(name)
	if err != nil {
		return err
	}
	categories, err := s.loadCategories()
	if err != nil {
		return err
	}
	for _, c := range categories {
		if c == name {
			return fmt.Errorf("%w: %s", ErrDuplicateCategory, name)
		}
	}
	return writeYAMLFile(s.categoriesPath(), append(categories, name))
}

// RemoveCategory deletes a category and its history, returning the number of
// history records removed.
func (s *MarkdownStore) RemoveCategory(name string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	categories, err := s.loadCategories()
	if err != nil {
		return 0, err
	}

	kept := make([]string, 0, len(categories))
	for _, c := range categories {
		if c != name {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(categories) {
		return 0, notFound("category", name)
	}

	removed, err := s.deleteHistoryWhere(func(h *models.FocusHistory) bool {
		return h.Category != nil && *h.Category == name
	})
	if err != nil {
		return 0, fmt.Errorf("remove category history: %w", err)
	}
	if err := writeYAMLFile(s.categoriesPath(), kept); err != nil {
		return 0, err
	}
	return removed, nil
}

func (s *MarkdownStore) loadPreferences() (map[string]string, error) {
	prefs := map[string]string{}
	if _, err := readYAMLFile(s.prefsPath(), &prefs); err != nil {
		return nil, err
	}
	if prefs == nil {
		prefs = map[string]string{}
	}
	return prefs, nil
}

// GetPreference returns a stored preference and whether it was set.
func (s *MarkdownStore) GetPreference(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs, err := s.loadPreferences()
	if err != nil {
		return "", false, fmt.Errorf("get preference %s: %w", key, err)
	}
	v, ok := prefs[key]
	return v, ok, nil
}

// SetPreference stores a preference, replacing any previous value.
func (s *MarkdownStore) SetPreference(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs, err := s.loadPreferences()
	if err != nil {
		return fmt.Errorf("set preference %s: %w", key, err)
	}
	prefs[key] = value
	return writeYAMLFile(s.prefsPath(), prefs)
}

// GetReminder returns the daily reminder or ErrNotFound.
func (s *MarkdownStore) GetReminder() (*models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var r models.Reminder
	ok, err := readYAMLFile(s.reminderPath(), &r)
	if err != nil {
		return nil, fmt.Errorf("get reminder: %w", err)
	}
	if !ok {
		return nil, notFound("reminder", models.ReminderID)
	}
	return &r, nil
}

// SaveReminder creates or replaces the daily reminder.
func (s *MarkdownStore) SaveReminder(r *models.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := r.Validate(); err != nil {
		return fmt.Errorf("save reminder: %w", err)
	}
	r.ID = models.ReminderID
	return writeYAMLFile(s.reminderPath(), r)
}

// GetAllData retrieves all data for export.
func (s *MarkdownStore) GetAllData() (*ExportData, error) {
	prefs, err := func() (map[string]string, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.loadPreferences()
	}()
	if err != nil {
		return nil, err
	}
	return collectData(s, prefs)
}

// ImportData imports data from an export format.
func (s *MarkdownStore) ImportData(data *ExportData) error {
	return importInto(s, data)
}
