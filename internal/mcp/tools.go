// ABOUTME: MCP tool implementations for focus data.
// ABOUTME: History, streak, habit, category, and stats operations.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/nowfocus/internal/analytics"
	"github.com/harperreed/nowfocus/internal/focus"
	"github.com/harperreed/nowfocus/internal/models"
	"github.com/harperreed/nowfocus/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	// list_history
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_history",
		Description: "List recent focus sessions, optionally filtered by category or habit",
	}, s.handleListHistory)

	// get_streak
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_streak",
		Description: "Get the current consecutive-day focus streak",
	}, s.handleGetStreak)

	// add_habit
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_habit",
		Description: "Create a habit to focus on",
	}, s.handleAddHabit)

	// list_habits
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_habits",
		Description: "List habits with their total focus time",
	}, s.handleListHabits)

	// delete_habit
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_habit",
		Description: "Delete a habit and all of its focus history",
	}, s.handleDeleteHabit)

	// list_categories
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_categories",
		Description: "List focus categories",
	}, s.handleListCategories)

	// add_category
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_category",
		Description: "Add a focus category",
	}, s.handleAddCategory)

	// remove_category
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "remove_category",
		Description: "Remove a category and delete the sessions tagged with it",
	}, s.handleRemoveCategory)

	// get_stats
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_stats",
		Description: "Summarize focus time over the last N days",
	}, s.handleGetStats)
}

// Tool input/output types

type targetInput struct {
	Category string `json:"category,omitempty" jsonschema:"Filter by category"`
	Habit    string `json:"habit,omitempty" jsonschema:"Filter by habit name or ID prefix"`
}

type listHistoryInput struct {
	Category string `json:"category,omitempty" jsonschema:"Filter by category"`
	Habit    string `json:"habit,omitempty" jsonschema:"Filter by habit name or ID prefix"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type sessionOutput struct {
	ID        string `json:"id"`
	StartDate string `json:"start_date"`
	Duration  string `json:"duration"`
	Planned   string `json:"planned"`
	Category  string `json:"category,omitempty"`
	HabitID   string `json:"habit_id,omitempty"`
}

type streakOutput struct {
	Streak  int    `json:"streak"`
	Longest int    `json:"longest"`
	Message string `json:"message"`
}

type addHabitInput struct {
	Name   string `json:"name" jsonschema:"Habit name (must be unique)"`
	Reason string `json:"reason,omitempty" jsonschema:"Why this habit matters"`
}

type habitOutput struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Reason    string `json:"reason,omitempty"`
	Sessions  int    `json:"sessions"`
	TotalTime string `json:"total_time"`
	Message   string `json:"message,omitempty"`
}

type habitRefInput struct {
	Habit string `json:"habit" jsonschema:"Habit name or ID prefix"`
}

type categoryInput struct {
	Name string `json:"name" jsonschema:"Category name"`
}

type statsInput struct {
	Category string `json:"category,omitempty" jsonschema:"Filter by category"`
	Habit    string `json:"habit,omitempty" jsonschema:"Filter by habit name or ID prefix"`
	Days     int    `json:"days,omitempty" jsonschema:"Number of days to summarize (default 7, negative for all time)"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

// Tool handlers

func (s *Server) resolveTarget(in targetInput) (focus.Target, error) {
	if in.Habit != "" {
		h, err := s.repo.GetHabit(in.Habit)
		if err != nil {
			return focus.Target{}, fmt.Errorf("habit not found: %s", in.Habit)
		}
		return focus.HabitTarget(h.ID), nil
	}
	return focus.CategoryTarget(in.Category), nil
}

func toSessionOutput(h *models.FocusHistory) sessionOutput {
	out := sessionOutput{
		ID:        h.ID.String()[:8],
		StartDate: h.StartDate.Format(time.RFC3339),
		Duration:  storage.FormatDuration(h.Duration),
		Planned:   storage.FormatDuration(h.Planned),
		Category:  h.CategoryName(),
	}
	if h.HabitID != nil {
		out.HabitID = h.HabitID.String()[:8]
	}
	return out
}

func (s *Server) handleListHistory(ctx context.Context, req *mcp.CallToolRequest, input listHistoryInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	target, err := s.resolveTarget(targetInput{Category: input.Category, Habit: input.Habit})
	if err != nil {
		return nil, nil, err
	}

	history, err := s.repo.ListHistory(storage.HistoryFilter{
		Category: target.Category,
		HabitID:  target.HabitID,
		Limit:    input.Limit,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list history: %w", err)
	}

	if len(history) == 0 {
		return nil, map[string]interface{}{"message": "No focus sessions found."}, nil
	}

	out := make([]sessionOutput, len(history))
	for i, h := range history {
		out[i] = toSessionOutput(h)
	}
	return nil, map[string]interface{}{"sessions": out}, nil
}

func (s *Server) handleGetStreak(ctx context.Context, req *mcp.CallToolRequest, input targetInput) (*mcp.CallToolResult, streakOutput, error) {
	target, err := s.resolveTarget(input)
	if err != nil {
		return nil, streakOutput{}, err
	}

	now := s.now()
	current, err := focus.CurrentStreak(s.repo, target, now)
	if err != nil {
		return nil, streakOutput{}, fmt.Errorf("failed to compute streak: %w", err)
	}
	longest, err := focus.LongestStreak(s.repo, target, now.Location())
	if err != nil {
		return nil, streakOutput{}, fmt.Errorf("failed to compute streak: %w", err)
	}

	return nil, streakOutput{
		Streak:  current,
		Longest: longest,
		Message: fmt.Sprintf("%d consecutive days (best: %d)", current, longest),
	}, nil
}

func (s *Server) handleAddHabit(ctx context.Context, req *mcp.CallToolRequest, input addHabitInput) (*mcp.CallToolResult, habitOutput, error) {
	h := models.NewHabit(input.Name).WithReason(input.Reason)

	if err := s.repo.CreateHabit(h); err != nil {
		if errors.Is(err, storage.ErrDuplicateHabitName) {
			return nil, habitOutput{}, fmt.Errorf("a habit named %q already exists", h.Name)
		}
		return nil, habitOutput{}, fmt.Errorf("failed to create habit: %w", err)
	}

	out := toHabitOutput(h)
	out.Message = fmt.Sprintf("Added habit %s (ID: %s)", h.Name, out.ID)
	return nil, out, nil
}

func toHabitOutput(h *models.Habit) habitOutput {
	out := habitOutput{
		ID:        h.ID.String()[:8],
		Name:      h.Name,
		Sessions:  len(h.History),
		TotalTime: storage.FormatDuration(h.TotalDuration()),
	}
	if h.Reason != nil {
		out.Reason = *h.Reason
	}
	return out
}

func (s *Server) handleListHabits(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, any, error) {
	habits, err := s.repo.ListHabits()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list habits: %w", err)
	}

	if len(habits) == 0 {
		return nil, map[string]interface{}{"message": "No habits found."}, nil
	}

	out := make([]habitOutput, 0, len(habits))
	for _, h := range habits {
		full, err := s.repo.GetHabitWithHistory(h.ID.String())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load habit %s: %w", h.Name, err)
		}
		out = append(out, toHabitOutput(full))
	}
	return nil, map[string]interface{}{"habits": out}, nil
}

func (s *Server) handleDeleteHabit(ctx context.Context, req *mcp.CallToolRequest, input habitRefInput) (*mcp.CallToolResult, simpleOutput, error) {
	if err := s.repo.DeleteHabit(input.Habit); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete habit: %w", err)
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Deleted habit: %s", input.Habit),
	}, nil
}

func (s *Server) handleListCategories(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, any, error) {
	categories, err := s.repo.ListCategories()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list categories: %w", err)
	}

	selected, _, err := s.repo.GetPreference(storage.PrefSelectedCategory)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read selected category: %w", err)
	}

	return nil, map[string]interface{}{
		"categories": categories,
		"selected":   selected,
	}, nil
}

func (s *Server) handleAddCategory(ctx context.Context, req *mcp.CallToolRequest, input categoryInput) (*mcp.CallToolResult, simpleOutput, error) {
	if err := s.repo.AddCategory(input.Name); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to add category: %w", err)
	}

	s.tracker.Log(analytics.EventCategoryAdd, analytics.Params{analytics.ParamCategoryName: input.Name})
	return nil, simpleOutput{
		Message: fmt.Sprintf("Added category: %s", input.Name),
	}, nil
}

func (s *Server) handleRemoveCategory(ctx context.Context, req *mcp.CallToolRequest, input categoryInput) (*mcp.CallToolResult, simpleOutput, error) {
	removed, err := s.repo.RemoveCategory(input.Name)
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to remove category: %w", err)
	}

	s.tracker.Log(analytics.EventCategoryDelete, analytics.Params{analytics.ParamCategoryName: input.Name})
	return nil, simpleOutput{
		Message: fmt.Sprintf("Removed category %s and %d session(s)", input.Name, removed),
	}, nil
}

func (s *Server) handleGetStats(ctx context.Context, req *mcp.CallToolRequest, input statsInput) (*mcp.CallToolResult, any, error) {
	target, err := s.resolveTarget(targetInput{Category: input.Category, Habit: input.Habit})
	if err != nil {
		return nil, nil, err
	}

	days := input.Days
	if days == 0 {
		days = 7
	}
	now := s.now()
	var since time.Time
	if days > 0 {
		since = now.AddDate(0, 0, -days)
	}

	stats, err := focus.ComputeStats(s.repo, target, since, now)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compute stats: %w", err)
	}

	categories := make(map[string]string, len(stats.Categories))
	for _, c := range stats.Categories {
		name := c.Category
		if name == "" {
			name = "uncategorized"
		}
		categories[name] = storage.FormatDuration(c.Total)
	}

	presets, err := focus.PresetsCompletedToday(s.repo, target, now)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load today's presets: %w", err)
	}
	presetNames := make([]string, len(presets))
	for i, p := range presets {
		presetNames[i] = storage.FormatDuration(p)
	}

	return nil, map[string]interface{}{
		"days":                    days,
		"sessions":                stats.Sessions,
		"total":                   storage.FormatDuration(stats.Total),
		"extra":                   storage.FormatDuration(stats.Extra),
		"longest_session":         storage.FormatDuration(stats.Longest),
		"categories":              categories,
		"streak":                  stats.Streak,
		"best_streak":             stats.BestStreak,
		"presets_completed_today": presetNames,
	}, nil
}
