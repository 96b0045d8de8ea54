// ABOUTME: MCP resource implementations for focus data.
// ABOUTME: Provides focus://today, focus://streak, and focus://summary resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/nowfocus/internal/focus"
	"github.com/harperreed/nowfocus/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerResources() {
	// focus://today - Sessions finished today
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "focus://today",
		Name:        "Today's Focus",
		Description: "Focus sessions finished today and the presets they used",
		MIMEType:    "application/json",
	}, s.handleTodayResource)

	// focus://streak - Current and best streak, overall and per category
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "focus://streak",
		Name:        "Focus Streak",
		Description: "Consecutive-day streak overall and per category",
		MIMEType:    "application/json",
	}, s.handleStreakResource)

	// focus://summary - Last 7 days, habits, and categories
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "focus://summary",
		Name:        "Focus Summary Dashboard",
		Description: "Focus totals for the last 7 days plus habits and categories",
		MIMEType:    "application/json",
	}, s.handleSummaryResource)
}

func jsonResource(uri string, v interface{}) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// Resource handlers

func (s *Server) handleTodayResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	now := s.now()

	today, err := focus.Today(s.repo, focus.Target{}, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list today's sessions: %w", err)
	}

	sessions := make([]sessionOutput, len(today))
	var total time.Duration
	for i, h := range today {
		sessions[i] = toSessionOutput(h)
		total += h.Duration
	}

	presets, err := focus.PresetsCompletedToday(s.repo, focus.Target{}, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load presets: %w", err)
	}
	presetNames := make([]string, len(presets))
	for i, p := range presets {
		presetNames[i] = storage.FormatDuration(p)
	}

	return jsonResource("focus://today", map[string]interface{}{
		"date":              now.Format("2006-01-02"),
		"sessions":          sessions,
		"total":             storage.FormatDuration(total),
		"presets_completed": presetNames,
		"counts": map[string]int{
			"sessions": len(sessions),
		},
	})
}

func (s *Server) handleStreakResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	now := s.now()

	current, err := focus.CurrentStreak(s.repo, focus.Target{}, now)
	if err != nil {
		return nil, fmt.Errorf("failed to compute streak: %w", err)
	}
	longest, err := focus.LongestStreak(s.repo, focus.Target{}, now.Location())
	if err != nil {
		return nil, fmt.Errorf("failed to compute streak: %w", err)
	}

	categories, err := s.repo.ListCategories()
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	byCategory := make(map[string]int, len(categories))
	for _, c := range categories {
		days, err := focus.CurrentStreak(s.repo, focus.CategoryTarget(c), now)
		if err != nil {
			return nil, fmt.Errorf("failed to compute streak for %s: %w", c, err)
		}
		byCategory[c] = days
	}

	return jsonResource("focus://streak", map[string]interface{}{
		"as_of":       now.Format("2006-01-02"),
		"streak":      current,
		"best_streak": longest,
		"categories":  byCategory,
	})
}

func (s *Server) handleSummaryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	now := s.now()

	stats, err := focus.ComputeStats(s.repo, focus.Target{}, now.AddDate(0, 0, -7), now)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}

	habits, err := s.repo.ListHabits()
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	habitList := make([]habitOutput, 0, len(habits))
	for _, h := range habits {
		full, err := s.repo.GetHabitWithHistory(h.ID.String())
		if err != nil {
			return nil, fmt.Errorf("failed to load habit %s: %w", h.Name, err)
		}
		habitList = append(habitList, toHabitOutput(full))
	}

	categories, err := s.repo.ListCategories()
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	byCategory := make(map[string]string, len(stats.Categories))
	for _, c := range stats.Categories {
		name := c.Category
		if name == "" {
			name = "uncategorized"
		}
		byCategory[name] = storage.FormatDuration(c.Total)
	}

	return jsonResource("focus://summary", map[string]interface{}{
		"generated_at": now.Format(time.RFC3339),
		"last_7_days": map[string]interface{}{
			"sessions":   stats.Sessions,
			"total":      storage.FormatDuration(stats.Total),
			"extra":      storage.FormatDuration(stats.Extra),
			"categories": byCategory,
		},
		"streak":      stats.Streak,
		"best_streak": stats.BestStreak,
		"habits":      habitList,
		"categories":  categories,
	})
}
