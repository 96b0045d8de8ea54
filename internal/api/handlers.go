// ABOUTME: HTTP handlers for the focus API.
// ABOUTME: JSON in and out; storage errors map to HTTP status codes.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/harperreed/nowfocus/internal/focus"
	"github.com/harperreed/nowfocus/internal/logger"
	"github.com/harperreed/nowfocus/internal/models"
	"github.com/harperreed/nowfocus/internal/motion"
	"github.com/harperreed/nowfocus/internal/storage"
	"github.com/harperreed/nowfocus/internal/timer"
)

// OrientationRequest carries one sensor reading. Either field may be set.
type OrientationRequest struct {
	Orientation string `json:"orientation,omitempty"`
	FaceDown    *bool  `json:"face_down,omitempty"`
}

// CategoryRequest names the category the next session is recorded under.
type CategoryRequest struct {
	Category string `json:"category"`
}

// SessionResponse describes the running timer and the last finished session.
type SessionResponse struct {
	timer.Snapshot
	Clock       string               `json:"display"`
	Category    string               `json:"category,omitempty"`
	Orientation string               `json:"orientation,omitempty"`
	LastSession *models.FocusHistory `json:"last_session,omitempty"`
	LastStreak  int                  `json:"last_streak,omitempty"`
	LastSaveErr string               `json:"last_save_error,omitempty"`
}

// StreakResponse reports the current and best streaks for a target.
type StreakResponse struct {
	Streak  int `json:"streak"`
	Longest int `json:"longest"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func storageStatus(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrAmbiguousPrefix):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// HealthHandler reports liveness.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// OrientationHandler publishes a reading to the feed.
func (s *Server) OrientationHandler(w http.ResponseWriter, r *http.Request) {
	var req OrientationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid body: %w", err))
		return
	}

	var o motion.Orientation
	switch {
	case req.FaceDown != nil:
		o = motion.FromBool(*req.FaceDown)
	case req.Orientation != "":
		parsed, err := motion.Parse(req.Orientation)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		o = parsed
	default:
		writeError(w, http.StatusBadRequest, errors.New("orientation or face_down is required"))
		return
	}

	forwarded := s.feed.Publish(r.Context(), o)
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"orientation": o.String(),
		"forwarded":   forwarded,
	})
}

func (s *Server) sessionResponse() SessionResponse {
	snap := s.session.Snapshot()
	resp := SessionResponse{
		Snapshot: snap,
		Clock:    snap.Display(),
		Category: s.session.Target().Label(),
	}
	if o, ok := s.feed.Last(); ok {
		resp.Orientation = o.String()
	}
	if summary, ok := s.session.LastSummary(); ok {
		resp.LastSession = summary.History
		resp.LastStreak = summary.Streak
		if summary.SaveErr != nil {
			resp.LastSaveErr = summary.SaveErr.Error()
		}
	}
	return resp
}

// SessionHandler returns the timer state.
func (s *Server) SessionHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sessionResponse())
}

// AcknowledgeHandler confirms a pause alert or a finished session.
func (s *Server) AcknowledgeHandler(w http.ResponseWriter, r *http.Request) {
	changed, err := s.session.Acknowledge(r.Context())
	s.commandResponse(w, changed, err)
}

// AbortHandler discards the current session.
func (s *Server) AbortHandler(w http.ResponseWriter, r *http.Request) {
	changed, err := s.session.Abort(r.Context())
	s.commandResponse(w, changed, err)
}

// SelectCategoryHandler switches the session category between sessions.
func (s *Server) SelectCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid body: %w", err))
		return
	}
	if req.Category == "" {
		writeError(w, http.StatusBadRequest, errors.New("category is required"))
		return
	}

	if err := s.session.SelectCategory(req.Category); err != nil {
		switch {
		case errors.Is(err, focus.ErrUnknownCategory):
			writeError(w, http.StatusNotFound, err)
		case errors.Is(err, focus.ErrSessionActive):
			writeError(w, http.StatusConflict, err)
		default:
			writeError(w, http.StatusInternalServerError, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, s.sessionResponse())
}

func (s *Server) commandResponse(w http.ResponseWriter, changed bool, err error) {
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	status := http.StatusOK
	if !changed {
		status = http.StatusConflict
	}
	writeJSON(w, status, s.sessionResponse())
}

// targetFromQuery reads the category and habit query parameters.
func (s *Server) targetFromQuery(r *http.Request) (focus.Target, error) {
	q := r.URL.Query()
	if ref := q.Get("habit"); ref != "" {
		habit, err := s.repo.GetHabit(ref)
		if err != nil {
			return focus.Target{}, err
		}
		return focus.HabitTarget(habit.ID), nil
	}
	return focus.CategoryTarget(q.Get("category")), nil
}

// StreakHandler returns the current and longest streak.
func (s *Server) StreakHandler(w http.ResponseWriter, r *http.Request) {
	target, err := s.targetFromQuery(r)
	if err != nil {
		writeError(w, storageStatus(err), err)
		return
	}

	now := s.now()
	current, err := focus.CurrentStreak(s.repo, target, now)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	longest, err := focus.LongestStreak(s.repo, target, now.Location())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, StreakResponse{Streak: current, Longest: longest})
}

// HistoryHandler lists sessions, newest first. Supports category, habit,
// since (YYYY-MM-DD or RFC3339) and limit query parameters.
func (s *Server) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	target, err := s.targetFromQuery(r)
	if err != nil {
		writeError(w, storageStatus(err), err)
		return
	}

	filter := storage.HistoryFilter{Category: target.Category, HabitID: target.HabitID}
	q := r.URL.Query()
	if v := q.Get("since"); v != "" {
		since, err := parseSince(v, s.now().Location())
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		filter.Since = since
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
			return
		}
		filter.Limit = limit
	}

	history, err := s.repo.ListHistory(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if history == nil {
		history = []*models.FocusHistory{}
	}
	writeJSON(w, http.StatusOK, history)
}

// HistoryItemHandler returns one session by ID or prefix.
func (s *Server) HistoryItemHandler(w http.ResponseWriter, r *http.Request) {
	h, err := s.repo.GetHistory(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, storageStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

// HabitsHandler lists habits.
func (s *Server) HabitsHandler(w http.ResponseWriter, r *http.Request) {
	habits, err := s.repo.ListHabits()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if habits == nil {
		habits = []*models.Habit{}
	}
	writeJSON(w, http.StatusOK, habits)
}

// CategoriesHandler lists the saved categories.
func (s *Server) CategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := s.repo.ListCategories()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func parseSince(v string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", v, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid since %q: use YYYY-MM-DD or RFC3339", v)
	}
	return t, nil
}
