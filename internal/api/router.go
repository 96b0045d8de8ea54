// ABOUTME: HTTP API for driving and inspecting the focus timer.
// ABOUTME: Routes orientation readings into the feed and exposes session, streak, and history.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/harperreed/nowfocus/internal/focus"
	"github.com/harperreed/nowfocus/internal/logger"
	"github.com/harperreed/nowfocus/internal/motion"
	"github.com/harperreed/nowfocus/internal/storage"
	"github.com/harperreed/nowfocus/internal/timer"
)

// Session is the part of the focus service the API drives.
type Session interface {
	Snapshot() timer.Snapshot
	Target() focus.Target
	LastSummary() (focus.Summary, bool)
	Acknowledge(ctx context.Context) (bool, error)
	Abort(ctx context.Context) (bool, error)
	SelectCategory(name string) error
}

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	repo    storage.Repository
	session Session
	feed    *motion.Feed
	now     func() time.Time
}

// NewServer creates a Server. Orientation readings are published to feed.
func NewServer(repo storage.Repository, session Session, feed *motion.Feed) *Server {
	return &Server{repo: repo, session: session, feed: feed, now: time.Now}
}

// NewRouter registers every route on a fresh router.
func NewRouter(s *Server) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.HealthHandler).Methods("GET")
	r.HandleFunc("/orientation", s.OrientationHandler).Methods("POST")
	r.HandleFunc("/session", s.SessionHandler).Methods("GET")
	r.HandleFunc("/session/acknowledge", s.AcknowledgeHandler).Methods("POST")
	r.HandleFunc("/session/abort", s.AbortHandler).Methods("POST")
	r.HandleFunc("/session/category", s.SelectCategoryHandler).Methods("PUT")
	r.HandleFunc("/streak", s.StreakHandler).Methods("GET")
	r.HandleFunc("/history", s.HistoryHandler).Methods("GET")
	r.HandleFunc("/history/{id}", s.HistoryItemHandler).Methods("GET")
	r.HandleFunc("/habits", s.HabitsHandler).Methods("GET")
	r.HandleFunc("/categories", s.CategoriesHandler).Methods("GET")
	r.Use(logRequests)
	return r
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("http request", "method", r.Method, "path", r.URL.Path, "took", time.Since(start))
	})
}

// ListenAndServe serves handler on addr until ctx is done, then shuts down.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
