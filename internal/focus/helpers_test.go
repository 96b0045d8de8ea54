// ABOUTME: Shared fixtures for focus tests.
// ABOUTME: Temp SQLite store, fake ticker, and a recording analytics sink.
package focus

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/harperreed/nowfocus/internal/analytics"
	"github.com/harperreed/nowfocus/internal/models"
	"github.com/harperreed/nowfocus/internal/storage"
	"github.com/harperreed/nowfocus/internal/timer"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixedNow = time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *storage.DB {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "nowfocus.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func session(start time.Time, minutes int, category string) *models.FocusHistory {
	d := time.Duration(minutes) * time.Minute
	return models.NewFocusHistory(start, d).WithCategory(category)
}

func seed(t *testing.T, repo storage.Repository, hs ...*models.FocusHistory) {
	t.Helper()
	for _, h := range hs {
		require.NoError(t, repo.CreateHistory(h))
	}
}

type fakeTicker struct {
	c chan time.Time
}

func (f *fakeTicker) C() <-chan time.Time { return f.c }
func (f *fakeTicker) Stop()               {}

type recordingSink struct {
	mu     sync.Mutex
	events []analytics.Event
}

func (r *recordingSink) Record(e analytics.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingSink) Close() error { return nil }

func (r *recordingSink) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.events))
	for i, e := range r.events {
		names[i] = e.Name
	}
	return names
}

func (r *recordingSink) find(name string) (analytics.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.Name == name {
			return e, true
		}
	}
	return analytics.Event{}, false
}

// failingRepo rejects new history records.
type failingRepo struct {
	storage.Repository
	err error
}

func (f failingRepo) CreateHistory(*models.FocusHistory) error { return f.err }

// compile-time check that the fake ticker satisfies the runner.
var _ timer.Ticker = (*fakeTicker)(nil)
