// ABOUTME: Tracker stamps analytics events and fans them out to sinks.
// ABOUTME: Sinks are a debug log and a rotated JSONL file.
package analytics

import (
	"bufio"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/harperreed/nowfocus/internal/logger"
	"github.com/oklog/ulid/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Event is one recorded analytics event.
type Event struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Params    Params    `json:"params,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Sink receives recorded events.
type Sink interface {
	Record(e Event) error
	Close() error
}

// Tracker records events. The zero value and a nil *Tracker drop everything.
type Tracker struct {
	mu      sync.Mutex
	sinks   []Sink
	entropy io.Reader
	now     func() time.Time
	debug   bool
}

// NewTracker creates a tracker writing to sinks.
func NewTracker(debug bool, sinks ...Sink) *Tracker {
	return &Tracker{
		sinks:   sinks,
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
		debug:   debug,
	}
}

// WithClock replaces the time source. Used in tests.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// Log records a named event with a parameter map. Every event gets a
// timestamp parameter; sink failures are logged and otherwise ignored.
func (t *Tracker) Log(name string, params Params) Event {
	if t == nil {
		return Event{Name: name, Params: params}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	p := make(Params, len(params)+2)
	for k, v := range params {
		p[k] = v
	}
	p[ParamTimestamp] = now.Unix()
	if t.debug {
		p[ParamDebugMode] = true
	}

	e := Event{Name: name, Params: p, Timestamp: now}
	if t.entropy != nil {
		e.ID = ulid.MustNew(ulid.Timestamp(now), t.entropy).String()
	}

	for _, s := range t.sinks {
		if err := s.Record(e); err != nil {
			logger.Warn("analytics sink failed", "event", name, "err", err)
		}
	}
	return e
}

// Close closes every sink.
func (t *Tracker) Close() error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	var errs []error
	for _, s := range t.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogSink writes events to the global logger at debug level.
type LogSink struct{}

// Record logs the event name and parameters.
func (LogSink) Record(e Event) error {
	keys := make([]string, 0, len(e.Params))
	for k := range e.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kv := []interface{}{"event", e.Name, "id", e.ID}
	for _, k := range keys {
		kv = append(kv, k, e.Params[k])
	}
	logger.Debug("analytics", kv...)
	return nil
}

// Close is a no-op.
func (LogSink) Close() error { return nil }

// FileSink appends events as JSON lines to a rotated file.
type FileSink struct {
	w *lumberjack.Logger
}

// NewFileSink creates a JSONL sink at path.
func NewFileSink(path string) (*FileSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("create analytics directory: %w", err)
	}
	return &FileSink{w: &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // megabytes
		MaxBackups: 5,
		MaxAge:     90, // days
		Compress:   true,
	}}, nil
}

// Record writes one JSON line.
func (s *FileSink) Record(e Event) error {
	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	_, err = s.w.Write(append(line, '\n'))
	return err
}

// Close closes the underlying file.
func (s *FileSink) Close() error {
	return s.w.Close()
}

// ReadEvents parses a JSONL event log. Malformed lines are skipped.
func ReadEvents(r io.Reader) ([]Event, error) {
	var events []Event
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var e Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		events = append(events, e)
	}
	return events, scanner.Err()
}
