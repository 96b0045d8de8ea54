// ABOUTME: De-duplicating orientation feed shared by all sensor sources.
// ABOUTME: Only forwards readings that differ from the previous one.
package motion

import (
	"context"
	"sync"
)

// Feed collects orientation readings from any number of sources and
// forwards changes to a single consumer channel.
type Feed struct {
	mu     sync.Mutex
	out    chan Orientation
	last   Orientation
	seen   bool
	dedup  bool
	closed bool
}

// NewFeed creates a feed with the given channel buffer size.
func NewFeed(buffer int) *Feed {
	return &Feed{out: make(chan Orientation, buffer)}
}

// Events returns the channel the timer consumes.
func (f *Feed) Events() <-chan Orientation {
	return f.out
}

// Publish records a reading. It returns false when the reading was dropped
// because it repeats the previous one or the feed is closed. Publish blocks
// while the buffer is full until ctx is done.
func (f *Feed) Publish(ctx context.Context, o Orientation) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed || (f.dedup && f.last == o) {
		return false
	}

	select {
	case f.out <- o:
		f.last = o
		f.seen = true
		f.dedup = true
		return true
	case <-ctx.Done():
		return false
	}
}

// Last returns the most recent forwarded reading.
func (f *Feed) Last() (Orientation, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last, f.seen
}

// Reset makes the next reading forward even if it repeats the last one.
// Last keeps reporting the previous reading.
func (f *Feed) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dedup = false
}

// Close closes the consumer channel. Further publishes are dropped.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.out)
	}
}
