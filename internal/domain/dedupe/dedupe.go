// Package dedupe tracks date+location record keys so duplicate submissions
// can be surfaced as a data-quality signal.
package dedupe

import (
	"fmt"
	"sync"
	"time"
)

// Tracker records seen record keys and reports repeats. Duplicates are a
// quality signal here, not grounds for rejection; the aggregator still
// accepts every validated record.
type Tracker interface {
	// SeenAndRecord atomically checks if key was seen and records it if
	// not. Returns true if key was already seen.
	SeenAndRecord(key string) bool

	// Size returns the number of tracked keys.
	Size() int

	// Reset clears all tracked keys, for the start of a new ingest batch.
	Reset()
}

// Key builds the canonical duplicate key for a record's date and pincode.
func Key(date time.Time, pincode string) string {
	return fmt.Sprintf("%s-%s", date.Format("2006-01-02"), pincode)
}

// Option applies a configuration option to the in-memory tracker.
type Option func(*inMemoryTracker)

// WithMaxSize bounds the number of tracked keys. When the bound is hit the
// oldest keys are evicted. Zero or negative means unbounded.
func WithMaxSize(maxSize int) Option {
	return func(t *inMemoryTracker) {
		t.maxSize = maxSize
	}
}

// inMemoryTracker implements Tracker with a map plus insertion-order
// eviction for bounded mode.
type inMemoryTracker struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	order   []string
	maxSize int
}

// NewInMemoryTracker creates a tracker with configuration options.
func NewInMemoryTracker(opts ...Option) Tracker {
	t := &inMemoryTracker{
		seen:    make(map[string]struct{}),
		maxSize: 100000, // default bound
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *inMemoryTracker) SeenAndRecord(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.seen[key]; ok {
		return true
	}

	if t.maxSize > 0 && len(t.seen) >= t.maxSize {
		oldest := t.order[0]
		t.order = t.order[1:]
		delete(t.seen, oldest)
	}

	t.seen[key] = struct{}{}
	t.order = append(t.order, key)
	return false
}

func (t *inMemoryTracker) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seen)
}

func (t *inMemoryTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seen = make(map[string]struct{})
	t.order = nil
}
