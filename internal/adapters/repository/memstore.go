package repository

import (
	"context"
	"sync"

	"github.com/okian/pinsight/internal/domain/model"
)

// MemStore implements Store with a mutex-guarded snapshot value. Snapshots
// are immutable once built, so handing out the value is safe.
type MemStore struct {
	mu   sync.RWMutex
	snap model.Snapshot
	set  bool
}

// NewMemStore creates an empty in-memory snapshot store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Current returns the active snapshot or ErrNoSnapshot.
func (s *MemStore) Current(_ context.Context) (model.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set {
		return model.Snapshot{}, ErrNoSnapshot
	}
	return s.snap, nil
}

// Replace atomically swaps in a freshly built snapshot.
func (s *MemStore) Replace(_ context.Context, snap model.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
	s.set = true
}

// Count returns the number of locations in the active snapshot.
func (s *MemStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snap.Pins)
}
