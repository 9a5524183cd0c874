package billing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"domreg/pkg/platform/sentinel"
)

// InMemoryStore is a mutex-guarded recurrence store for tests and
// single-node development.
type InMemoryStore struct {
	mu          sync.RWMutex
	nextID      int64
	recurrences map[int64]Recurrence
}

// NewInMemory creates an empty in-memory recurrence store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{nextID: 1, recurrences: make(map[int64]Recurrence)}
}

func (s *InMemoryStore) Get(ctx context.Context, id int64) (*Recurrence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.recurrences[id]
	if !ok {
		return nil, fmt.Errorf("recurrence %d: %w", id, sentinel.ErrNotFound)
	}
	out := r.Clone()
	return &out, nil
}

func (s *InMemoryStore) Create(ctx context.Context, r *Recurrence) (*Recurrence, error) {
	if r == nil {
		return nil, fmt.Errorf("recurrence is required")
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(r), nil
}

func (s *InMemoryStore) Supersede(ctx context.Context, oldID int64, replacement *Recurrence, now time.Time) (*Recurrence, error) {
	if replacement == nil {
		return nil, fmt.Errorf("replacement recurrence is required")
	}
	if err := replacement.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.recurrences[oldID]
	if !ok {
		return nil, fmt.Errorf("recurrence %d: %w", oldID, sentinel.ErrNotFound)
	}
	if old.IsClosed() {
		return nil, fmt.Errorf("recurrence %d: %w", oldID, sentinel.ErrSuperseded)
	}

	closedAt := now
	old.ClosedAt = &closedAt
	s.recurrences[oldID] = old

	return s.createLocked(replacement), nil
}

// createLocked assigns the next ID and stores a copy. Must be called while
// holding s.mu.
func (s *InMemoryStore) createLocked(r *Recurrence) *Recurrence {
	stored := r.Clone()
	stored.ID = s.nextID
	s.nextID++
	s.recurrences[stored.ID] = stored

	out := stored.Clone()
	return &out
}
