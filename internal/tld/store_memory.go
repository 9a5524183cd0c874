package tld

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"domreg/pkg/platform/sentinel"
)

// InMemoryStore is a mutex-guarded TLD store for tests and single-node
// development.
type InMemoryStore struct {
	mu   sync.RWMutex
	tlds map[string]Tld
}

// NewInMemory creates an empty in-memory TLD store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{tlds: make(map[string]Tld)}
}

func (s *InMemoryStore) Get(ctx context.Context, name string) (*Tld, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tlds[name]
	if !ok {
		return nil, fmt.Errorf("tld %q: %w", name, sentinel.ErrNotFound)
	}
	out := t.Clone()
	return &out, nil
}

func (s *InMemoryStore) Put(ctx context.Context, t *Tld) error {
	if t == nil {
		return fmt.Errorf("tld is required")
	}
	if err := t.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tlds[t.Name] = t.Clone()
	return nil
}

func (s *InMemoryStore) List(ctx context.Context) ([]*Tld, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.tlds))
	for name := range s.tlds {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*Tld, 0, len(names))
	for _, name := range names {
		t := s.tlds[name].Clone()
		out = append(out, &t)
	}
	return out, nil
}
