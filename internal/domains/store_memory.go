package domains

import (
	"context"
	"fmt"
	"sync"

	"domreg/pkg/domain"
	"domreg/pkg/platform/sentinel"
)

// InMemoryStore is a mutex-guarded domain store for tests and single-node
// development.
type InMemoryStore struct {
	mu      sync.RWMutex
	domains map[domain.DomainName]Domain
}

// NewInMemory creates an empty in-memory domain store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{domains: make(map[domain.DomainName]Domain)}
}

func (s *InMemoryStore) Get(ctx context.Context, name domain.DomainName) (*Domain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.domains[name]
	if !ok {
		return nil, fmt.Errorf("domain %q: %w", name, sentinel.ErrNotFound)
	}
	out := d.Clone()
	return &out, nil
}

func (s *InMemoryStore) Put(ctx context.Context, d *Domain) error {
	if d == nil {
		return fmt.Errorf("domain is required")
	}
	if err := d.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.domains[d.Name] = d.Clone()
	return nil
}
