package store

import (
	"context"
	"fmt"
	"sync"

	"domreg/internal/token/models"
	"domreg/pkg/platform/sentinel"
)

// InMemoryStore is a mutex-guarded token store for tests and single-node
// development. Production deployments use PostgresStore.
type InMemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]models.Token
}

// NewInMemory creates an empty in-memory token store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{tokens: make(map[string]models.Token)}
}

func (s *InMemoryStore) Get(ctx context.Context, key string) (*models.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tok, ok := s.tokens[key]
	if !ok {
		return nil, fmt.Errorf("token %q: %w", key, sentinel.ErrNotFound)
	}
	out := tok.Clone()
	return &out, nil
}

func (s *InMemoryStore) GetAll(ctx context.Context, keys []string) (map[string]*models.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*models.Token, len(keys))
	for _, key := range keys {
		if tok, ok := s.tokens[key]; ok {
			cp := tok.Clone()
			out[key] = &cp
		}
	}
	return out, nil
}

func (s *InMemoryStore) Put(ctx context.Context, token *models.Token) error {
	if token == nil {
		return fmt.Errorf("token is required")
	}
	if err := token.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token.Key] = token.Clone()
	return nil
}
