package store

import (
	"context"

	"domreg/internal/token/models"
)

// Store loads and persists allocation tokens. Implementations return
// sentinel.ErrNotFound (optionally wrapped) for unknown keys and must hand
// out copies so callers cannot alias stored state.
//
// Reads tolerate snapshot staleness; writes join the ambient transaction
// (pkg/platform/tx) when one is present so redemption commits atomically
// with the domain command that consumed the token.
type Store interface {
	// Get returns the token with the given key.
	Get(ctx context.Context, key string) (*models.Token, error)
	// GetAll returns the tokens for the given keys. Missing keys are simply
	// absent from the result; the caller decides whether that is an error.
	GetAll(ctx context.Context, keys []string) (map[string]*models.Token, error)
	// Put creates or replaces a token.
	Put(ctx context.Context, token *models.Token) error
}
