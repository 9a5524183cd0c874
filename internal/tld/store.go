package tld

import "context"

// Store loads and persists TLD configuration. Implementations return
// sentinel.ErrNotFound (optionally wrapped) for unknown TLDs and hand out
// copies.
type Store interface {
	Get(ctx context.Context, name string) (*Tld, error)
	Put(ctx context.Context, t *Tld) error
	List(ctx context.Context) ([]*Tld, error)
}
