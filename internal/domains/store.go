package domains

import (
	"context"

	"domreg/pkg/domain"
)

// Store loads and persists registered domains. Implementations return
// sentinel.ErrNotFound (optionally wrapped) for unknown names and hand out
// copies. Writes join the ambient transaction when one is present.
type Store interface {
	Get(ctx context.Context, name domain.DomainName) (*Domain, error)
	Put(ctx context.Context, d *Domain) error
}
