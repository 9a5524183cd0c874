package billing

import (
	"context"
	"time"
)

// Store persists billing recurrences. History is append-only: revisions are
// closed, never deleted or edited in place. Implementations return
// sentinel.ErrNotFound (optionally wrapped) for unknown IDs and
// sentinel.ErrSuperseded when asked to supersede an already-closed revision.
type Store interface {
	// Get returns the recurrence with the given ID, active or closed.
	Get(ctx context.Context, id int64) (*Recurrence, error)
	// Create persists a new recurrence and returns it with its assigned ID.
	Create(ctx context.Context, r *Recurrence) (*Recurrence, error)
	// Supersede atomically closes the given active revision and persists its
	// replacement, returning the replacement with its assigned ID. A domain
	// must never observe the old revision closed without the new one
	// present, so both writes share the ambient transaction.
	Supersede(ctx context.Context, oldID int64, replacement *Recurrence, now time.Time) (*Recurrence, error)
}
