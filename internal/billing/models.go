package billing

import (
	"fmt"
	"time"

	"domreg/pkg/domain"
)

// RenewalPriceBehavior controls how a recurrence prices automatic renewals.
type RenewalPriceBehavior string

const (
	// BehaviorDefault renews at the TLD's standard (or premium) price.
	BehaviorDefault RenewalPriceBehavior = "DEFAULT"
	// BehaviorSpecified renews at the recurrence's explicit price, as bulk
	// pricing arrangements do.
	BehaviorSpecified RenewalPriceBehavior = "SPECIFIED"
	// BehaviorNonPremium renews at the standard price even for premium
	// names.
	BehaviorNonPremium RenewalPriceBehavior = "NONPREMIUM"
)

// Recurrence is one revision of a domain's automatic renewal billing
// arrangement. Recurrences are append-only: a pricing change closes the
// active revision and writes a new one, so billing history stays auditable.
type Recurrence struct {
	ID            int64
	DomainRepoID  string
	PriceBehavior RenewalPriceBehavior
	// RenewalPrice is set iff PriceBehavior is SPECIFIED.
	RenewalPrice *domain.Money
	CreatedAt    time.Time
	// ClosedAt marks the moment this revision was superseded; nil while
	// active.
	ClosedAt *time.Time
}

// Validate checks the recurrence invariants.
func (r Recurrence) Validate() error {
	if r.DomainRepoID == "" {
		return fmt.Errorf("recurrence must reference a domain")
	}
	switch r.PriceBehavior {
	case BehaviorDefault, BehaviorNonPremium:
		if r.RenewalPrice != nil {
			return fmt.Errorf("%s recurrence cannot carry an explicit price", r.PriceBehavior)
		}
	case BehaviorSpecified:
		if r.RenewalPrice == nil {
			return fmt.Errorf("%s recurrence requires an explicit price", r.PriceBehavior)
		}
	default:
		return fmt.Errorf("unknown renewal price behavior %q", r.PriceBehavior)
	}
	return nil
}

// IsClosed reports whether this revision has been superseded.
func (r Recurrence) IsClosed() bool {
	return r.ClosedAt != nil
}

// Superseding returns the replacement revision resetting the arrangement to
// default pricing. The receiver is unchanged; Store.Supersede persists both
// sides atomically.
func (r Recurrence) Superseding(now time.Time) Recurrence {
	return Recurrence{
		DomainRepoID:  r.DomainRepoID,
		PriceBehavior: BehaviorDefault,
		RenewalPrice:  nil,
		CreatedAt:     now,
	}
}

// Clone returns a deep copy safe for independent mutation.
func (r Recurrence) Clone() Recurrence {
	out := r
	if r.RenewalPrice != nil {
		price := *r.RenewalPrice
		out.RenewalPrice = &price
	}
	if r.ClosedAt != nil {
		t := *r.ClosedAt
		out.ClosedAt = &t
	}
	return out
}
