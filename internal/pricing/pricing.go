// Package pricing answers premium-pricing questions about domain names.
//
// Premium names carry non-standard prices; token policy needs to know
// whether a name is premium before applying a discount.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	tldstore "domreg/internal/tld"
	"domreg/pkg/domain"
	"domreg/pkg/platform/sentinel"
)

// Checker reports whether a domain name is premium-priced at a point in
// time. The time parameter allows implementations backed by scheduled price
// list changes; the label-list implementation ignores it.
type Checker interface {
	IsPremium(ctx context.Context, name domain.DomainName, now time.Time) (bool, error)
}

// LabelListChecker answers from the TLD's configured premium label list.
type LabelListChecker struct {
	tlds tldstore.Store
}

// NewLabelListChecker constructs a premium checker over TLD configuration.
func NewLabelListChecker(tlds tldstore.Store) *LabelListChecker {
	return &LabelListChecker{tlds: tlds}
}

func (c *LabelListChecker) IsPremium(ctx context.Context, name domain.DomainName, now time.Time) (bool, error) {
	t, err := c.tlds.Get(ctx, name.ParentTLD())
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// Unknown TLD has no premium list; the command layer rejects
			// unknown TLDs before pricing is consulted.
			return false, nil
		}
		return false, fmt.Errorf("premium check for %s: %w", name, err)
	}
	return t.IsPremiumLabel(name.Label()), nil
}
