package tld

import (
	"fmt"
	"slices"
	"time"

	"domreg/pkg/domain"
)

// Tld is the registry-side configuration of a top-level domain.
//
// DefaultTokenKeys is ordered: when a command arrives without a usable
// explicit token, the first listed token that passes validation is applied.
// Ranking is configuration, not scoring.
type Tld struct {
	Name             string
	DefaultTokenKeys []string
	PremiumLabels    []string
	Currency         string
	CreateCost       domain.Money
	RenewCost        domain.Money
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// New constructs a TLD with standard costs.
func New(name string, currency string, createCost, renewCost int64, now time.Time) Tld {
	return Tld{
		Name:       name,
		Currency:   currency,
		CreateCost: domain.NewMoney(currency, createCost),
		RenewCost:  domain.NewMoney(currency, renewCost),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate checks the TLD invariants.
func (t Tld) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("tld name cannot be empty")
	}
	if t.Currency == "" {
		return fmt.Errorf("tld %s must carry a currency", t.Name)
	}
	seen := make(map[string]bool, len(t.DefaultTokenKeys))
	for _, key := range t.DefaultTokenKeys {
		if key == "" {
			return fmt.Errorf("tld %s has an empty default token key", t.Name)
		}
		if seen[key] {
			return fmt.Errorf("tld %s lists default token %q twice", t.Name, key)
		}
		seen[key] = true
	}
	return nil
}

// IsPremiumLabel reports whether the given label is on the TLD's premium
// list.
func (t Tld) IsPremiumLabel(label string) bool {
	return slices.Contains(t.PremiumLabels, label)
}

// Clone returns a deep copy safe for independent mutation.
func (t Tld) Clone() Tld {
	out := t
	out.DefaultTokenKeys = slices.Clone(t.DefaultTokenKeys)
	out.PremiumLabels = slices.Clone(t.PremiumLabels)
	return out
}
