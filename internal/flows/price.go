package flows

import (
	tldstore "domreg/internal/tld"
	"domreg/internal/token/models"
	"domreg/pkg/domain"
)

// commandPrice computes the total charge for a command: the TLD's base cost
// for the command kind times the period, adjusted by the applied token.
//
// A token's DiscountPrice replaces the per-year base outright;
// DiscountFraction reduces the total proportionally. Domain-policy
// validation has already settled whether the token may discount this name,
// so no premium check happens here.
func commandPrice(t *tldstore.Tld, command domain.CommandKind, years int, tok *models.Token) domain.Money {
	base := t.RenewCost
	if command == domain.CommandCreate {
		base = t.CreateCost
	}
	if tok != nil && tok.DiscountPrice != nil {
		base = *tok.DiscountPrice
	}
	total := base.Times(int64(years))
	if tok != nil && tok.DiscountPrice == nil && tok.DiscountFraction > 0 {
		total = total.MultipliedBy(1 - tok.DiscountFraction)
	}
	return total
}
