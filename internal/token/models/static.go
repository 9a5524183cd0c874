package models

// RemoveBulkPricingTokenKey is the reserved token string registrars supply
// to detach a bulk pricing arrangement from a domain. It resolves to an
// in-memory singleton; reserved keys never hit the store.
const RemoveBulkPricingTokenKey = "__REMOVE_BULK_PRICING__"

var staticTokens = map[string]Token{
	RemoveBulkPricingTokenKey: {
		Key:            RemoveBulkPricingTokenKey,
		Type:           TypeUnlimitedUse,
		Behavior:       BehaviorRemoveBulkPricing,
		StatusSchedule: TrivialSchedule(),
	},
}

// StaticTokenByKey resolves a reserved behavioral token. Static tokens skip
// request-scope validation entirely; they carry behavior, not eligibility.
func StaticTokenByKey(key string) (Token, bool) {
	tok, ok := staticTokens[key]
	if !ok {
		return Token{}, false
	}
	return tok.Clone(), true
}
