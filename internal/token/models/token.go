package models

import (
	"fmt"
	"slices"
	"time"

	"domreg/pkg/domain"
)

// TokenType controls whether successful use consumes the token.
type TokenType string

const (
	// TypeSingleUse tokens are redeemed on first successful use.
	TypeSingleUse TokenType = "SINGLE_USE"
	// TypeUnlimitedUse tokens may be used any number of times while valid.
	TypeUnlimitedUse TokenType = "UNLIMITED_USE"
	// TypeDefaultPromo tokens are applied automatically from a TLD's
	// default list; they are never redeemed.
	TypeDefaultPromo TokenType = "DEFAULT_PROMO"
)

// IsOneTimeUse reports whether redemption applies to this type.
func (t TokenType) IsOneTimeUse() bool {
	return t == TypeSingleUse
}

var knownTokenTypes = map[TokenType]bool{
	TypeSingleUse:    true,
	TypeUnlimitedUse: true,
	TypeDefaultPromo: true,
}

// TokenBehavior marks tokens with semantics beyond ordinary discounting.
type TokenBehavior string

const (
	// BehaviorDefault is an ordinary discount/promotional token.
	BehaviorDefault TokenBehavior = "DEFAULT"
	// BehaviorBulkPricing attaches a bulk pricing arrangement to a domain.
	BehaviorBulkPricing TokenBehavior = "BULK_PRICING"
	// BehaviorRemoveBulkPricing detaches a bulk pricing arrangement.
	BehaviorRemoveBulkPricing TokenBehavior = "REMOVE_BULK_PRICING"
)

// Token is an immutable promotional/discount credential. All mutations
// return a new value; stores persist and hand out copies. The zero value is
// invalid, use New.
//
// Invariants:
//   - Key is non-empty and unique
//   - Type is a known TokenType
//   - DiscountFraction is within [0, 1]
//   - RedemptionHistoryID may be set only on SINGLE_USE tokens; its
//     presence means the token is permanently spent
type Token struct {
	Key                 string
	Type                TokenType
	Behavior            TokenBehavior
	DiscountFraction    float64
	DiscountPrice       *domain.Money
	DiscountPremiums    bool
	AllowedCommands     []domain.CommandKind
	AllowedTLDs         []string
	AllowedRegistrarIDs []domain.RegistrarID
	// DomainName restricts the token to one exact domain when non-empty
	// (anchor tenant registrations).
	DomainName          string
	StatusSchedule      StatusSchedule
	RedemptionHistoryID *domain.HistoryEntryID
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// New constructs a token with a trivial status schedule and default
// behavior. Callers set restriction fields before Validate/persist.
func New(key string, typ TokenType, now time.Time) Token {
	return Token{
		Key:            key,
		Type:           typ,
		Behavior:       BehaviorDefault,
		StatusSchedule: TrivialSchedule(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Validate checks the token invariants.
func (t Token) Validate() error {
	if t.Key == "" {
		return fmt.Errorf("token key cannot be empty")
	}
	if !knownTokenTypes[t.Type] {
		return fmt.Errorf("unknown token type %q", t.Type)
	}
	if t.DiscountFraction < 0 || t.DiscountFraction > 1 {
		return fmt.Errorf("discount fraction must be within [0, 1], got %v", t.DiscountFraction)
	}
	if t.DiscountFraction != 0 && t.DiscountPrice != nil {
		return fmt.Errorf("discount fraction and discount price are mutually exclusive")
	}
	if t.RedemptionHistoryID != nil && !t.Type.IsOneTimeUse() {
		return fmt.Errorf("only %s tokens can carry a redemption", TypeSingleUse)
	}
	if t.StatusSchedule.Len() == 0 {
		return fmt.Errorf("token must carry a status schedule")
	}
	return nil
}

// IsRedeemed reports whether the token has already been spent.
func (t Token) IsRedeemed() bool {
	return t.RedemptionHistoryID != nil
}

// GrantsDiscount reports whether the token adjusts pricing at all.
func (t Token) GrantsDiscount() bool {
	return t.DiscountFraction != 0 || t.DiscountPrice != nil
}

// WithRedemption returns a redeemed copy tied to the consuming history
// entry. The receiver is unchanged.
func (t Token) WithRedemption(historyID domain.HistoryEntryID) Token {
	out := t.Clone()
	out.RedemptionHistoryID = &historyID
	return out
}

// Clone returns a deep copy safe for independent mutation.
func (t Token) Clone() Token {
	out := t
	out.AllowedCommands = slices.Clone(t.AllowedCommands)
	out.AllowedTLDs = slices.Clone(t.AllowedTLDs)
	out.AllowedRegistrarIDs = slices.Clone(t.AllowedRegistrarIDs)
	if t.DiscountPrice != nil {
		price := *t.DiscountPrice
		out.DiscountPrice = &price
	}
	if t.RedemptionHistoryID != nil {
		id := *t.RedemptionHistoryID
		out.RedemptionHistoryID = &id
	}
	// StatusSchedule is immutable by construction, shared safely.
	return out
}
