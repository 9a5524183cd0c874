package models

import "domreg/pkg/epperr"

// Validation failure variants. Callers match with errors.Is and decide
// whether a failure is a hard client error (explicitly supplied token) or a
// silent disqualification (default-token scanning).
//
// Registrar-facing messages stay at or under 32 characters so they fit in
// domain check responses.
var (
	// ErrNonexistentToken: the token string is empty or unknown.
	ErrNonexistentToken = epperr.New(epperr.CodeAuthorizationError, "The allocation token is invalid")
	// ErrAlreadyRedeemed: a single-use token was already spent.
	ErrAlreadyRedeemed = epperr.New(epperr.CodeStatusProhibits, "Alloc token was already redeemed")
	// ErrNotValidForRegistrar: the registrar allowlist excludes the caller.
	ErrNotValidForRegistrar = epperr.New(epperr.CodeStatusProhibits, "Alloc token invalid for client")
	// ErrNotInPromotionPeriod: the status schedule is not VALID at now.
	ErrNotInPromotionPeriod = epperr.New(epperr.CodeStatusProhibits, "Alloc token not in promo period")
	// ErrNotValidForDomain: the token is bound to a different exact domain.
	ErrNotValidForDomain = epperr.New(epperr.CodeStatusProhibits, "Alloc token invalid for domain")
	// ErrNotValidForCommand: the command kind is outside the allowed set.
	ErrNotValidForCommand = epperr.New(epperr.CodeStatusProhibits, "Alloc token invalid for action")
	// ErrNotValidForTLD: the domain's TLD is outside the allowed set.
	ErrNotValidForTLD = epperr.New(epperr.CodeStatusProhibits, "Alloc token invalid for TLD")
	// ErrNoPremiumDiscount: the token discounts, the name is premium, and
	// premium discounting is not enabled on the token.
	ErrNoPremiumDiscount = epperr.New(epperr.CodeStatusProhibits, "Alloc token invalid for premiums")

	// ErrMissingRemovalToken: renew/transfer on a bulk-priced domain without
	// the removal token.
	ErrMissingRemovalToken = epperr.New(epperr.CodeAssociationProhibits,
		"Domains that are inside bulk pricing cannot be explicitly renewed or transferred")
	// ErrRemovalTokenNotApplicable: removal token supplied for a domain with
	// no bulk pricing.
	ErrRemovalTokenNotApplicable = epperr.New(epperr.CodeAssociationProhibits,
		"__REMOVE_BULK_PRICING__ token is not allowed on non bulk pricing domains")

	// ErrNotRedeemable: redemption was invoked on a non-single-use token.
	// Caller bug, never registrar-facing.
	ErrNotRedeemable = epperr.New(epperr.CodeInternal, "only SINGLE_USE tokens can be marked as redeemed")
)
