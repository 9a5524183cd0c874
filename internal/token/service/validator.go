package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"domreg/internal/token/models"
	"domreg/pkg/domain"
)

// ValidateAgainstRequest checks whether a loaded token is usable for the
// requesting registrar and domain at the given time. It is pure: the caller
// decides whether a failure is a hard client error (explicitly supplied
// token) or a reason to skip a default candidate.
//
// Check order matters for error reporting: redemption state, registrar
// allowlist, promotion window, exact-domain binding.
func ValidateAgainstRequest(tok *models.Token, registrarID domain.RegistrarID, name domain.DomainName, now time.Time) error {
	if tok.IsRedeemed() {
		return models.ErrAlreadyRedeemed
	}
	if len(tok.AllowedRegistrarIDs) > 0 && !slices.Contains(tok.AllowedRegistrarIDs, registrarID) {
		return models.ErrNotValidForRegistrar
	}
	// Tokens without a promotional window carry the single initial
	// NOT_STARTED entry; the status check applies only to non-trivial
	// schedules.
	if !tok.StatusSchedule.IsTrivial() && tok.StatusSchedule.ValueAt(now) != models.StatusValid {
		return models.ErrNotInPromotionPeriod
	}
	if tok.DomainName != "" && tok.DomainName != name.String() {
		return models.ErrNotValidForDomain
	}
	return nil
}

// ValidateAgainstDomainPolicy checks whether a token that already passed
// request-scope validation applies to this particular domain command:
// premium discounting, allowed command kinds, allowed TLDs, and the
// exact-domain binding (re-checked so the method stands alone when called
// without ValidateAgainstRequest).
//
// A failure here is not necessarily a client error; during default-token
// scanning it just disqualifies the candidate.
func (s *Service) ValidateAgainstDomainPolicy(ctx context.Context, tok *models.Token, name domain.DomainName, command domain.CommandKind, now time.Time) error {
	if tok.GrantsDiscount() && !tok.DiscountPremiums {
		premium, err := s.premium.IsPremium(ctx, name, now)
		if err != nil {
			return fmt.Errorf("premium check for %s: %w", name, err)
		}
		if premium {
			return models.ErrNoPremiumDiscount
		}
	}
	if len(tok.AllowedCommands) > 0 && !slices.Contains(tok.AllowedCommands, command) {
		return models.ErrNotValidForCommand
	}
	if len(tok.AllowedTLDs) > 0 && !slices.Contains(tok.AllowedTLDs, name.ParentTLD()) {
		return models.ErrNotValidForTLD
	}
	if tok.DomainName != "" && tok.DomainName != name.String() {
		return models.ErrNotValidForDomain
	}
	return nil
}
