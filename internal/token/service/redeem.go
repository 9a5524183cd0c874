package service

import (
	"context"
	"fmt"

	"domreg/internal/token/models"
	"domreg/pkg/domain"
)

// Redeem returns the redeemed copy of a single-use token, tied to the
// history entry of the command that consumed it. It is pure and does not
// persist: the caller stores the result inside the same transaction as the
// domain mutation so a crash between validation and persistence cannot
// double-spend the token.
//
// Calling Redeem on a non-single-use token is a caller bug and fails with
// ErrNotRedeemable.
func Redeem(tok *models.Token, historyID domain.HistoryEntryID) (models.Token, error) {
	if !tok.Type.IsOneTimeUse() {
		return models.Token{}, models.ErrNotRedeemable
	}
	return tok.WithRedemption(historyID), nil
}

// Redeem is the method form used by command flows: it marks the token
// redeemed, persists the copy through the store (joining the ambient
// transaction), and counts the redemption.
func (s *Service) Redeem(ctx context.Context, tok *models.Token, historyID domain.HistoryEntryID) (models.Token, error) {
	redeemed, err := Redeem(tok, historyID)
	if err != nil {
		return models.Token{}, err
	}
	if err := s.tokens.Put(ctx, &redeemed); err != nil {
		return models.Token{}, fmt.Errorf("persist redeemed token %s: %w", tok.Key, err)
	}
	s.incrementRedemptions()
	return redeemed, nil
}
