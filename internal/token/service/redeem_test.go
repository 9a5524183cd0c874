package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"domreg/internal/token/models"
	tokenstore "domreg/internal/token/store"
	"domreg/pkg/domain"
)

func TestRedeem(t *testing.T) {
	historyID := domain.NewHistoryEntryID("2-EXAMPLE", 42)

	t.Run("single use token is consumed", func(t *testing.T) {
		tok := models.New("abc123", models.TypeSingleUse, testNow)

		redeemed, err := Redeem(&tok, historyID)
		require.NoError(t, err)
		assert.True(t, redeemed.IsRedeemed())
		require.NotNil(t, redeemed.RedemptionHistoryID)
		assert.Equal(t, historyID, *redeemed.RedemptionHistoryID)

		// The input is untouched; persistence is the caller's job.
		assert.False(t, tok.IsRedeemed())
	})

	t.Run("unlimited use token is not redeemable", func(t *testing.T) {
		tok := models.New("abc123", models.TypeUnlimitedUse, testNow)
		_, err := Redeem(&tok, historyID)
		assert.ErrorIs(t, err, models.ErrNotRedeemable)
	})

	t.Run("default promo token is not redeemable", func(t *testing.T) {
		tok := models.New("promo", models.TypeDefaultPromo, testNow)
		_, err := Redeem(&tok, historyID)
		assert.ErrorIs(t, err, models.ErrNotRedeemable)
	})
}

func TestServiceRedeemPersists(t *testing.T) {
	ctx := context.Background()
	tokens := tokenstore.NewInMemory()
	svc := New(tokens, nil)
	historyID := domain.NewHistoryEntryID("2-EXAMPLE", 42)

	tok := models.New("abc123", models.TypeSingleUse, testNow)
	require.NoError(t, tokens.Put(ctx, &tok))

	_, err := svc.Redeem(ctx, &tok, historyID)
	require.NoError(t, err)

	stored, err := tokens.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.True(t, stored.IsRedeemed())

	// A second redemption attempt now fails request-scope validation.
	err = ValidateAgainstRequest(stored, "TheRegistrar", "foo.example", testNow)
	assert.ErrorIs(t, err, models.ErrAlreadyRedeemed)
}
