package bulkpricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"domreg/internal/billing"
	"domreg/internal/domains"
	"domreg/internal/token/models"
	"domreg/pkg/domain"
	"domreg/pkg/platform/sentinel"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func removalToken() *models.Token {
	tok, _ := models.StaticTokenByKey(models.RemoveBulkPricingTokenKey)
	return &tok
}

func discountToken() *models.Token {
	tok := models.New("promo", models.TypeSingleUse, now)
	tok.DiscountFraction = 0.1
	return &tok
}

func TestVerifyBulkTokenAllowedOnDomain(t *testing.T) {
	bulkKey := "bulk123"
	bulkDomain := &domains.Domain{RepoID: "2-EXAMPLE", CurrentBulkToken: &bulkKey}
	plainDomain := &domains.Domain{RepoID: "3-EXAMPLE"}

	tests := map[string]struct {
		dom     *domains.Domain
		tok     *models.Token
		wantErr error
	}{
		"bulk domain with removal token":    {bulkDomain, removalToken(), nil},
		"bulk domain without token":         {bulkDomain, nil, models.ErrMissingRemovalToken},
		"bulk domain with ordinary token":   {bulkDomain, discountToken(), models.ErrMissingRemovalToken},
		"plain domain with removal token":   {plainDomain, removalToken(), models.ErrRemovalTokenNotApplicable},
		"plain domain without token":        {plainDomain, nil, nil},
		"plain domain with ordinary token":  {plainDomain, discountToken(), nil},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			err := VerifyBulkTokenAllowedOnDomain(tc.dom, tc.tok)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

type CoordinatorSuite struct {
	suite.Suite
	recurrences *billing.InMemoryStore
	coordinator *Coordinator
	ctx         context.Context
	dom         *domains.Domain
}

func TestCoordinatorSuite(t *testing.T) {
	suite.Run(t, new(CoordinatorSuite))
}

func (s *CoordinatorSuite) SetupTest() {
	s.recurrences = billing.NewInMemory()
	s.coordinator = New(s.recurrences)
	s.ctx = context.Background()

	price := domain.NewMoney("USD", 1000)
	active, err := s.recurrences.Create(s.ctx, &billing.Recurrence{
		DomainRepoID:  "2-EXAMPLE",
		PriceBehavior: billing.BehaviorSpecified,
		RenewalPrice:  &price,
		CreatedAt:     now.Add(-24 * time.Hour),
	})
	s.Require().NoError(err)

	bulkKey := "bulk123"
	s.dom = &domains.Domain{
		RepoID:                "2-EXAMPLE",
		Name:                  "foo.example",
		TLD:                   "example",
		RegistrarID:           "TheRegistrar",
		CurrentBulkToken:      &bulkKey,
		AutorenewRecurrenceID: active.ID,
	}
}

func (s *CoordinatorSuite) TestRemovalTokenDetachesBulkPricing() {
	oldID := s.dom.AutorenewRecurrenceID

	updated, err := s.coordinator.MaybeApplyRemovalToken(s.ctx, s.dom, removalToken(), now)
	s.Require().NoError(err)

	s.Nil(updated.CurrentBulkToken)
	s.NotEqual(oldID, updated.AutorenewRecurrenceID)

	// The old revision is closed, not deleted.
	old, err := s.recurrences.Get(s.ctx, oldID)
	s.Require().NoError(err)
	s.True(old.IsClosed())

	// The replacement renews at default pricing.
	replacement, err := s.recurrences.Get(s.ctx, updated.AutorenewRecurrenceID)
	s.Require().NoError(err)
	s.Equal(billing.BehaviorDefault, replacement.PriceBehavior)
	s.Nil(replacement.RenewalPrice)
	s.False(replacement.IsClosed())

	// The input domain is untouched.
	s.NotNil(s.dom.CurrentBulkToken)
	s.Equal(oldID, s.dom.AutorenewRecurrenceID)
}

func (s *CoordinatorSuite) TestOrdinaryTokenIsPassedThrough() {
	updated, err := s.coordinator.MaybeApplyRemovalToken(s.ctx, s.dom, discountToken(), now)
	s.Require().NoError(err)
	s.Same(s.dom, updated)
}

func (s *CoordinatorSuite) TestNilTokenIsPassedThrough() {
	updated, err := s.coordinator.MaybeApplyRemovalToken(s.ctx, s.dom, nil, now)
	s.Require().NoError(err)
	s.Same(s.dom, updated)
}

func (s *CoordinatorSuite) TestMissingRecurrenceFails() {
	s.dom.AutorenewRecurrenceID = 999

	_, err := s.coordinator.MaybeApplyRemovalToken(s.ctx, s.dom, removalToken(), now)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *CoordinatorSuite) TestAlreadySupersededRecurrenceFails() {
	active, err := s.recurrences.Get(s.ctx, s.dom.AutorenewRecurrenceID)
	s.Require().NoError(err)
	replacement := active.Superseding(now)
	_, err = s.recurrences.Supersede(s.ctx, active.ID, &replacement, now)
	s.Require().NoError(err)

	_, err = s.coordinator.MaybeApplyRemovalToken(s.ctx, s.dom, removalToken(), now)
	s.ErrorIs(err, sentinel.ErrSuperseded)
}
