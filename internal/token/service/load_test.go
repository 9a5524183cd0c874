package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"domreg/internal/pricing/mocks"
	tldstore "domreg/internal/tld"
	"domreg/internal/token/models"
	tokenstore "domreg/internal/token/store"
	"domreg/pkg/domain"
)

type LoadSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	premium *mocks.MockChecker
	tokens  *tokenstore.InMemoryStore
	service *Service
	ctx     context.Context
	tld     *tldstore.Tld
}

func TestLoadSuite(t *testing.T) {
	suite.Run(t, new(LoadSuite))
}

func (s *LoadSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.premium = mocks.NewMockChecker(s.ctrl)
	s.tokens = tokenstore.NewInMemory()
	s.service = New(s.tokens, s.premium)
	s.ctx = context.Background()
	s.tld = &tldstore.Tld{Name: "example"}
	s.premium.EXPECT().IsPremium(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil).AnyTimes()
}

func (s *LoadSuite) put(tok models.Token) {
	s.Require().NoError(s.tokens.Put(s.ctx, &tok))
}

func (s *LoadSuite) resolve(explicit *string) (*models.Token, error) {
	return s.service.LoadFromExtensionOrDefault(s.ctx, "TheRegistrar", testNow, explicit, s.tld, "foo.example", domain.CommandCreate)
}

func ptr(s string) *string { return &s }

func (s *LoadSuite) TestNoExtensionNoDefaults() {
	tok, err := s.resolve(nil)
	s.NoError(err)
	s.Nil(tok)
}

func (s *LoadSuite) TestEmptyTokenStringIsNonexistent() {
	_, err := s.service.LoadFromExtension(s.ctx, "TheRegistrar", "foo.example", testNow, ptr(""))
	s.ErrorIs(err, models.ErrNonexistentToken)
}

func (s *LoadSuite) TestUnknownTokenIsNonexistent() {
	_, err := s.resolve(ptr("noSuchToken"))
	s.ErrorIs(err, models.ErrNonexistentToken)
}

func (s *LoadSuite) TestExplicitTokenWins() {
	s.put(models.New("explicit", models.TypeSingleUse, testNow))
	s.tld.DefaultTokenKeys = []string{"fallback"}
	fallback := models.New("fallback", models.TypeDefaultPromo, testNow)
	s.put(fallback)

	tok, err := s.resolve(ptr("explicit"))
	s.NoError(err)
	s.Require().NotNil(tok)
	s.Equal("explicit", tok.Key)
}

// An explicit token that is valid in itself but inapplicable to this
// domain (wrong TLD here) is not an error; the TLD defaults apply instead.
func (s *LoadSuite) TestInapplicableExplicitFallsThroughToDefault() {
	explicit := models.New("elsewhere", models.TypeSingleUse, testNow)
	explicit.AllowedTLDs = []string{"other"}
	s.put(explicit)
	s.put(models.New("fallback", models.TypeDefaultPromo, testNow))
	s.tld.DefaultTokenKeys = []string{"fallback"}

	tok, err := s.resolve(ptr("elsewhere"))
	s.NoError(err)
	s.Require().NotNil(tok)
	s.Equal("fallback", tok.Key)
}

func (s *LoadSuite) TestInapplicableExplicitWithNoDefaultsResolvesToNothing() {
	explicit := models.New("elsewhere", models.TypeSingleUse, testNow)
	explicit.AllowedTLDs = []string{"other"}
	s.put(explicit)

	tok, err := s.resolve(ptr("elsewhere"))
	s.NoError(err)
	s.Nil(tok)
}

// Request-scope failures on an explicit token are hard errors and never
// fall through, even when a default would have applied.
func (s *LoadSuite) TestRequestScopeFailureDoesNotFallThrough() {
	explicit := models.New("restricted", models.TypeSingleUse, testNow)
	explicit.AllowedRegistrarIDs = []domain.RegistrarID{"NewRegistrar"}
	s.put(explicit)
	s.put(models.New("fallback", models.TypeDefaultPromo, testNow))
	s.tld.DefaultTokenKeys = []string{"fallback"}

	_, err := s.resolve(ptr("restricted"))
	s.ErrorIs(err, models.ErrNotValidForRegistrar)
}

func (s *LoadSuite) TestDomainBoundExplicitForOtherDomainIsHardError() {
	explicit := models.New("anchored", models.TypeSingleUse, testNow)
	explicit.DomainName = "anchor.example"
	s.put(explicit)
	s.put(models.New("fallback", models.TypeDefaultPromo, testNow))
	s.tld.DefaultTokenKeys = []string{"fallback"}

	_, err := s.resolve(ptr("anchored"))
	s.ErrorIs(err, models.ErrNotValidForDomain)
}

func (s *LoadSuite) TestRedeemedExplicitIsHardError() {
	spent := models.New("spent", models.TypeSingleUse, testNow).
		WithRedemption(domain.NewHistoryEntryID("2-EXAMPLE", 11))
	s.put(spent)

	_, err := s.resolve(ptr("spent"))
	s.ErrorIs(err, models.ErrAlreadyRedeemed)
}

// The bulk pricing removal token is never persisted; it resolves in memory
// and skips eligibility checks entirely.
func (s *LoadSuite) TestStaticRemovalTokenResolvesWithoutStore() {
	tok, err := s.service.LoadFromExtension(s.ctx, "TheRegistrar", "foo.example", testNow, ptr(models.RemoveBulkPricingTokenKey))
	s.NoError(err)
	s.Require().NotNil(tok)
	s.Equal(models.BehaviorRemoveBulkPricing, tok.Behavior)
}

func (s *LoadSuite) TestPromoWindowEnforcedOnExplicit() {
	schedule, err := models.PromoSchedule(testNow.Add(24*time.Hour), testNow.Add(48*time.Hour))
	s.Require().NoError(err)
	explicit := models.New("early", models.TypeUnlimitedUse, testNow)
	explicit.StatusSchedule = schedule
	s.put(explicit)

	_, err = s.resolve(ptr("early"))
	s.ErrorIs(err, models.ErrNotInPromotionPeriod)
}
