//go:build integration

package pricing_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"domreg/internal/pricing"
	tldstore "domreg/internal/tld"
	"domreg/pkg/domain"
	"domreg/pkg/testutil/containers"
)

type CachedCheckerSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	tlds  *tldstore.InMemoryStore
	check *pricing.CachedChecker
	now   time.Time
}

func TestCachedCheckerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CachedCheckerSuite))
}

func (s *CachedCheckerSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.now = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
}

func (s *CachedCheckerSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.redis.FlushAll(ctx))

	s.tlds = tldstore.NewInMemory()
	t := tldstore.New("example", "USD", 1300, 1100, s.now)
	t.PremiumLabels = []string{"rich"}
	s.Require().NoError(s.tlds.Put(ctx, &t))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.check = pricing.NewCachedChecker(
		pricing.NewLabelListChecker(s.tlds), s.redis.Client, time.Minute, logger)
}

func (s *CachedCheckerSuite) mustName(raw string) domain.DomainName {
	name, err := domain.ParseDomainName(raw)
	s.Require().NoError(err)
	return name
}

func (s *CachedCheckerSuite) TestMissPopulatesCache() {
	ctx := context.Background()

	premium, err := s.check.IsPremium(ctx, s.mustName("rich.example"), s.now)
	s.Require().NoError(err)
	s.True(premium)

	val, err := s.redis.Client.Get(ctx, "pricing:premium:rich.example").Result()
	s.Require().NoError(err)
	s.Equal("1", val)

	ttl, err := s.redis.Client.TTL(ctx, "pricing:premium:rich.example").Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
}

func (s *CachedCheckerSuite) TestNonPremiumCachedAsZero() {
	ctx := context.Background()

	premium, err := s.check.IsPremium(ctx, s.mustName("plain.example"), s.now)
	s.Require().NoError(err)
	s.False(premium)

	val, err := s.redis.Client.Get(ctx, "pricing:premium:plain.example").Result()
	s.Require().NoError(err)
	s.Equal("0", val)
}

func (s *CachedCheckerSuite) TestHitSkipsUnderlyingChecker() {
	ctx := context.Background()
	name := s.mustName("rich.example")

	premium, err := s.check.IsPremium(ctx, name, s.now)
	s.Require().NoError(err)
	s.Require().True(premium)

	// Drop the label from configuration; the cached answer must stand
	// until the TTL expires.
	t, err := s.tlds.Get(ctx, "example")
	s.Require().NoError(err)
	updated := t.Clone()
	updated.PremiumLabels = nil
	s.Require().NoError(s.tlds.Put(ctx, &updated))

	premium, err = s.check.IsPremium(ctx, name, s.now)
	s.Require().NoError(err)
	s.True(premium)
}

func (s *CachedCheckerSuite) TestCachedAnswerFollowsStoredValue() {
	ctx := context.Background()
	name := s.mustName("plain.example")

	s.Require().NoError(s.redis.Client.Set(ctx, "pricing:premium:plain.example", "1", time.Minute).Err())

	premium, err := s.check.IsPremium(ctx, name, s.now)
	s.Require().NoError(err)
	s.True(premium)
}
