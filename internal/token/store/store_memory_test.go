package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"domreg/internal/token/models"
	"domreg/pkg/domain"
	"domreg/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
	now   time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.now = time.Date(2025, 1, 10, 1, 0, 0, 0, time.UTC)
}

func (s *InMemoryStoreSuite) TestGet() {
	s.Run("unknown key returns not found", func() {
		_, err := s.store.Get(s.ctx, "missing")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("round trips a stored token", func() {
		tok := models.New("abc123", models.TypeSingleUse, s.now)
		tok.AllowedTLDs = []string{"example"}
		s.Require().NoError(s.store.Put(s.ctx, &tok))

		got, err := s.store.Get(s.ctx, "abc123")
		s.Require().NoError(err)
		s.Equal(tok, *got)
	})

	s.Run("returned token is a copy", func() {
		tok := models.New("copy1", models.TypeSingleUse, s.now)
		tok.AllowedTLDs = []string{"example"}
		s.Require().NoError(s.store.Put(s.ctx, &tok))

		got, err := s.store.Get(s.ctx, "copy1")
		s.Require().NoError(err)
		got.AllowedTLDs[0] = "mutated"

		again, err := s.store.Get(s.ctx, "copy1")
		s.Require().NoError(err)
		s.Equal("example", again.AllowedTLDs[0])
	})
}

func (s *InMemoryStoreSuite) TestGetAll() {
	a := models.New("tokenA", models.TypeDefaultPromo, s.now)
	c := models.New("tokenC", models.TypeDefaultPromo, s.now)
	s.Require().NoError(s.store.Put(s.ctx, &a))
	s.Require().NoError(s.store.Put(s.ctx, &c))

	got, err := s.store.GetAll(s.ctx, []string{"tokenA", "tokenB", "tokenC"})
	s.Require().NoError(err)
	s.Len(got, 2)
	s.Contains(got, "tokenA")
	s.Contains(got, "tokenC")
	s.NotContains(got, "tokenB")
}

func (s *InMemoryStoreSuite) TestPut() {
	s.Run("rejects nil token", func() {
		s.Error(s.store.Put(s.ctx, nil))
	})

	s.Run("rejects invalid token", func() {
		tok := models.New("", models.TypeSingleUse, s.now)
		s.Error(s.store.Put(s.ctx, &tok))
	})

	s.Run("replaces existing token", func() {
		tok := models.New("repl1", models.TypeSingleUse, s.now)
		s.Require().NoError(s.store.Put(s.ctx, &tok))

		redeemed := tok.WithRedemption(domain.NewHistoryEntryID("repoId", 1))
		s.Require().NoError(s.store.Put(s.ctx, &redeemed))

		got, err := s.store.Get(s.ctx, "repl1")
		s.Require().NoError(err)
		s.True(got.IsRedeemed())
	})
}
