package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

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

func (s *InMemoryStoreSuite) bulkRecurrence() *Recurrence {
	price := domain.NewMoney("USD", 1000)
	return &Recurrence{
		DomainRepoID:  "2-EXAMPLE",
		PriceBehavior: BehaviorSpecified,
		RenewalPrice:  &price,
		CreatedAt:     s.now,
	}
}

func (s *InMemoryStoreSuite) TestCreate() {
	s.Run("assigns sequential ids", func() {
		first, err := s.store.Create(s.ctx, s.bulkRecurrence())
		s.Require().NoError(err)
		second, err := s.store.Create(s.ctx, s.bulkRecurrence())
		s.Require().NoError(err)
		s.Equal(first.ID+1, second.ID)
	})

	s.Run("rejects invalid recurrence", func() {
		_, err := s.store.Create(s.ctx, &Recurrence{PriceBehavior: BehaviorDefault})
		s.Error(err)
	})

	s.Run("rejects specified behavior without price", func() {
		_, err := s.store.Create(s.ctx, &Recurrence{
			DomainRepoID:  "2-EXAMPLE",
			PriceBehavior: BehaviorSpecified,
		})
		s.Error(err)
	})
}

func (s *InMemoryStoreSuite) TestSupersede() {
	s.Run("closes old revision and creates replacement", func() {
		old, err := s.store.Create(s.ctx, s.bulkRecurrence())
		s.Require().NoError(err)

		replacement := old.Superseding(s.now.Add(time.Hour))
		created, err := s.store.Supersede(s.ctx, old.ID, &replacement, s.now.Add(time.Hour))
		s.Require().NoError(err)

		s.NotEqual(old.ID, created.ID)
		s.Equal(BehaviorDefault, created.PriceBehavior)
		s.Nil(created.RenewalPrice)
		s.False(created.IsClosed())

		// Old revision stays readable with its original price.
		closed, err := s.store.Get(s.ctx, old.ID)
		s.Require().NoError(err)
		s.True(closed.IsClosed())
		s.Require().NotNil(closed.RenewalPrice)
		s.Equal(int64(1000), closed.RenewalPrice.Amount)
	})

	s.Run("unknown id returns not found", func() {
		replacement := Recurrence{
			DomainRepoID:  "2-EXAMPLE",
			PriceBehavior: BehaviorDefault,
			CreatedAt:     s.now,
		}
		_, err := s.store.Supersede(s.ctx, 999, &replacement, s.now)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("already closed revision cannot be superseded again", func() {
		old, err := s.store.Create(s.ctx, s.bulkRecurrence())
		s.Require().NoError(err)

		replacement := old.Superseding(s.now)
		_, err = s.store.Supersede(s.ctx, old.ID, &replacement, s.now)
		s.Require().NoError(err)

		second := old.Superseding(s.now)
		_, err = s.store.Supersede(s.ctx, old.ID, &second, s.now)
		s.ErrorIs(err, sentinel.ErrSuperseded)
	})
}
