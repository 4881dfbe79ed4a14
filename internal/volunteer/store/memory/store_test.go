package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"volunteermatch/internal/volunteer/models"
	"volunteermatch/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) newItem(id, location string) *models.Item {
	item, err := models.NewVolunteerItem(&models.Volunteer{
		ID:           id,
		Name:         "V " + id,
		Location:     location,
		Skills:       []string{"Tutor"},
		Availability: "WEEKDAYS",
		CreatedAt:    models.NewTimestamp(time.Now()),
	})
	s.Require().NoError(err)
	return item
}

func (s *InMemoryStoreSuite) TestQueryByLocation() {
	s.Require().NoError(s.store.Put(s.ctx, s.newItem("1", "London")))
	s.Require().NoError(s.store.Put(s.ctx, s.newItem("2", "london")))
	s.Require().NoError(s.store.Put(s.ctx, s.newItem("3", "Leeds")))

	s.Run("matches the uppercased location", func() {
		items, err := s.store.QueryByLocation(s.ctx, "LoNdOn")
		s.Require().NoError(err)
		s.Len(items, 2)
	})

	s.Run("unknown location is empty, not an error", func() {
		items, err := s.store.QueryByLocation(s.ctx, "York")
		s.Require().NoError(err)
		s.Empty(items)
	})

	s.Run("returned items are copies", func() {
		items, err := s.store.QueryByLocation(s.ctx, "Leeds")
		s.Require().NoError(err)
		items[0].EntityType = "Mutated"

		again, err := s.store.QueryByLocation(s.ctx, "Leeds")
		s.Require().NoError(err)
		s.Equal(models.EntityTypeVolunteer, again[0].EntityType)
	})
}

func (s *InMemoryStoreSuite) TestPutReplacesSameKey() {
	item := s.newItem("1", "London")
	s.Require().NoError(s.store.Put(s.ctx, item))

	moved := s.newItem("1", "Leeds")
	s.Require().NoError(s.store.Put(s.ctx, moved))

	london, err := s.store.QueryByLocation(s.ctx, "London")
	s.Require().NoError(err)
	s.Empty(london)

	leeds, err := s.store.QueryByLocation(s.ctx, "Leeds")
	s.Require().NoError(err)
	s.Len(leeds, 1)
}

func (s *InMemoryStoreSuite) TestErrors() {
	s.Run("rejects items without keys", func() {
		s.Require().ErrorIs(s.store.Put(s.ctx, &models.Item{}), sentinel.ErrStoreWrite)
	})

	s.Run("cancelled context", func() {
		ctx, cancel := context.WithCancel(s.ctx)
		cancel()
		s.Require().ErrorIs(s.store.Put(ctx, s.newItem("1", "London")), sentinel.ErrStoreWrite)
		_, err := s.store.QueryByLocation(ctx, "London")
		s.Require().ErrorIs(err, sentinel.ErrStoreQuery)
	})
}

func (s *InMemoryStoreSuite) TestConcurrentAccess() {
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.NoError(s.store.Put(s.ctx, s.newItem(fmt.Sprintf("v-%d", i), "London")))
			_, err := s.store.QueryByLocation(s.ctx, "London")
			s.NoError(err)
		}()
	}
	wg.Wait()

	items, err := s.store.QueryByLocation(s.ctx, "London")
	s.Require().NoError(err)
	s.Len(items, 50)
}
