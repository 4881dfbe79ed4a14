// Package memory is an in-process volunteer store with the same contract as
// the DynamoDB store. Used for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"volunteermatch/internal/volunteer/models"
	"volunteermatch/pkg/platform/sentinel"
)

// InMemory keeps items keyed by PK+SK with a location index.
type InMemory struct {
	mu         sync.RWMutex
	items      map[string]*models.Item
	byLocation map[string][]string
}

// NewInMemory creates an empty store.
func NewInMemory() *InMemory {
	return &InMemory{
		items:      make(map[string]*models.Item),
		byLocation: make(map[string][]string),
	}
}

// Put stores a copy of item, replacing any item with the same primary key.
func (s *InMemory) Put(ctx context.Context, item *models.Item) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", sentinel.ErrStoreWrite, err)
	}
	if item == nil || item.PK == "" || item.SK == "" {
		return fmt.Errorf("%w: item must have PK and SK", sentinel.ErrStoreWrite)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := item.PK + "|" + item.SK
	if prev, ok := s.items[key]; ok {
		s.unindex(prev.GSI1PK, key)
	}
	cp := *item
	s.items[key] = &cp
	if cp.GSI1PK != "" {
		s.byLocation[cp.GSI1PK] = append(s.byLocation[cp.GSI1PK], key)
	}
	return nil
}

// QueryByLocation returns copies of the items indexed under location.
func (s *InMemory) QueryByLocation(ctx context.Context, location string) ([]*models.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", sentinel.ErrStoreQuery, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := s.byLocation[models.LocationKey(location)]
	items := make([]*models.Item, 0, len(keys))
	for _, key := range keys {
		cp := *s.items[key]
		items = append(items, &cp)
	}
	return items, nil
}

func (s *InMemory) unindex(gsi1pk, key string) {
	keys := s.byLocation[gsi1pk]
	for i, k := range keys {
		if k == key {
			s.byLocation[gsi1pk] = append(keys[:i], keys[i+1:]...)
			return
		}
	}
}
