package cart

import (
	"context"
	"sync"
)

type MemStore struct {
	mu sync.RWMutex
	m  map[string]Cart
}

func NewMemStore() *MemStore {
	return &MemStore{m: map[string]Cart{}}
}

func (s *MemStore) Ping(context.Context) error { return nil }

func (s *MemStore) Get(_ context.Context, userID string) (Cart, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.m[userID]
	if !ok {
		return Cart{}, false, nil
	}
	return c.Clone(), true, nil
}

func (s *MemStore) Save(_ context.Context, c Cart, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.m[c.UserID]
	switch {
	case !ok && expectedVersion != 0:
		return ErrConflict
	case ok && cur.Version != expectedVersion:
		return ErrConflict
	}

	s.m[c.UserID] = c.Clone()
	return nil
}
