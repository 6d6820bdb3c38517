package catalog

import (
	"context"
	"sync"
	"time"
)

type MemStore struct {
	mu    sync.RWMutex
	m     map[string]Product
	order []string
}

func NewMemStore(seed ...Product) *MemStore {
	s := &MemStore{m: make(map[string]Product, len(seed))}
	for _, p := range seed {
		s.m[p.ID] = p
		s.order = append(s.order, p.ID)
	}
	return s
}

// DevSeed is the small catalog the memory store starts with outside tests.
func DevSeed() []Product {
	now := time.Now().UTC()
	was := 5499.0
	return []Product{
		{ID: "p1", Name: "Wireless Keyboard", Description: "Low-profile keyboard", Price: 4990, OriginalPrice: &was, Category: "Electronics", Brand: "Microsoft", Quantity: 25, Rating: 4.4, Reviews: 120, ImageURL: "https://cdn.example.com/p1.jpg", CreatedAt: now, UpdatedAt: now},
		{ID: "p2", Name: "Optical Mouse", Description: "Three-button mouse", Price: 1990, Category: "Electronics", Brand: "Sony", Quantity: 40, Rating: 4.1, Reviews: 58, ImageURL: "https://cdn.example.com/p2.jpg", CreatedAt: now, UpdatedAt: now},
		{ID: "p3", Name: "Cold Coffee", Description: "Bottled cold coffee", Price: 60, Category: "Food & Beverages", Brand: "Amul", Quantity: 300, Rating: 3.9, Reviews: 12, ImageURL: "https://cdn.example.com/p3.jpg", CreatedAt: now, UpdatedAt: now},
		{ID: "p4", Name: "Paperback Novel", Description: "A novel", Price: 350, Category: "Books", Brand: "Penguin", Quantity: 10, Rating: 4.8, Reviews: 7, ImageURL: "https://cdn.example.com/p4.jpg", CreatedAt: now, UpdatedAt: now},
	}
}

func (s *MemStore) Ping(context.Context) error { return nil }

func (s *MemStore) List(context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.m[id])
	}
	return out, nil
}

func (s *MemStore) Get(_ context.Context, id string) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.m[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return p, nil
}

func (s *MemStore) Create(_ context.Context, p Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.m[p.ID]; !ok {
		s.order = append(s.order, p.ID)
	}
	s.m[p.ID] = p
	return nil
}

func (s *MemStore) Update(_ context.Context, p Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.m[p.ID]; !ok {
		return ErrProductNotFound
	}
	s.m[p.ID] = p
	return nil
}

func (s *MemStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.m[id]; !ok {
		return ErrProductNotFound
	}
	delete(s.m, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
