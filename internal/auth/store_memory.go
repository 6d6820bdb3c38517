package auth

import (
	"context"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type MemStore struct {
	mu       sync.RWMutex
	byEmail  map[string]User
	byNumber map[string]string
}

func NewMemStore() *MemStore {
	return &MemStore{
		byEmail:  make(map[string]User),
		byNumber: make(map[string]string),
	}
}

func (s *MemStore) Ping(context.Context) error { return nil }

func (s *MemStore) Create(_ context.Context, u User, password string) (User, error) {
	u.Email = normalizeEmail(u.Email)

	hash, err := bcrypt.GenerateFromPassword([]byte(normalizePassword(password)), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[u.Email]; ok {
		return User{}, ErrUserExists
	}
	if u.Number != "" {
		if _, ok := s.byNumber[u.Number]; ok {
			return User{}, ErrUserExists
		}
		s.byNumber[u.Number] = u.Email
	}

	u.Hash = hash
	u.CreatedAt = time.Now().UTC()
	s.byEmail[u.Email] = u
	return u, nil
}

func (s *MemStore) Verify(_ context.Context, email, password string) (User, error) {
	s.mu.RLock()
	u, ok := s.byEmail[normalizeEmail(email)]
	s.mu.RUnlock()

	if !ok {
		return User{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(u.Hash, []byte(normalizePassword(password))); err != nil {
		return User{}, ErrInvalidCredentials
	}

	return u, nil
}
