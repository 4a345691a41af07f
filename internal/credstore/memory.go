package credstore

import (
	"context"
	"sync"

	"edhumeni-admin/internal/domain"
)

// MemoryStore is an in-process credential store for tests and ephemeral
// terminal runs where nothing should outlive the process.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
	user  *domain.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) SetAuth(ctx context.Context, token string, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = user.Clone()
	return nil
}

func (s *MemoryStore) ClearAuth(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
	return nil
}

func (s *MemoryStore) GetToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", domain.ErrNoToken
	}
	return s.token, nil
}

func (s *MemoryStore) GetUser(ctx context.Context) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil, domain.ErrNoUser
	}
	return s.user.Clone(), nil
}

func (s *MemoryStore) UpdateUser(ctx context.Context, patch domain.UserPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	s.user = patch.Apply(s.user)
	return nil
}
