package session

import (
	"context"
	"sync"

	"github.com/ghaggin/cems/internal/model"
)

// TokenKey is the single storage key holding the credential token.
const TokenKey = "token"

// Store is durable key/value storage scoped to one client.
type Store interface {
	Get(ctx context.Context, key string) (string, bool)
	Put(ctx context.Context, key, value string)
	Remove(ctx context.Context, key string)
}

// AuthAPI is the external authentication service.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, username, password string, role model.Role) error
}

// Notifier shows a message to the user. It never fails.
type Notifier interface {
	Notify(ctx context.Context, t model.Toast)
}

// Navigator changes the active view.
type Navigator interface {
	Navigate(ctx context.Context, v model.View)
}

// ClientKey identifies the client a context belongs to. Operations that
// share a key are serialized by the Gate.
type ClientKey func(ctx context.Context) string

// MemoryStore is a Store for a single in-process client.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]string{}}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *MemoryStore) Put(_ context.Context, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

func (s *MemoryStore) Remove(_ context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}
