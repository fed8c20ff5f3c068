// memory — потокобезопасная in-memory реализация storage.Store
// для тестов и эфемерных запусков оболочки.
package memory

import (
	"context"
	"sync"

	"github.com/kurusapp/kurus-mobile/internal/storage"
)

type Store struct {
	mu   sync.RWMutex
	data map[string]string
}

// New создаёт пустое in-memory хранилище.
func New() *Store {
	return &Store{data: make(map[string]string)}
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return "", storage.ErrNotFound
	}

	return v, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}

func (s *Store) Close() error { return nil }
