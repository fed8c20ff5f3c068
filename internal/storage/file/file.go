// file реализует storage.Store поверх одного JSON-файла.
// Запись атомарна (temp-файл + rename), чтобы убитый посреди записи
// процесс не оставил хранилище в полуразрушенном состоянии.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/kurusapp/kurus-mobile/internal/storage"
)

// Store — файловое key-value хранилище.
type Store struct {
	mu   sync.Mutex
	path string
	data map[string]string
}

// New открывает (или создаёт) хранилище по пути path.
// Нечитаемый или повреждённый файл не фатален: хранилище стартует пустым,
// первая же запись перезапишет файл целиком.
func New(path string) (*Store, error) {
	const op = "storage.file.New"

	if path == "" {
		return nil, fmt.Errorf("%s: empty path", op)
	}

	s := &Store{
		path: path,
		data: make(map[string]string),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}

		return s, nil
	}

	if err := json.Unmarshal(raw, &s.data); err != nil {
		s.data = make(map[string]string)
	}

	return s, nil
}

// Get возвращает значение по ключу.
func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.data[key]
	if !ok {
		return "", storage.ErrNotFound
	}

	return v, nil
}

// Set сохраняет значение и сразу сбрасывает файл на диск.
func (s *Store) Set(_ context.Context, key, value string) error {
	const op = "storage.file.Set"

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	if err := s.flushLocked(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Remove удаляет ключ и сбрасывает файл на диск.
func (s *Store) Remove(_ context.Context, key string) error {
	const op = "storage.file.Remove"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; !ok {
		return nil
	}

	delete(s.data, key)
	if err := s.flushLocked(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Close — no-op: каждая запись уже синхронизирована с диском.
func (s *Store) Close() error { return nil }

// flushLocked пишет снапшот данных атомарно. Вызывается под s.mu.
func (s *Store) flushLocked() error {
	raw, err := json.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".kurus-store-*")
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}

	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}

	return nil
}
