// redisstore реализует storage.Store поверх Redis — для hosted/dev-запусков
// оболочки, где "устройство" эфемерно, а состояние (флаг recovery, сессия)
// должно переживать перезапуск контейнера.
package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/kurusapp/kurus-mobile/internal/storage"
)

type Store struct {
	rdb    *redis.Client
	prefix string
}

// New создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "kurus:kv:".
func New(redisURL, prefix string) (*Store, error) {
	const op = "storage.redisstore.New"

	if prefix == "" {
		prefix = "kurus:kv:"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Store{rdb: rdb, prefix: prefix}, nil
}

func (s *Store) key(k string) string { return s.prefix + k }

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	v, err := s.rdb.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", storage.ErrNotFound
		}

		return "", fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}

	return v, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.rdb.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}

	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}

	return nil
}

func (s *Store) Close() error { return s.rdb.Close() }
