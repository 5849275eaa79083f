package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/safar/go-pos-store/internal/config"
)

// RedisStore keeps each snapshot under its key as a plain string value,
// with no expiry. Snapshots are small (full-list JSON), so there is no
// chunking.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(cfg *config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func (r *RedisStore) Save(ctx context.Context, key string, blob []byte) error {
	if err := r.client.Set(ctx, key, blob, 0).Err(); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context, key string) ([]byte, error) {
	blob, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	return blob, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
