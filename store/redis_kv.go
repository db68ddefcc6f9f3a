package store

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"socialclient/config"
)

// Cached snapshots expire on their own; a stale offline copy is better than
// none but not forever.
const snapshotTTL = 24 * time.Hour

// RedisKV - KV backend on Redis.
type RedisKV struct {
	client *redis.Client
}

func NewRedisKV(conf config.RedisConfig) (*RedisKV, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", conf.Host, conf.Port),
		Password: conf.Password,
		DB:       conf.DB,
	})
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisKV{client: client}, nil
}

func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	blob, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return blob, nil
}

func (r *RedisKV) Set(ctx context.Context, key string, blob []byte) error {
	if err := r.client.Set(ctx, key, blob, snapshotTTL).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisKV) Close() error {
	return r.client.Close()
}
