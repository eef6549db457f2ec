package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// redisSnapshotKey is the Redis key the blob lives under. No TTL: the
// snapshot is the authoritative copy of the state across restarts.
const redisSnapshotKey = "adminstate:snapshot"

// RedisStore is the alternate blob store for deployments that already run
// Redis and want the snapshot off the local disk.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

// Save writes the blob under the snapshot key.
func (r *RedisStore) Save(ctx context.Context, blob []byte) error {
	if err := r.client.Set(ctx, redisSnapshotKey, blob, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Load reads the blob, reporting found=false when no snapshot exists yet.
func (r *RedisStore) Load(ctx context.Context) ([]byte, bool, error) {
	blob, err := r.client.Get(ctx, redisSnapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return blob, true, nil
}

// Close releases the client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
