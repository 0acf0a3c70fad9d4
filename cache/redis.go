package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	forecaster "github.com/aouyang1/go-tempcast"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps json encoded results in redis so they survive restarts and are shared
// between replicas
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisStore connects to the redis url and verifies the connection
func NewRedisStore(ctx context.Context, url, prefix string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		opts = &redis.Options{Addr: url}
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisStoreFromClient(client, prefix, ttl), nil
}

// NewRedisStoreFromClient wraps an existing client
func NewRedisStoreFromClient(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (r *RedisStore) key(key string) string {
	if r.prefix == "" {
		return key
	}
	return r.prefix + ":forecast:" + key
}

func (r *RedisStore) Get(ctx context.Context, key string) (*forecaster.Results, bool, error) {
	b, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("unable to read %s, %w", key, err)
	}

	var res forecaster.Results
	if err := json.Unmarshal(b, &res); err != nil {
		return nil, false, fmt.Errorf("unable to decode %s, %w", key, err)
	}
	return &res, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, res *forecaster.Results) error {
	b, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("unable to encode %s, %w", key, err)
	}
	if err := r.client.Set(ctx, r.key(key), b, r.ttl).Err(); err != nil {
		return fmt.Errorf("unable to write %s, %w", key, err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
