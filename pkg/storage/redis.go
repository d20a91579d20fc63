package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisScope stores values under storefront:<namespace>:<scope>:<key>.
// The namespace is the shopper session id, so a new id behaves like a fresh browser profile.
type RedisScope struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisScope returns a scope; ttl of zero keeps keys without expiry
func NewRedisScope(client *redis.Client, namespace, scope string, ttl time.Duration) *RedisScope {
	return &RedisScope{
		client: client,
		prefix: fmt.Sprintf("storefront:%s:%s:", namespace, scope),
		ttl:    ttl,
	}
}

func (r *RedisScope) key(k string) string {
	return r.prefix + k
}

func (r *RedisScope) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, r.key(key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage: failed to get %s: %w", key, err)
	}
	return val, true, nil
}

func (r *RedisScope) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.key(key), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("storage: failed to set %s: %w", key, err)
	}
	return nil
}

func (r *RedisScope) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("storage: failed to delete %s: %w", key, err)
	}
	return nil
}
