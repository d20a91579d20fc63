package storage

import (
	"context"
	"fmt"
	"time"

	"gitlab.connectwisedev.com/storefront-client/pkg/cache"
	"gitlab.connectwisedev.com/storefront-client/pkg/config"
	"gitlab.connectwisedev.com/storefront-client/pkg/database"
)

// SessionTTL bounds how long token and session scopes survive in Redis
const SessionTTL = 24 * time.Hour

// Factory builds per-shopper scope bundles for the configured backend
type Factory struct {
	backend string
	redis   *cache.RedisClient
	db      *database.DBClient
}

// NewFactory validates that the clients required by backend are present.
// For the postgres backend it also creates the storefront_kv table.
func NewFactory(ctx context.Context, backend string, redisClient *cache.RedisClient, dbClient *database.DBClient) (*Factory, error) {
	switch backend {
	case config.BackendMemory:
	case config.BackendRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("storage: %s backend requires a Redis client", backend)
		}
	case config.BackendPostgres:
		if redisClient == nil || dbClient == nil {
			return nil, fmt.Errorf("storage: %s backend requires Redis and PostgreSQL clients", backend)
		}
		if err := EnsureSchema(ctx, dbClient.GetDB()); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", backend)
	}
	return &Factory{backend: backend, redis: redisClient, db: dbClient}, nil
}

// Scopes returns the bundle for one shopper namespace
func (f *Factory) Scopes(namespace string) Scopes {
	switch f.backend {
	case config.BackendRedis:
		rc := f.redis.GetClient()
		return Scopes{
			Token:   NewRedisScope(rc, namespace, "token", SessionTTL),
			Session: NewRedisScope(rc, namespace, "session", SessionTTL),
			Durable: NewRedisScope(rc, namespace, "durable", 0),
		}
	case config.BackendPostgres:
		rc := f.redis.GetClient()
		return Scopes{
			Token:   NewRedisScope(rc, namespace, "token", SessionTTL),
			Session: NewRedisScope(rc, namespace, "session", SessionTTL),
			Durable: NewPostgresScope(f.db.GetDB(), namespace),
		}
	default:
		return NewMemoryScopes()
	}
}
