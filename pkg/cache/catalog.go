package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"

	"gitlab.connectwisedev.com/storefront-client/models"
)

const (
	catalogSetKey     = "all_product_ids"
	defaultCatalogTTL = 5 * time.Minute
)

// CatalogCache keeps the last fetched catalog in Redis as product:<id> JSON keys
// plus an all_product_ids set.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCatalogCache returns a catalog cache on top of an existing client.
// A ttl of zero uses five minutes.
func NewCatalogCache(c *RedisClient, ttl time.Duration) *CatalogCache {
	if ttl <= 0 {
		ttl = defaultCatalogTTL
	}
	return &CatalogCache{client: c.GetClient(), ttl: ttl}
}

func productKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

// Load returns the cached catalog ordered by product id
func (c *CatalogCache) Load(ctx context.Context) ([]models.Product, error) {
	productIDs, err := c.client.SMembers(ctx, catalogSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get %s from Redis: %w", catalogSetKey, err)
	}
	if len(productIDs) == 0 {
		return nil, fmt.Errorf("no product IDs found in Redis cache set")
	}

	keys := make([]string, len(productIDs))
	for i, id := range productIDs {
		keys[i] = "product:" + id
	}

	results, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to MGET products from Redis: %w", err)
	}

	products := make([]models.Product, 0, len(results))
	for _, res := range results {
		if res == nil {
			// expired or evicted
			continue
		}
		productJSON, ok := res.(string)
		if !ok {
			log.Printf("Unexpected type from Redis MGET: %T", res)
			continue
		}
		var product models.Product
		if err := json.Unmarshal([]byte(productJSON), &product); err != nil {
			log.Printf("Failed to unmarshal product JSON from Redis: %v", err)
			continue
		}
		products = append(products, product)
	}

	if len(products) == 0 {
		return nil, fmt.Errorf("all products from cache were invalid or missing after retrieval")
	}

	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	log.Printf("Successfully retrieved %d products from Redis cache.", len(products))
	return products, nil
}

// Store replaces the cached catalog with products
func (c *CatalogCache) Store(ctx context.Context, products []models.Product) error {
	pipe := c.client.TxPipeline()
	ids := make([]interface{}, 0, len(products))

	for _, p := range products {
		productJSON, err := json.Marshal(p)
		if err != nil {
			log.Printf("Failed to marshal product %d for cache population: %v", p.ID, err)
			continue
		}
		pipe.Set(ctx, productKey(p.ID), productJSON, c.ttl)
		ids = append(ids, p.ID)
	}

	pipe.Del(ctx, catalogSetKey)
	if len(ids) > 0 {
		pipe.SAdd(ctx, catalogSetKey, ids...)
		pipe.Expire(ctx, catalogSetKey, c.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to execute Redis pipeline for cache population: %w", err)
	}
	log.Printf("Cache populated with %d products.", len(ids))
	return nil
}
