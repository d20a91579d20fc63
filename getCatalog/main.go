package main

import (
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"gitlab.connectwisedev.com/storefront-client/pkg/api"
	"gitlab.connectwisedev.com/storefront-client/pkg/cache"
	"gitlab.connectwisedev.com/storefront-client/pkg/config"
	"gitlab.connectwisedev.com/storefront-client/pkg/storage"
	"gitlab.connectwisedev.com/storefront-client/pkg/storefront"
)

var (
	redisClient *cache.RedisClient
	catalog     *catalogHandler
)

func init() {
	config.LoadEnv() // Load environment variables first

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// The catalog is public, so the client never carries a token.
	client := api.NewClient(cfg.APIBaseURL, storage.NewMemoryScope(), api.WithTimeout(cfg.HTTPTimeout))
	catalog = &catalogHandler{backend: client}

	if cfg.CatalogCache {
		redisClient, err = cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Fatalf("Failed to initialize Redis client: %v", err)
		}
		catalog.opts = append(catalog.opts, storefront.WithCatalogCache(cache.NewCatalogCache(redisClient, 0)))
	}
}

func main() {
	if redisClient != nil {
		defer redisClient.Close()
	}
	lambda.Start(catalog.Handle)
}
