package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gitlab.connectwisedev.com/storefront-client/pkg/cache"
	"gitlab.connectwisedev.com/storefront-client/pkg/config"
	"gitlab.connectwisedev.com/storefront-client/pkg/database"
	"gitlab.connectwisedev.com/storefront-client/pkg/storage"
	"gitlab.connectwisedev.com/storefront-client/pkg/storefront"
	"gitlab.connectwisedev.com/storefront-client/pkg/web"
)

func main() {
	config.LoadEnv() // Load environment variables first

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TraceStdout {
		shutdown, err := setupTracing()
		if err != nil {
			log.Fatalf("Failed to initialize tracing: %v", err)
		}
		defer shutdown()
	}

	var redisClient *cache.RedisClient
	if cfg.StorageBackend != config.BackendMemory || cfg.CatalogCache {
		redisClient, err = cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Fatalf("Failed to initialize Redis client: %v", err)
		}
		defer redisClient.Close()
	}

	var dbClient *database.DBClient
	if cfg.StorageBackend == config.BackendPostgres {
		dbClient, err = database.NewPostgresClient(cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("Failed to initialize DB client: %v", err)
		}
		defer dbClient.Close()
	}

	stores, err := storage.NewFactory(ctx, cfg.StorageBackend, redisClient, dbClient)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	var opts []storefront.Option
	if cfg.CatalogCache {
		opts = append(opts, storefront.WithCatalogCache(cache.NewCatalogCache(redisClient, 0)))
	}

	var sessionOpts []web.SessionsOption
	if cfg.SessionIdleTimeout > 0 {
		sessionOpts = append(sessionOpts, web.WithIdleTimeout(cfg.SessionIdleTimeout))
	}
	if cfg.MaxSessions > 0 {
		sessionOpts = append(sessionOpts, web.WithMaxSessions(cfg.MaxSessions))
	}

	factory := web.NewControllerFactory(cfg.APIBaseURL, cfg.HTTPTimeout, stores, opts...)
	sessions := web.NewSessions(factory, sessionOpts...)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           web.NewRouter(sessions),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down HTTP server: %v", err)
		}
	}()

	log.Printf("Storefront listening on %s (API %s, storage %s)", cfg.HTTPAddr, cfg.APIBaseURL, cfg.StorageBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("HTTP server failed: %v", err)
	}
	log.Println("Storefront stopped.")
}
