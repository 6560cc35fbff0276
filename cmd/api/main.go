//	@title			Uploads API
//	@version		1.0
//	@description	Issues pre-signed upload and preview URLs for an S3-compatible object store.
//
//	@host		localhost:8080
//	@BasePath	/api

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gameshots/uploader/internal/config"
	"github.com/gameshots/uploader/internal/db"
	"github.com/gameshots/uploader/internal/health"
	"github.com/gameshots/uploader/internal/listing"
	"github.com/gameshots/uploader/internal/storage"
	"github.com/gameshots/uploader/internal/upload"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	// The internal client lists and pings; the public one signs every URL
	// handed to browsers.
	internalStore, err := storage.New(cfg.StorageDriver, storageOptions(cfg, cfg.StorageEndpoint))
	if err != nil {
		log.Fatalf("object storage init failed: %v", err)
	}
	publicStore, err := storage.New(cfg.StorageDriver, storageOptions(cfg, cfg.StoragePublicEndpoint))
	if err != nil {
		log.Fatalf("public object storage init failed: %v", err)
	}

	if cfg.StorageEnsureBucket {
		ensureBucket(cfg, internalStore)
	}

	healthHandler := health.NewHandler()
	healthHandler.Register("storage", func(ctx context.Context) error {
		return internalStore.Ping(ctx, cfg.StorageBucket)
	})

	var ledger upload.Ledger
	if cfg.LedgerEnabled() {
		pool, err := db.Connect(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		defer pool.Close()

		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatalf("database migration failed: %v", err)
		}
		ledger = upload.NewRepository(pool)
		healthHandler.Register("database", pool.Ping)
	}

	// Wire dependencies: store → service → handler
	validator := upload.DigitsOnly
	if cfg.NamespacePolicy == config.PolicySegment {
		validator = upload.PathSegment
	}
	keys := upload.NewKeyDeriver(cfg.KeyPrefix, validator)
	uploadSvc := upload.NewService(keys, publicStore, cfg.StorageBucket, cfg.SignedURLTTL, ledger)
	uploadHandler := upload.NewHandler(uploadSvc)

	listingSvc := listing.NewService(internalStore, publicStore, listing.Config{
		Bucket:         cfg.StorageBucket,
		PublicBucket:   cfg.StoragePublicBucket,
		PublicEndpoint: cfg.StoragePublicEndpoint,
		TTL:            cfg.SignedURLTTL,
		MaxItems:       cfg.ListMaxItems,
		Concurrency:    cfg.SignConcurrency,
	})
	listingHandler := listing.NewHandler(listingSvc)

	r := newRouter(cfg.CORSOrigins, routes{
		health:  healthHandler,
		upload:  uploadHandler,
		listing: listingHandler,
		grants:  ledger != nil,
		swagger: !cfg.IsProduction(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("server listening on :%s (env=%s, driver=%s)", cfg.Port, cfg.AppEnv, cfg.StorageDriver)
		log.Printf("signing for %s, listing via %s", cfg.StoragePublicEndpoint, cfg.StorageEndpoint)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	log.Println("shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("forced shutdown: %v", err)
		return
	}

	log.Println("server stopped")
}

func storageOptions(cfg *config.Config, endpoint string) storage.Options {
	return storage.Options{
		Endpoint:       endpoint,
		Region:         cfg.StorageRegion,
		AccessKey:      cfg.StorageAccessKey,
		SecretKey:      cfg.StorageSecretKey,
		ForcePathStyle: cfg.StorageForcePathStyle,
	}
}

func ensureBucket(cfg *config.Config, store storage.Client) {
	mc, ok := store.(*storage.MinioClient)
	if !ok {
		log.Printf("storage: bucket bootstrap is only supported by the %s driver, skipping", storage.DriverMinio)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := mc.EnsureBucket(ctx, cfg.StorageBucket, cfg.StorageRegion, cfg.StoragePublicRead); err != nil {
		log.Fatalf("bucket bootstrap failed: %v", err)
	}
}
