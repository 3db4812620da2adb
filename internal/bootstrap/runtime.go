// Package bootstrap wires process-wide dependencies shared by the commands.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"recipebox/internal/cache"
	"recipebox/internal/config"
	"recipebox/internal/database"
	"recipebox/internal/middleware"
	"recipebox/internal/observability"
	"recipebox/internal/seed"
	"recipebox/internal/service"
	"recipebox/internal/storage"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedTags inserts the curated tag vocabulary when no tag exists.
	SeedTags bool
	// Tracing enables the OpenTelemetry exporter configured in Config.
	Tracing bool
}

// Runtime holds initialized dependencies. Close releases them.
type Runtime struct {
	Config   *config.Config
	DB       *gorm.DB
	Redis    *redis.Client
	Services *service.Services

	shutdownTracing func(context.Context) error
}

// InitRuntime connects to the database and Redis, brings the schema up to
// date and builds the domain services. Redis and object storage are optional.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	rt := &Runtime{Config: cfg, shutdownTracing: func(context.Context) error { return nil }}

	if opts.Tracing {
		shutdown, err := observability.InitTracing(observability.TracingConfig{
			ServiceName:    "recipebox-api",
			ServiceVersion: "1.0.0",
			Environment:    cfg.Env,
			Enabled:        cfg.TracingEnabled,
			Exporter:       cfg.TracingExporter,
			OTLPEndpoint:   cfg.OTLPEndpoint,
			SamplerRatio:   cfg.TracingSampleRatio,
		})
		if err != nil {
			return nil, fmt.Errorf("tracing init failed: %w", err)
		}
		rt.shutdownTracing = shutdown
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	rt.DB = db

	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("schema setup failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	rt.Redis = cache.GetClient()

	store, err := objectStore(ctx, cfg)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}

	vocabulary, err := seed.Vocabulary()
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("load tag vocabulary: %w", err)
	}

	rt.Services = service.NewServices(service.Deps{
		DB:         db,
		Store:      store,
		Config:     cfg,
		Vocabulary: vocabulary,
	})

	if opts.SeedTags {
		if _, err := rt.Services.Tags.SeedPredefined(ctx); err != nil {
			_ = rt.Close(ctx)
			return nil, fmt.Errorf("seed predefined tags: %w", err)
		}
	}

	return rt, nil
}

// objectStore returns nil, as an untyped interface, when storage is not
// configured so the image service reports UNCONFIGURED.
func objectStore(ctx context.Context, cfg *config.Config) (storage.ObjectStore, error) {
	if !cfg.StorageConfigured() {
		middleware.Logger.Info("object storage not configured, image endpoints disabled")
		return nil, nil
	}
	store, err := storage.NewS3Store(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("object storage init failed: %w", err)
	}
	return store, nil
}

// Close releases the database, Redis and tracing exporter.
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	if rt.DB != nil {
		if err := database.Close(rt.DB); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	if err := cache.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close redis: %w", err))
	}
	if rt.shutdownTracing != nil {
		if err := rt.shutdownTracing(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracing: %w", err))
		}
	}
	return errors.Join(errs...)
}
