// Package app wires configuration, stores and the router into one handler
// shared by the standalone server and the serverless entry point.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/princinho/streamcatalog/accounts"
	"github.com/princinho/streamcatalog/config"
	"github.com/princinho/streamcatalog/database"
	"github.com/princinho/streamcatalog/middleware"
	"github.com/princinho/streamcatalog/router"
	"github.com/princinho/streamcatalog/utils"
	"github.com/sirupsen/logrus"
)

type App struct {
	Config  config.Config
	Logger  *logrus.Logger
	Handler http.Handler
	closers []func(context.Context) error
}

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

func New(ctx context.Context, cfg config.Config, log *logrus.Logger) (*App, error) {
	stores, closeStores, err := buildStores(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Logger: log}
	if closeStores != nil {
		a.closers = append(a.closers, closeStores)
	}

	tokens := utils.NewTokenService(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)
	accts := accounts.NewService(stores.Users, stores.Revocations, cfg.RefreshTTL)

	if cfg.HasBootstrapAdmin() {
		created, err := accts.SeedAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			return nil, err
		}
		log.WithField("username", cfg.AdminUsername).WithField("created", created).Info("bootstrap admin ready")
	} else {
		log.Warn("no bootstrap admin configured")
	}

	storage, err := buildStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if gcs, ok := storage.(*utils.GCSStorage); ok {
		a.closers = append(a.closers, func(context.Context) error { return gcs.Close() })
	}

	engine := router.New(router.Deps{
		Accounts:       accts,
		Tokens:         tokens,
		Stores:         stores,
		Storage:        storage,
		ImageValidator: utils.NewImageValidator(cfg.AllowedImageExts, cfg.AllowedImageMimes, cfg.MaxUploadSizeMB),
		Limits:         utils.PageLimits{Default: cfg.DefaultQueryLimit, Max: cfg.MaxQueryLimit},
		AuthLimiter:    middleware.NewIPRateLimiter(cfg.AuthRateLimitPerMinute, time.Minute, cfg.AuthRateLimitBurst, 10*time.Minute),
		Logger:         log,
	})

	a.Handler = middleware.StripPrefix(cfg.FunctionPrefix, engine)
	return a, nil
}

func buildStores(ctx context.Context, cfg config.Config, log *logrus.Logger) (database.Stores, func(context.Context) error, error) {
	if cfg.StoreDriver == config.StoreMemory {
		log.Warn("using in-memory stores; data is lost on restart")
		return database.NewMemoryStores(), nil, nil
	}

	db, err := database.OpenDatabase(ctx, cfg.MongoURI, cfg.DatabaseName)
	if err != nil {
		return database.Stores{}, nil, err
	}
	log.WithField("database", cfg.DatabaseName).Info("connected to MongoDB")

	users := database.NewMongoUserStore(db)
	movies := database.NewMongoMovieStore(db)
	requests := database.NewMongoRequestStore(db)
	revocations := database.NewMongoRevocationStore(db)

	for _, ix := range []indexer{users, movies, requests, revocations} {
		if err := ix.EnsureIndexes(ctx); err != nil {
			// Existing data can block a unique index; serving is still possible.
			log.WithError(err).Warn("index creation failed")
		}
	}

	return database.Stores{
		Users:       users,
		Movies:      movies,
		Requests:    requests,
		Revocations: revocations,
	}, database.Disconnect, nil
}

func buildStorage(ctx context.Context, cfg config.Config) (utils.ObjectStorage, error) {
	switch cfg.StorageProvider {
	case config.StorageGCS:
		s, err := utils.NewGCSStorage(ctx, cfg.GCSBucket, cfg.GCSCredentials)
		if err != nil {
			return nil, fmt.Errorf("gcs storage: %w", err)
		}
		return s, nil
	case config.StorageR2:
		s, err := utils.NewR2Storage(ctx, utils.R2Config{
			Bucket:          cfg.R2Bucket,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			Endpoint:        cfg.R2Endpoint,
			PublicDomain:    cfg.R2PublicDomain,
		})
		if err != nil {
			return nil, fmt.Errorf("r2 storage: %w", err)
		}
		return s, nil
	default:
		return nil, nil
	}
}

// Close releases the database connection and storage clients.
func (a *App) Close(ctx context.Context) error {
	var firstErr error
	for _, closeFn := range a.closers {
		if err := closeFn(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
