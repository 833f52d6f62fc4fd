// Command nexus serves the project and document management API.
//
// @title                       Nexus API
// @version                     1.0
// @description                 Project and document management with role-based access control.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/pixelforge/nexus/internal/api"
	"github.com/pixelforge/nexus/internal/api/handler"
	"github.com/pixelforge/nexus/internal/core/ports"
	"github.com/pixelforge/nexus/internal/core/service"
	"github.com/pixelforge/nexus/internal/core/token"
	"github.com/pixelforge/nexus/internal/infrastructure/config"
	"github.com/pixelforge/nexus/internal/infrastructure/db/mongo"
	"github.com/pixelforge/nexus/internal/infrastructure/db/redis"
	"github.com/pixelforge/nexus/internal/infrastructure/queue"
	"github.com/pixelforge/nexus/internal/infrastructure/storage/filesystem"
	"github.com/pixelforge/nexus/internal/infrastructure/storage/objstore"
	"github.com/pixelforge/nexus/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "nexus: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "nexus",
	})

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("nexus stopped")
	}
}

// blobStore is what the API needs from a storage backend: the port itself
// plus a readiness probe.
type blobStore interface {
	ports.BlobStore
	Ping(ctx context.Context) error
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database, AppName: "nexus"})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := client.Disconnect(dctx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()
	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	blobs, err := newBlobStore(ctx, cfg, logger.Component("storage"))
	if err != nil {
		return err
	}

	// --- Repositories ---
	users := mongo.NewUserRepository(db)
	projects := mongo.NewProjectRepository(db)
	documents := mongo.NewDocumentRepository(db)

	// --- Background blob cleanup ---
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	cleaner := queue.NewDispatcher(cfg.CleanupWorkers, blobs, logger.Component("cleanup"))
	cleaner.Start(workerCtx)
	defer func() {
		stopWorkers()
		cleaner.Wait()
	}()

	// --- Services ---
	codec, err := token.NewCodec([]byte(cfg.Auth.JWTSecret), cfg.Auth.JWTTTL)
	if err != nil {
		return err
	}
	limiter := redis.NewLoginLimiter(rdb, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow)

	authService, err := service.NewAuthService(users, codec, limiter, cfg.Auth.BcryptCost, logger.Component("auth"))
	if err != nil {
		return err
	}
	userService, err := service.NewUserService(users, projects, cfg.Auth.BcryptCost, logger.Component("users"))
	if err != nil {
		return err
	}
	projectService := service.NewProjectService(projects, documents, users, cleaner, logger.Component("projects"))
	documentService := service.NewDocumentService(documents, projects, blobs, cleaner, cfg.Storage.UploadMaxBytes, logger.Component("documents"))

	if err := bootstrapAdmin(ctx, cfg.Bootstrap, userService, log); err != nil {
		return err
	}

	e := api.NewRouter(api.Dependencies{
		Auth:      authService,
		Users:     userService,
		Projects:  projectService,
		Documents: documentService,
		Checks: []handler.Check{
			{Name: "mongodb", Ping: func(ctx context.Context) error { return client.Ping(ctx, nil) }},
			{Name: "redis", Ping: func(ctx context.Context) error { return pingRedis(ctx, rdb) }},
			{Name: "storage", Ping: blobs.Ping},
		},
		MaxUploadBytes: cfg.Storage.UploadMaxBytes,
		Log:            logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("storage", cfg.Storage.Backend).Msg("nexus listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}

func newBlobStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (blobStore, error) {
	if cfg.Storage.Backend == config.StorageMinio {
		store, err := objstore.New(objstore.Config{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Bucket:    cfg.Minio.Bucket,
			UseSSL:    cfg.Minio.UseSSL,
		}, log)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	}
	store, err := filesystem.New(cfg.Storage.UploadDir)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func bootstrapAdmin(ctx context.Context, b config.BootstrapConfig, users *service.UserService, log zerolog.Logger) error {
	if b.Username == "" {
		return nil
	}
	created, err := users.EnsureAdmin(ctx, b.Username, b.Email, b.Password)
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	if created {
		log.Info().Str("username", b.Username).Msg("bootstrap admin created")
	}
	return nil
}

func pingRedis(ctx context.Context, rdb *goredis.Client) error {
	return rdb.Ping(ctx).Err()
}
