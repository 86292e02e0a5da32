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
	"golang.org/x/sync/errgroup"

	"github.com/dentalscribe/submission-api/internal/api"
	"github.com/dentalscribe/submission-api/internal/core/ports"
	"github.com/dentalscribe/submission-api/internal/core/service"
	"github.com/dentalscribe/submission-api/internal/infrastructure/blob"
	"github.com/dentalscribe/submission-api/internal/infrastructure/db/mongo"
	"github.com/dentalscribe/submission-api/internal/infrastructure/db/redis"
	"github.com/dentalscribe/submission-api/internal/infrastructure/queue"
	"github.com/dentalscribe/submission-api/internal/pkg/config"
	"github.com/dentalscribe/submission-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// @title                       Dental Scribe Submission API
// @version                     1.0
// @description                 Patients submit dental images; admins review them with annotated images and PDF reports.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "submission-api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "submission-api",
	})

	// --- Database connections ---
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

	rdb := connectRedis(ctx, cfg.Redis, log)
	if rdb != nil {
		defer rdb.Close()
	}

	// --- Repositories ---
	userRepo := mongo.NewUserRepository(db)
	submissionRepo := mongo.NewSubmissionRepository(db)
	eventRepo := mongo.NewEventRepository(db)
	if err := mongo.EnsureIndexes(ctx, userRepo, submissionRepo, eventRepo); err != nil {
		return err
	}

	blobs, uploadDir, err := newBlobStore(ctx, cfg.Blob)
	if err != nil {
		return err
	}

	// --- Services ---
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL, logger.Component("auth"))
	if _, err := authService.EnsureAdmin(ctx, service.AdminSeed{
		Name:     cfg.Admin.Name,
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
	}); err != nil {
		return err
	}

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	dispatcher := queue.NewDispatcher(cfg.AuditWorkers, service.NewEventService(eventRepo, logger.Component("audit")), logger.Component("dispatcher"))
	dispatcher.Start(workerCtx)

	opts := []service.SubmissionOption{service.WithAuditTrail(dispatcher, eventRepo)}
	if rdb != nil {
		opts = append(opts, service.WithIdempotency(redis.NewIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL)))
	}
	submissionService := service.NewSubmissionService(submissionRepo, userRepo, blobs, logger.Component("submissions"), opts...)

	// --- HTTP server ---
	e := api.NewRouter(api.Deps{
		Auth:          authService,
		Submissions:   submissionService,
		Mongo:         db,
		Redis:         rdb,
		Logger:        logger.Component("http"),
		MaxUploadSize: cfg.MaxUploadSize,
		UploadDir:     uploadDir,
		CORSOrigins:   cfg.CORSOrigins,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("blob_driver", cfg.Blob.Driver).Msg("listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info().Msg("shutting down")
		return e.Shutdown(shutdownCtx)
	})

	err = g.Wait()

	// Requests are finished; flush queued audit events before closing stores.
	stopWorkers()
	dispatcher.Wait()
	return err
}

// connectRedis returns nil when Redis is not configured or unreachable;
// submissions then work without Idempotency-Key replay.
func connectRedis(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) *goredis.Client {
	if cfg.Addr == "" {
		return nil
	}
	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, idempotency keys disabled")
		return nil
	}
	log.Info().Str("addr", cfg.Addr).Msg("connected to Redis")
	return rdb
}

// newBlobStore returns the configured store and, for the local driver, the
// directory the router must serve.
func newBlobStore(ctx context.Context, cfg config.BlobConfig) (ports.BlobStore, string, error) {
	switch cfg.Driver {
	case "s3":
		store, err := blob.NewS3Store(ctx, blob.S3Config{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
		if err != nil {
			return nil, "", err
		}
		return blob.NewInstrumented(store, "s3"), "", nil
	case "memory":
		return blob.NewInstrumented(blob.NewMemoryStore(), "memory"), "", nil
	default:
		store, err := blob.NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL)
		if err != nil {
			return nil, "", err
		}
		return blob.NewInstrumented(store, "local"), store.Dir(), nil
	}
}
