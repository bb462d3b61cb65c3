package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go-resume-screener/config"
	v1 "go-resume-screener/internal/delivery/http/v1"
	"go-resume-screener/internal/domain"
	"go-resume-screener/internal/repository/postgres"
	"go-resume-screener/internal/repository/redisq"
	"go-resume-screener/internal/repository/s3store"
	"go-resume-screener/internal/usecase"
	"go-resume-screener/internal/worker"
	"go-resume-screener/pkg/auth"
	"go-resume-screener/pkg/database"
	"go-resume-screener/pkg/llm"
	"go-resume-screener/pkg/logger"
	"go-resume-screener/pkg/redis"
	"go-resume-screener/pkg/security"
	"go-resume-screener/pkg/textextract"
	"go-resume-screener/pkg/tracing"
	"go-resume-screener/pkg/validation"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

type runOptions struct {
	http    bool
	workers bool
}

func setup(v *viper.Viper) (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	return cfg, log, nil
}

func runMigrate(ctx context.Context, v *viper.Viper) error {
	cfg, log, err := setup(v)
	if err != nil {
		return err
	}
	defer log.Sync()

	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer dbPool.Close()

	if err := database.ApplySchema(ctx, dbPool, cfg.EmbeddingDim); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	log.Info("Schema applied", "embedding_dim", cfg.EmbeddingDim)
	return nil
}

func run(ctx context.Context, v *viper.Viper, opts runOptions) error {
	// 1. Load Config
	cfg, log, err := setup(v)
	if err != nil {
		return err
	}
	defer log.Sync()
	log.Info("Starting resume screener", "port", cfg.Port, "http", opts.http, "workers", opts.workers)

	// 2. Setup Tracing
	shutdownTracing, err := tracing.Init(ctx, log, tracing.Config{
		Enabled:     cfg.OtelEnabled,
		ServiceName: "go-resume-screener",
		Environment: cfg.LogMode,
		Endpoint:    cfg.OtelEndpoint,
		Insecure:    cfg.OtelInsecure,
		SampleRatio: 1,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Warn("Tracer shutdown failed", "error", err)
		}
	}()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer dbPool.Close()

	// 4. Setup Redis (optional)
	var redisClient *goredis.Client
	signal := redisq.NewNopSignal()
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(ctx, redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword})
		if err != nil {
			log.Warn("Redis unavailable, continuing without it", "error", err)
		} else {
			defer redisClient.Close()
			signal = redisq.NewTaskSignal(redisClient, "")
		}
	}

	// 5. Setup Object Storage (optional)
	var blobs domain.BlobStore
	if cfg.S3Bucket != "" {
		s3Client, err := s3store.NewS3Client(ctx, s3store.Config{
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
			Prefix:          cfg.S3Prefix,
		})
		if err != nil {
			return fmt.Errorf("create s3 client: %w", err)
		}
		blobs = s3store.NewBlobStore(s3Client, cfg.S3Bucket, cfg.S3Prefix)
	}

	// 6. Setup Language Model
	model, err := llm.NewClient(ctx, llm.Config{
		Provider:       cfg.LLMProvider,
		Model:          cfg.LLMModel,
		EmbeddingModel: cfg.EmbeddingModel,
		EmbeddingDim:   cfg.EmbeddingDim,
		GeminiAPIKey:   cfg.GeminiAPIKey,
		OllamaHost:     cfg.OllamaHost,
		RatePerSecond:  cfg.LLMRatePerSecond,
		HTTPTimeout:    cfg.LLMTimeout,
	})
	if err != nil {
		return fmt.Errorf("create llm client: %w", err)
	}

	// 7. Setup Repositories
	userRepo := postgres.NewUserRepository(dbPool)
	jobRepo := postgres.NewJobRepository(dbPool)
	candidateRepo := postgres.NewCandidateRepository(dbPool)
	resumeRepo := postgres.NewResumeRepository(dbPool)
	documentRepo := postgres.NewRawDocumentRepository(dbPool)
	taskRepo := postgres.NewTaskRepository(dbPool)
	index := postgres.NewSemanticIndex(dbPool, model)

	// 8. Setup UseCases
	retry := domain.RetryPolicy{
		MaxAttempts: cfg.IngestMaxAttempts,
		BaseDelay:   cfg.IngestRetryBase,
		MaxDelay:    cfg.IngestRetryMax,
	}
	coordinator := usecase.NewPersistenceCoordinator(
		resumeRepo, candidateRepo, documentRepo, index,
		usecase.ParseCompensationMode(cfg.CompensationMode), log,
	)
	ingestionUC := usecase.NewIngestionUsecase(usecase.IngestionDeps{
		Documents:   documentRepo,
		Tasks:       taskRepo,
		Signal:      signal,
		Blobs:       blobs,
		Text:        textextract.New(),
		Entities:    usecase.NewEntityExtractor(model, usecase.EntityExtractorConfig{MaxChars: cfg.ExtractionMaxChars, Timeout: cfg.LLMTimeout}, log),
		Resolver:    usecase.NewIdentityResolver(candidateRepo),
		Coordinator: coordinator,
	}, usecase.IngestionConfig{MaxUploadSize: cfg.MaxUploadSize, Retry: retry}, log)

	g, gctx := errgroup.WithContext(ctx)

	// 9. Start Workers
	if opts.workers {
		pool := worker.NewPool(taskRepo, signal, ingestionUC, worker.Config{
			Concurrency:  cfg.WorkerConcurrency,
			PollInterval: cfg.WorkerPollInterval,
			StaleAfter:   cfg.WorkerStaleAfter,
			Retry:        retry,
		}, log)
		g.Go(func() error {
			return pool.Run(gctx)
		})
	}

	// 10. Start Server
	if opts.http {
		pingers := map[string]usecase.Pinger{"database": dbPool}
		if redisClient != nil {
			pingers["redis"] = usecase.PingFunc(func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			})
		}

		var jwksProvider *auth.Provider
		if cfg.JWKSURL != "" {
			jwksProvider = auth.NewProvider(cfg.JWKSURL, nil)
		}

		router := v1.NewRouter(v1.RouterDeps{
			AuthUC:        usecase.NewAuthUsecase(userRepo),
			JobUC:         usecase.NewJobUsecase(jobRepo, usecase.NewSkillExtractor(model, cfg.LLMTimeout), validation.New(), log),
			CandidateUC:   usecase.NewCandidateUsecase(candidateRepo, resumeRepo),
			IngestionUC:   ingestionUC,
			RankingUC:     usecase.NewRankingUsecase(jobRepo, resumeRepo, candidateRepo, index, log),
			HealthUC:      usecase.NewHealthUsecase(pingers),
			JWKSProvider:  jwksProvider,
			Config:        cfg,
			Redis:         redisClient,
			UploadLimiter: security.NewUploadLimiter(redisClient, cfg.UploadRatePerMinute),
			Logger:        log,
		})

		srv := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		g.Go(func() error {
			log.Info("HTTP server listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("listen: %w", err)
			}
			return nil
		})

		// Graceful Shutdown
		g.Go(func() error {
			<-gctx.Done()
			log.Info("Shutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error("Server forced to shutdown", "error", err)
			}
			return nil
		})
	}

	err = g.Wait()
	log.Info("Exiting")
	return err
}
