package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/nutriscan/nutriscan-go/internal/analyzer"
	"github.com/nutriscan/nutriscan-go/internal/config"
	"github.com/nutriscan/nutriscan-go/internal/handler"
	"github.com/nutriscan/nutriscan-go/internal/logger"
	"github.com/nutriscan/nutriscan-go/internal/metrics"
	"github.com/nutriscan/nutriscan-go/internal/middleware"
	"github.com/nutriscan/nutriscan-go/internal/repository"
	"github.com/nutriscan/nutriscan-go/internal/service"
	"github.com/nutriscan/nutriscan-go/internal/storage"
)

const chatMemoryTTL = 24 * time.Hour

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log := logger.SetupDefault(os.Stdout, logger.LevelFor(cfg.Env))

	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.RunMigrations {
		if err := repository.RunMigrations(cfg.DatabaseDSN); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
	}

	ctx := context.Background()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	images, err := imageStore(ctx, cfg.Storage, log)
	if err != nil {
		log.Error("image storage setup failed", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}
	objects := objectStore(ctx, cfg.Storage, log)

	ai, closeAI := newAnalyzer(ctx, cfg, log)
	defer closeAI()

	userRepo := repository.NewUserRepository(db)
	logRepo := repository.NewFoodLogRepository(db)
	ingredientRepo := repository.NewIngredientRepository(db)

	users := service.NewUserService(userRepo, cfg.JWTSecret, cfg.JWTExpiry, log)
	logs := service.NewLogService(logRepo, ingredientRepo, userRepo, log)
	analysis := service.NewAnalysisService(service.AnalysisDeps{
		Users:           userRepo,
		Logs:            logRepo,
		Ingredients:     ingredientRepo,
		Images:          images,
		Analyzer:        ai,
		Metrics:         collector,
		Logger:          log,
		AutoCreateUsers: cfg.AutoCreateUsers,
	})
	chat := service.NewChatService(ai)

	authLimiter := middleware.NewRateLimiter(5, 10)
	defer authLimiter.Stop()

	router := handler.NewRouter(handler.RouterDeps{
		Users:          users,
		Logs:           logs,
		Analysis:       analysis,
		Chat:           chat,
		Objects:        objects,
		Logger:         log,
		Metrics:        collector,
		MetricsHandler: metrics.Handler(reg),
		AuthLimiter:    authLimiter,
		JWTSecret:      cfg.JWTSecret,
		RequireAuth:    cfg.RequireAuth,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "storage", cfg.Storage.Backend, "require_auth", cfg.RequireAuth)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

// imageStore picks where analyzed images are written.
func imageStore(ctx context.Context, cfg config.StorageConfig, log *slog.Logger) (storage.ImageStore, error) {
	if cfg.Backend == config.StorageS3 {
		return storage.NewS3Store(ctx, s3Config(cfg), storage.WithLogger(log))
	}
	return storage.NewLocalStore(cfg.ImageDir), nil
}

// objectStore backs the /s3 endpoints. Without a bucket they answer 503.
func objectStore(ctx context.Context, cfg config.StorageConfig, log *slog.Logger) storage.ImageStore {
	if cfg.Bucket == "" {
		return nil
	}
	store, err := storage.NewS3Store(ctx, s3Config(cfg), storage.WithLogger(log))
	if err != nil {
		log.Warn("object storage disabled", "bucket", cfg.Bucket, "error", err)
		return nil
	}
	return store
}

func s3Config(cfg config.StorageConfig) storage.S3Config {
	return storage.S3Config{
		Bucket:    cfg.Bucket,
		Region:    cfg.Region,
		Endpoint:  cfg.Endpoint,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		BaseURL:   cfg.BaseURL,
		PathStyle: cfg.PathStyle,
	}
}

// newAnalyzer returns the OpenAI-backed analyzer, or a disabled one when
// no API key is configured. The returned func releases the Redis client.
func newAnalyzer(ctx context.Context, cfg config.Config, log *slog.Logger) (analyzer.Backend, func()) {
	if cfg.OpenAI.APIKey == "" {
		log.Warn("OPENAI_API_KEY not set, AI analysis and chat disabled")
		return analyzer.Disabled{}, func() {}
	}

	var memory analyzer.Memory = analyzer.NewInMemory(analyzer.DefaultMemoryWindow, chatMemoryTTL)
	closeFn := func() {}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn("redis unavailable, using in-process chat memory", "addr", cfg.RedisAddr, "error", err)
			client.Close()
		} else {
			memory = analyzer.NewRedisMemory(client, analyzer.DefaultMemoryWindow, chatMemoryTTL)
			closeFn = func() { client.Close() }
		}
	}

	ai := analyzer.NewOpenAI(analyzer.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.Model,
	}, analyzer.WithMemory(memory), analyzer.WithLogger(log))

	return ai, closeFn
}
