package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/maumlog/emotion-engine/internal/application"
	appanalysis "github.com/maumlog/emotion-engine/internal/application/analysis"
	"github.com/maumlog/emotion-engine/internal/config"
	domain "github.com/maumlog/emotion-engine/internal/domain/analysis"
	"github.com/maumlog/emotion-engine/internal/domain/emotion"
	"github.com/maumlog/emotion-engine/internal/domain/safety"
	aiclient "github.com/maumlog/emotion-engine/internal/infra/ai/openai"
	mysqlp "github.com/maumlog/emotion-engine/internal/infra/db/mysql"
	postgresp "github.com/maumlog/emotion-engine/internal/infra/db/postgres"
	"github.com/maumlog/emotion-engine/internal/infra/httpserver"
	minioStore "github.com/maumlog/emotion-engine/internal/infra/storage"
	"github.com/maumlog/emotion-engine/internal/middleware"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		logger.Fatal("config load error", zap.Error(err))
	}

	ctx := context.Background()

	// connect database sesuai driver
	var (
		db           *sql.DB
		cache        domain.Cache
		interactions domain.InteractionRepository
		failures     domain.FailureRepository
	)
	switch cfg.Database.Driver {
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			logger.Fatal("postgres connect error", zap.Error(err))
		}
		cache = postgresp.NewCacheRepository(db)
		interactions = postgresp.NewInteractionRepository(db)
	default:
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			logger.Fatal("mysql connect error", zap.Error(err))
		}
		if err := mysqlp.EnsureSchema(ctx, db); err != nil {
			logger.Fatal("schema init error", zap.Error(err))
		}
		cache = mysqlp.NewCacheRepository(db)
		interactions = mysqlp.NewInteractionRepository(db)
		failures = mysqlp.NewFailureRepository(db)
	}
	defer db.Close()

	// init minio (optional; tanpa minio attachment tidak disimpan)
	var media domain.MediaStore
	if cfg.Minio.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			logger.Fatal("minio init error", zap.Error(err))
		}
		media = store
	}

	// init inference client
	taxonomy := emotion.NewDefaultTaxonomy()
	timeout := time.Duration(cfg.OpenAI.TimeoutSeconds) * time.Second
	ai := aiclient.NewClient(
		cfg.OpenAI.APIKey,
		cfg.OpenAI.ChatModel,
		cfg.OpenAI.VisionModel,
		cfg.OpenAI.TranscribeModel,
		timeout,
		taxonomy.FineLabels(),
	)

	// init service
	svc := &appanalysis.Service{
		Gate:         safety.NewDefaultGate(),
		Keywords:     emotion.NewClassifier(nil),
		Taxonomy:     taxonomy,
		Fusion:       domain.NewFusionEngine(nil),
		Cache:        cache,
		Inference:    ai,
		Transcriber:  ai,
		Media:        media,
		Interactions: interactions,
		Failures:     failures,
		Clock:        application.SystemClock{},
		Log:          logger,
		ModelVersion: ai.ModelVersion(),
		CacheTTL:     time.Duration(cfg.Cache.TTLMinutes) * time.Minute,
	}

	// init router
	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	mux.Use(middleware.APIKeyAuth(cfg.Auth.Keys))
	rlCapacity, rlRefill := cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate
	if rlCapacity <= 0 {
		rlCapacity = 30
	}
	if rlRefill <= 0 {
		rlRefill = 1
	}
	mux.Use(middleware.RateLimitMiddleware(rlCapacity, rlRefill))
	mux.Use(middleware.LoggingMiddleware(logger))
	mux.Use(middleware.MetricsMiddleware)

	mux.Get("/health", middleware.HealthHandler(map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
	}))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)
	mux.Mount("/", httpserver.NewRouter(svc, logger))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		logger.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down server")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Warn("shutdown error", zap.Error(err))
	}
}
