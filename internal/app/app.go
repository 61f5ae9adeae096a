package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/MAH-7/JPKWT-Rating-Reviews/migrations"
	"github.com/MAH-7/JPKWT-Rating-Reviews/pkg/database"
	"github.com/MAH-7/JPKWT-Rating-Reviews/pkg/health"
	pkgkafka "github.com/MAH-7/JPKWT-Rating-Reviews/pkg/kafka"
	"github.com/MAH-7/JPKWT-Rating-Reviews/pkg/tracing"

	"github.com/MAH-7/JPKWT-Rating-Reviews/internal/cache"
	"github.com/MAH-7/JPKWT-Rating-Reviews/internal/config"
	"github.com/MAH-7/JPKWT-Rating-Reviews/internal/event"
	handler "github.com/MAH-7/JPKWT-Rating-Reviews/internal/handler/http"
	"github.com/MAH-7/JPKWT-Rating-Reviews/internal/repository"
	"github.com/MAH-7/JPKWT-Rating-Reviews/internal/repository/memory"
	"github.com/MAH-7/JPKWT-Rating-Reviews/internal/repository/postgres"
	"github.com/MAH-7/JPKWT-Rating-Reviews/internal/service"
)

const serviceName = "reviews-service"

// App wires together all dependencies and runs the reviews service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	tracerShutdown func(context.Context) error
	httpServer     *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:  serviceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTELEndpoint,
		SampleRate:   cfg.OTELSampleRate,
		Enabled:      cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)

	healthHandler := health.NewHandler()

	// Storage backend.
	var (
		repo repository.ReviewRepository
		pool *pgxpool.Pool
	)
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		pool, err = database.NewPostgresPool(ctx, cfg.PostgresConfig(), logger)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		database.RegisterPoolMetrics(pool, serviceName)
		healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
			return pool.Ping(ctx)
		})
		repo = postgres.NewReviewRepository(pool)
	case config.BackendMemory:
		logger.Warn("using in-memory storage, data will not survive restarts")
		repo = memory.NewReviewRepository()
	}

	// Listing cache. A failed Redis connection degrades to uncached reads.
	var rdb *redis.Client
	if cfg.CacheEnabled {
		rdb, err = database.NewRedisClient(ctx, cfg.RedisConfig())
		if err != nil {
			logger.Warn("redis unavailable, listing cache disabled",
				slog.String("error", err.Error()),
			)
			rdb = nil
		} else {
			healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			})
		}
	}

	// Kafka producer. Broker trouble only degrades event delivery.
	var producer *pkgkafka.Producer
	if cfg.EventsEnabled {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)

		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		if err := producer.Ping(pingCtx); err != nil {
			logger.Warn("kafka brokers unreachable, events will be retried per publish",
				slog.String("error", err.Error()),
			)
		}
		pingCancel()

		healthHandler.RegisterNonCritical("kafka", producer.Ping)
	}

	// Build the dependency graph.
	var events service.EventPublisher
	if producer != nil {
		events = event.NewProducer(producer, logger)
	}
	var listingCache service.ListingCache
	if rdb != nil {
		listingCache = cache.NewReviewCache(rdb, cfg.CacheTTL())
	}
	reviewService := service.NewReviewService(repo, events, listingCache, logger)

	router := handler.NewRouter(handler.RouterConfig{
		ServiceName:    serviceName,
		Environment:    cfg.Environment,
		AllowedOrigins: cfg.AllowedOrigins,
	}, reviewService, healthHandler, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		rdb:            rdb,
		producer:       producer,
		tracerShutdown: tracerShutdown,
		httpServer:     httpServer,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
			slog.String("storage_backend", a.cfg.StorageBackend),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}

	if a.pool != nil {
		a.pool.Close()
	}

	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(shutdownCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	}

	a.logger.Info("application shutdown complete")
	return nil
}
