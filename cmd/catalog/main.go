package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"thryft-club/internal/catalog"
	"thryft-club/internal/catalog/cache"
	cataloghttp "thryft-club/internal/catalog/http"
	"thryft-club/internal/catalog/messaging"
	"thryft-club/internal/catalog/repository"
	"thryft-club/internal/catalog/service"
	"thryft-club/internal/config"

	_ "thryft-club/docs"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

const (
	metricSearchesTotal          = "catalog_searches_total"
	metricCacheHitsTotal         = "catalog_search_cache_hits_total"
	metricFavoriteTogglesTotal   = "catalog_favorite_toggles_total"
	metricListingsSubmittedTotal = "catalog_listings_submitted_total"
	migrateSourcePrefix          = "file://"
	postgresDriverName           = "postgres"
)

// @title        Thryft Club Catalog API
// @version      1.0
// @description  Search and browse the secondhand marketplace catalog.
// @host         localhost:8080
// @BasePath     /
func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	os.Exit(run(logger))
}

func run(logger *slog.Logger) int {
	cfg, err := config.LoadCatalog()
	if err != nil {
		logger.Error("load config", "error", err)
		return 1
	}

	health := cataloghttp.Health{Optional: map[string]cataloghttp.HealthChecker{}}

	var seed catalog.Seed
	switch cfg.Source {
	case config.SourcePostgres:
		db, err := openDatabase(cfg)
		if err != nil {
			logger.Error("open database", "error", err)
			return 1
		}
		defer db.Close()

		repo := repository.NewPostgres(db)
		health.Required = append(health.Required, repo)

		loadCtx, cancel := context.WithTimeout(context.Background(), cfg.DBPingTimeout)
		seed, err = repo.Load(loadCtx)
		cancel()
		if err != nil {
			logger.Error("load catalog snapshot", "error", err)
			return 1
		}
	default:
		seed, err = catalog.LoadSeed(cfg.SeedPath)
		if err != nil {
			logger.Error("load catalog seed", "error", err)
			return 1
		}
	}

	store, err := seed.Open()
	if err != nil {
		logger.Error("build catalog", "error", err)
		return 1
	}
	logger.Info("catalog loaded",
		"source", cfg.Source,
		"products", store.Len(),
		"version", store.Version(),
	)

	var publisher service.Publisher = messaging.NewLogPublisher(logger)
	if cfg.RabbitMQURL != "" {
		rabbitConn, err := amqp.Dial(cfg.RabbitMQURL)
		if err != nil {
			logger.Error("connect rabbitmq", "error", err)
			return 1
		}
		defer rabbitConn.Close()

		rabbitPublisher, err := messaging.NewRabbitPublisher(rabbitConn, catalog.EventsQueue)
		if err != nil {
			logger.Error("init publisher", "error", err)
			return 1
		}
		defer rabbitPublisher.Close()
		publisher = rabbitPublisher
	}

	var searchCache service.Cache
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("parse redis url", "error", err)
			return 1
		}
		redisCache := cache.NewRedis(redis.NewClient(opts), cfg.SearchCacheTTL)
		defer redisCache.Close()
		if err := redisCache.Health(); err != nil {
			logger.Warn("redis unavailable at startup, searches will bypass the cache", "error", err)
		}
		health.Optional["search_cache"] = redisCache
		searchCache = redisCache
	}

	metrics := service.Metrics{
		Searches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricSearchesTotal,
			Help: "Total number of catalog searches",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricCacheHitsTotal,
			Help: "Total number of searches served from the cache",
		}),
		FavoriteToggles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricFavoriteTogglesTotal,
			Help: "Total number of favorite toggle requests",
		}),
		ListingsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricListingsSubmittedTotal,
			Help: "Total number of listings submitted",
		}),
	}
	prometheus.MustRegister(metrics.Searches, metrics.CacheHits, metrics.FavoriteToggles, metrics.ListingsSubmitted)

	svc := service.New(store, searchCache, publisher, logger, metrics)
	handler := cataloghttp.NewHandler(svc)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cataloghttp.RequestIDMiddleware())
	router.Use(cataloghttp.AccessLogMiddleware(logger))
	cataloghttp.RegisterRoutes(router, handler, health)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("catalog service started", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("http server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		return 1
	}
	logger.Info("catalog service stopped")
	return 0
}

func openDatabase(cfg config.Catalog) (*sql.DB, error) {
	if err := runMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open(postgresDriverName, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(context.Background(), cfg.DBPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

func runMigrations(databaseURL, migrationsPath string) error {
	m, err := migrate.New(migrateSourcePrefix+migrationsPath, databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}
