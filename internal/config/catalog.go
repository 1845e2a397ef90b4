package config

import (
	"fmt"
	"os"
	"time"
)

const (
	SourceMemory   = "memory"
	SourcePostgres = "postgres"
)

const (
	defaultHTTPAddr        = ":8080"
	defaultMigrationsPath  = "migrations/catalog"
	defaultShutdownTimeout = 10 * time.Second
	defaultSearchCacheTTL  = 5 * time.Minute

	defaultDBMaxOpenConns    = 25
	defaultDBMaxIdleConns    = 5
	defaultDBConnMaxLifetime = 5 * time.Minute
	defaultDBPingTimeout     = 5 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
)

type Catalog struct {
	Source            string
	SeedPath          string
	DatabaseURL       string
	RabbitMQURL       string
	RedisURL          string
	SearchCacheTTL    time.Duration
	HTTPAddr          string
	MigrationsPath    string
	ShutdownTimeout   time.Duration
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBPingTimeout     time.Duration
	ReadHeaderTimeout time.Duration
}

// LoadCatalog reads the catalog service configuration. RabbitMQ and Redis are
// optional; DATABASE_URL is only required when the catalog is served from
// Postgres.
func LoadCatalog() (Catalog, error) {
	cfg := Catalog{
		Source:            getEnv("CATALOG_SOURCE", SourceMemory),
		SeedPath:          getEnv("CATALOG_SEED_PATH", ""),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		RabbitMQURL:       getEnv("RABBITMQ_URL", ""),
		RedisURL:          getEnv("REDIS_URL", ""),
		SearchCacheTTL:    defaultSearchCacheTTL,
		HTTPAddr:          getEnv("HTTP_ADDR", defaultHTTPAddr),
		MigrationsPath:    getEnv("MIGRATIONS_PATH", defaultMigrationsPath),
		ShutdownTimeout:   defaultShutdownTimeout,
		DBMaxOpenConns:    defaultDBMaxOpenConns,
		DBMaxIdleConns:    defaultDBMaxIdleConns,
		DBConnMaxLifetime: defaultDBConnMaxLifetime,
		DBPingTimeout:     defaultDBPingTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
	}

	switch cfg.Source {
	case SourceMemory:
	case SourcePostgres:
		if cfg.DatabaseURL == "" {
			return Catalog{}, fmt.Errorf("DATABASE_URL is required")
		}
	default:
		return Catalog{}, fmt.Errorf("CATALOG_SOURCE must be %q or %q", SourceMemory, SourcePostgres)
	}

	if raw := getEnv("SEARCH_CACHE_TTL", ""); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			return Catalog{}, fmt.Errorf("SEARCH_CACHE_TTL must be a positive duration")
		}
		cfg.SearchCacheTTL = ttl
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
