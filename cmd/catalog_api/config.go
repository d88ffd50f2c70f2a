package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/apptrove/apptrove/internal/cache"
	"github.com/apptrove/apptrove/internal/search"
	"github.com/apptrove/apptrove/internal/storage/es"
	"github.com/apptrove/apptrove/internal/storage/pg"
	"github.com/apptrove/apptrove/pkg/config/env"
	"github.com/apptrove/apptrove/pkg/stringsutil"
)

type AppConfig struct {
	ENV string
}

func NewAppConfig() *AppConfig {
	return &AppConfig{
		ENV: os.Getenv("ENV"),
	}
}

type CatalogAPIConfig struct {
	ES       es.ClientConfig
	Redis    cache.RedisConfig
	Pool     pg.PoolConfig
	Secret   string
	CacheTTL time.Duration
	APKDirs  []string
}

func (as *AppConfig) Load() (*CatalogAPIConfig, error) {
	err := env.LoadDotEnv(as.ENV, "cmd/catalog_api/.env")
	if err != nil {
		slog.Info("Failed to load .env, continuing with existing environment variables", "error", err)
	}

	cfg := &CatalogAPIConfig{
		ES: es.ClientConfig{
			Addresses: stringsutil.TrimAndSplit(os.Getenv("ES_ADDRESSES")),
			IndexName: os.Getenv("ES_INDEX"),
			Username:  os.Getenv("ES_USERNAME"),
			Password:  os.Getenv("ES_PASSWORD"),
		},
		Redis: cache.RedisConfig{
			Addrs:    stringsutil.TrimAndSplit(os.Getenv("REDIS_ADDRS")),
			Username: os.Getenv("REDIS_USERNAME"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Pool: pg.PoolConfig{
			ConnStr: os.Getenv("DATABASE_URL"),
		},
		Secret:   os.Getenv("SECRET_KEY"),
		CacheTTL: search.DefaultResultTTL,
		APKDirs:  stringsutil.TrimAndSplit(os.Getenv("APK_DIRS")),
	}

	if len(cfg.ES.Addresses) == 0 {
		cfg.ES.Addresses = []string{"http://localhost:9200"}
	}
	if cfg.ES.IndexName == "" {
		cfg.ES.IndexName = "apps"
	}
	if len(cfg.Redis.Addrs) == 0 {
		cfg.Redis.Addrs = []string{"localhost:6379"}
	}
	if cfg.Pool.ConnStr == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Secret == "" {
		return nil, fmt.Errorf("SECRET_KEY is required")
	}

	if db := os.Getenv("REDIS_DB"); db != "" {
		n, err := strconv.Atoi(db)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
		}
		cfg.Redis.DB = n
	}

	if ttl := os.Getenv("CACHE_TTL_SECONDS"); ttl != "" {
		secs, err := strconv.Atoi(ttl)
		if err != nil || secs <= 0 {
			return nil, fmt.Errorf("invalid CACHE_TTL_SECONDS: %q", ttl)
		}
		cfg.CacheTTL = time.Duration(secs) * time.Second
	}

	return cfg, nil
}
