package main

import (
	"fmt"
	"log/slog"
	"os"

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

type IndexLoadConfig struct {
	ES   es.ClientConfig
	Pool pg.PoolConfig
}

func (as *AppConfig) Load() (*IndexLoadConfig, error) {
	err := env.LoadDotEnv(as.ENV, "cmd/index_load/.env")
	if err != nil {
		slog.Info("Failed to load .env, continuing with existing environment variables", "error", err)
	}

	cfg := &IndexLoadConfig{
		ES: es.ClientConfig{
			Addresses: stringsutil.TrimAndSplit(os.Getenv("ES_ADDRESSES")),
			IndexName: os.Getenv("ES_INDEX"),
			Username:  os.Getenv("ES_USERNAME"),
			Password:  os.Getenv("ES_PASSWORD"),
		},
		Pool: pg.PoolConfig{
			ConnStr: os.Getenv("DATABASE_URL"),
		},
	}

	if len(cfg.ES.Addresses) == 0 {
		cfg.ES.Addresses = []string{"http://localhost:9200"}
	}
	if cfg.ES.IndexName == "" {
		cfg.ES.IndexName = "apps"
	}
	if cfg.Pool.ConnStr == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}
