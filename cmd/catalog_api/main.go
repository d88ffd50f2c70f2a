package main

import (
	"log/slog"
	"os"

	"github.com/apptrove/apptrove/internal/auth"
	"github.com/apptrove/apptrove/internal/cache"
	"github.com/apptrove/apptrove/internal/files"
	"github.com/apptrove/apptrove/internal/router"
	"github.com/apptrove/apptrove/internal/search"
	"github.com/apptrove/apptrove/internal/server"
	"github.com/apptrove/apptrove/internal/storage/es"
	"github.com/apptrove/apptrove/internal/storage/pg"
	pkgserver "github.com/apptrove/apptrove/pkg/server"
)

func main() {
	sCfg, err := server.LoadConfig()
	if err != nil {
		slog.Error("Failed to load server config", "error", err)
		os.Exit(1)
	}

	appSettings := NewAppConfig()
	cfg, err := appSettings.Load()
	if err != nil {
		slog.Error("Failed to load app configuration", "error", err)
		os.Exit(1)
	}

	redis, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		slog.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redis.Close()

	s := server.New(sCfg, pkgserver.NewPingHealthChecker(redis.Ping)).
		SetupMiddlewares().
		SetupHealthChecks()

	pool, err := pg.NewConnectionPool(s.Context(), cfg.Pool)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	searcher, err := es.NewSearcher(cfg.ES)
	if err != nil {
		slog.Error("Failed to create index searcher", "error", err)
		os.Exit(1)
	}

	resultCache := search.NewResultCache(redis, cfg.CacheTTL)
	executor := search.NewExecutor(searcher, resultCache)
	issuer := auth.NewTokenIssuer(cfg.Secret)
	fileStore := files.NewStore(cfg.APKDirs)

	catalog := pg.NewCatalogStore(pool)
	users := pg.NewUserStore(pool)
	downloads := pg.NewDownloadStore(pool)

	searchRouter := router.NewSearchRouter(s.Echo, executor, resultCache)
	searchRouter.Bind()

	catalogRouter := router.NewCatalogRouter(s.Echo, catalog, redis, cfg.CacheTTL)
	catalogRouter.Bind()

	userRouter := router.NewUserRouter(s.Echo, users, issuer)
	userRouter.Bind()

	downloadRouter := router.NewDownloadRouter(s.Echo, userRouter, downloads, fileStore, redis, issuer)
	downloadRouter.Bind()

	go func() {
		<-s.ShutdownSignal()
		slog.Info("Shutdown started, cleaning up resources...")
	}()

	if err := s.Start(); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
