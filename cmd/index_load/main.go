package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/apptrove/apptrove/internal/domain"
	"github.com/apptrove/apptrove/internal/storage/es"
	"github.com/apptrove/apptrove/internal/storage/pg"
)

func main() {
	recreate := flag.Bool("recreate", false, "drop and recreate the index before loading")
	workers := flag.Int("workers", 4, "bulk indexing workers")
	batchSize := flag.Int("batch-size", 1000, "database export batch size")
	flag.Parse()

	appSettings := NewAppConfig()
	cfg, err := appSettings.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pool, err := pg.NewConnectionPool(ctx, cfg.Pool)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	indexer, err := es.NewIndexer(cfg.ES)
	if err != nil {
		slog.Error("Failed to create indexer", "error", err)
		os.Exit(1)
	}

	if *recreate {
		if err := indexer.DeleteIndex(ctx); err != nil {
			slog.Error("Failed to delete index", "error", err)
			os.Exit(1)
		}
	}

	if err := indexer.EnsureIndex(ctx); err != nil {
		slog.Error("Failed to ensure index", "error", err)
		os.Exit(1)
	}

	exporter := pg.NewExporter(pool, *batchSize)
	docs := make(chan domain.AppDocument, *batchSize)

	exportErr := make(chan error, 1)
	go func() {
		exportErr <- exporter.Stream(ctx, docs)
	}()

	stats, err := indexer.BulkLoad(ctx, docs, *workers)
	if err != nil {
		slog.Error("Bulk load failed", "error", err)
		os.Exit(1)
	}
	if err := <-exportErr; err != nil {
		slog.Error("Export failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Index load finished",
		"indexed", stats.Indexed,
		"failed", stats.Failed,
		"took", stats.Took,
	)
	if stats.Failed > 0 {
		os.Exit(1)
	}
}
