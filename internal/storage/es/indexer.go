package es

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/apptrove/apptrove/internal/domain"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
)

//go:embed mapping.json
var indexMapping []byte

// Indexer creates the app index and bulk-loads denormalized documents.
type Indexer struct {
	client    *elasticsearch.Client
	indexName string
}

func NewIndexer(config ClientConfig) (*Indexer, error) {
	client, err := newClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	return &Indexer{
		client:    client,
		indexName: config.IndexName,
	}, nil
}

// EnsureIndex creates the index with the app document mapping unless it
// already exists.
func (i *Indexer) EnsureIndex(ctx context.Context) error {
	res, err := i.client.Indices.Exists(
		[]string{i.indexName},
		i.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	res.Body.Close()

	if res.StatusCode == 200 {
		slog.Info("Index already exists", "index", i.indexName)
		return nil
	}

	createRes, err := i.client.Indices.Create(
		i.indexName,
		i.client.Indices.Create.WithContext(ctx),
		i.client.Indices.Create.WithBody(bytes.NewReader(indexMapping)),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("index creation returned %s", createRes.String())
	}

	slog.Info("Created index", "index", i.indexName)
	return nil
}

// BulkLoadStats summarizes one bulk-load run.
type BulkLoadStats struct {
	Indexed uint64
	Failed  uint64
	Took    time.Duration
}

// BulkLoad streams documents from docs into the index until the channel
// closes. Documents are keyed by app id, so reloading replaces rather than
// duplicates.
func (i *Indexer) BulkLoad(ctx context.Context, docs <-chan domain.AppDocument, workers int) (*BulkLoadStats, error) {
	if workers <= 0 {
		workers = 4
	}

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:     i.client,
		Index:      i.indexName,
		NumWorkers: workers,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bulk indexer: %w", err)
	}

	start := time.Now()
	for doc := range docs {
		data, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal document %d: %w", doc.AppID, err)
		}

		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: strconv.FormatInt(doc.AppID, 10),
			Body:       bytes.NewReader(data),
			OnFailure: func(_ context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				if err != nil {
					slog.Error("Bulk index item failed", "doc_id", item.DocumentID, "error", err)
				} else {
					slog.Error("Bulk index item rejected", "doc_id", item.DocumentID, "type", res.Error.Type, "reason", res.Error.Reason)
				}
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to enqueue document %d: %w", doc.AppID, err)
		}
	}

	if err := bi.Close(ctx); err != nil {
		return nil, fmt.Errorf("failed to flush bulk indexer: %w", err)
	}

	stats := bi.Stats()
	out := &BulkLoadStats{
		Indexed: stats.NumFlushed,
		Failed:  stats.NumFailed,
		Took:    time.Since(start),
	}

	slog.Info("Bulk load finished",
		"indexed", out.Indexed,
		"failed", out.Failed,
		"took", out.Took.Round(time.Millisecond).String())
	return out, nil
}

// DeleteIndex drops the index. Used by the loader's --recreate path.
func (i *Indexer) DeleteIndex(ctx context.Context) error {
	res, err := i.client.Indices.Delete(
		[]string{i.indexName},
		i.client.Indices.Delete.WithContext(ctx),
		i.client.Indices.Delete.WithIgnoreUnavailable(true),
	)
	if err != nil {
		return fmt.Errorf("failed to delete index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && !strings.Contains(res.String(), "index_not_found") {
		return fmt.Errorf("index deletion returned %s", res.String())
	}
	return nil
}
