package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/apptrove/apptrove/internal/domain"
	"github.com/apptrove/apptrove/internal/query"
	"github.com/apptrove/apptrove/internal/search"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// Compile-time interface assertion
var _ search.Index = (*Searcher)(nil)

// Searcher runs count and paginated search operations against the app index.
type Searcher struct {
	client    *elasticsearch.Client
	indexName string
	timeout   time.Duration
}

func NewSearcher(config ClientConfig) (*Searcher, error) {
	client, err := newClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	return &Searcher{
		client:    client,
		indexName: config.IndexName,
		timeout:   config.timeout(),
	}, nil
}

// Count implements search.Index using the dedicated count endpoint, which
// reports totals independently of any page window.
func (s *Searcher) Count(ctx context.Context, q *query.Bool) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	body, err := encodeBody(q)
	if err != nil {
		return 0, err
	}

	res, err := s.client.Count(
		s.client.Count.WithContext(ctx),
		s.client.Count.WithIndex(s.indexName),
		s.client.Count.WithBody(body),
	)
	if err != nil {
		slog.Error("Elasticsearch count failed", "error", err)
		return 0, fmt.Errorf("failed to execute count: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, statusError("count", res)
	}

	var parsed countResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("failed to decode count response: %w", err)
	}
	return parsed.Count, nil
}

// Search implements search.Index with an offset/size page of raw documents.
func (s *Searcher) Search(ctx context.Context, q *query.Bool, from, size int) ([]domain.AppDocument, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	body, err := encodeBody(q)
	if err != nil {
		return nil, err
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.indexName),
		s.client.Search.WithBody(body),
		s.client.Search.WithFrom(from),
		s.client.Search.WithSize(size),
	)
	if err != nil {
		slog.Error("Elasticsearch search failed", "error", err, "from", from, "size", size)
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, statusError("search", res)
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	docs := make([]domain.AppDocument, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		var doc domain.AppDocument
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal document: %w", err)
		}
		docs = append(docs, doc)
	}

	slog.Debug("Es search page fetched", "returned_count", len(docs), "from", from, "size", size)
	return docs, nil
}

func encodeBody(q *query.Bool) (io.Reader, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query.NewRoot(q)); err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}
	return &buf, nil
}

func statusError(op string, res *esapi.Response) error {
	return fmt.Errorf("%s returned %s", op, res.String())
}

type countResponse struct {
	Count int64 `json:"count"`
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}
