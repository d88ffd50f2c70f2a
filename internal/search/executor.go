package search

import (
	"context"
	"log/slog"

	"github.com/apptrove/apptrove/internal/apperr"
	"github.com/apptrove/apptrove/internal/domain"
	"github.com/apptrove/apptrove/internal/dto"
	"github.com/apptrove/apptrove/internal/query"
)

// CountCeiling is the largest total the index counts exactly. Raw totals at
// or above it are clamped: beyond the ceiling the reported total is a
// floor-bounded estimate, not exact. Exact counting past it would need a
// scroll cursor.
const CountCeiling = 50_000

// Index is the search-engine surface the executor consumes. Implementations
// are injected; the executor never reaches into process-wide client state.
type Index interface {
	// Count returns the raw number of documents matching q.
	Count(ctx context.Context, q *query.Bool) (int64, error)
	// Search returns one page of matching documents.
	Search(ctx context.Context, q *query.Bool, from, size int) ([]domain.AppDocument, error)
}

// Executor runs the count and paginated search round-trips for one filter
// set, shapes the hits and populates the result cache.
type Executor struct {
	index Index
	cache *ResultCache
}

func NewExecutor(index Index, cache *ResultCache) *Executor {
	return &Executor{index: index, cache: cache}
}

// Search executes the compiled query and returns the capped total with the
// requested page of hits. The fresh page is cached under the canonical key
// for this exact (filters, offset, limit); other pages of the same logical
// query are separate entries. Index failures surface as retryable
// UnavailableErrors and are never cached.
func (e *Executor) Search(ctx context.Context, f *SearchFilters) (*dto.SearchPage, error) {
	q := Compile(f)
	offset := f.Offset()

	total, err := e.index.Count(ctx, q)
	if err != nil {
		return nil, apperr.NewUnavailable("index", err)
	}

	docs, err := e.index.Search(ctx, q, offset, f.Limit)
	if err != nil {
		return nil, apperr.NewUnavailable("index", err)
	}

	hits := make([]dto.AppHit, 0, len(docs))
	for i := range docs {
		doc := &docs[i]
		hits = append(hits, dto.AppHit{
			ID:          offset + i + 1,
			AppID:       doc.AppID,
			Name:        doc.LatestName(),
			PackageName: doc.PackageName,
		})
	}

	if total >= CountCeiling {
		total = CountCeiling
	}

	page := &dto.SearchPage{TotalCount: total, Hits: hits}
	if err := e.cache.Put(ctx, CacheKey(f), page); err != nil {
		return nil, err
	}

	slog.Debug("Search page computed",
		"total", total,
		"returned", len(hits),
		"page", f.Page,
		"limit", f.Limit)

	return page, nil
}
