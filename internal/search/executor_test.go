package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/apptrove/apptrove/internal/cache"
	"github.com/apptrove/apptrove/internal/domain"
	"github.com/apptrove/apptrove/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIndex serves canned documents and records the page requests it sees.
type fakeIndex struct {
	docs      []domain.AppDocument
	countErr  error
	searchErr error

	lastFrom int
	lastSize int
}

func (f *fakeIndex) Count(_ context.Context, _ *query.Bool) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return int64(len(f.docs)), nil
}

func (f *fakeIndex) Search(_ context.Context, _ *query.Bool, from, size int) ([]domain.AppDocument, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	f.lastFrom, f.lastSize = from, size
	if from >= len(f.docs) {
		return nil, nil
	}
	end := from + size
	if end > len(f.docs) {
		end = len(f.docs)
	}
	return f.docs[from:end], nil
}

func appDocs(n int) []domain.AppDocument {
	docs := make([]domain.AppDocument, 0, n)
	for i := 0; i < n; i++ {
		docs = append(docs, domain.AppDocument{
			AppID:       int64(i + 1),
			PackageName: fmt.Sprintf("com.example.app%d", i+1),
			Names:       []domain.AppName{{Name: fmt.Sprintf("App %d", i+1)}},
		})
	}
	return docs
}

func newTestExecutor(index Index) (*Executor, *ResultCache) {
	rc := NewResultCache(cache.NewMemory(), DefaultResultTTL)
	return NewExecutor(index, rc), rc
}

func TestExecutor_Search(t *testing.T) {
	index := &fakeIndex{docs: appDocs(3)}
	exec, _ := newTestExecutor(index)

	f := &SearchFilters{Keyword: "maps", Page: 1, Limit: 20}
	page, err := exec.Search(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, int64(3), page.TotalCount)
	require.Len(t, page.Hits, 3)
	for i, hit := range page.Hits {
		assert.Equal(t, i+1, hit.ID)
		assert.Equal(t, int64(i+1), hit.AppID)
		assert.Equal(t, fmt.Sprintf("App %d", i+1), hit.Name)
	}
}

func TestExecutor_OrdinalsContinueAcrossPages(t *testing.T) {
	index := &fakeIndex{docs: appDocs(45)}
	exec, _ := newTestExecutor(index)

	f := &SearchFilters{Page: 2, Limit: 20}
	page, err := exec.Search(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, 20, index.lastFrom)
	assert.Equal(t, 20, index.lastSize)
	require.Len(t, page.Hits, 20)
	assert.Equal(t, 21, page.Hits[0].ID)
	assert.Equal(t, 40, page.Hits[19].ID)
}

func TestExecutor_TotalCapped(t *testing.T) {
	// Raw count past the ceiling has to come back clamped.
	index := &cappedCountIndex{inner: &fakeIndex{docs: appDocs(10)}, count: CountCeiling + 12_345}
	exec, _ := newTestExecutor(index)

	page, err := exec.Search(context.Background(), &SearchFilters{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(CountCeiling), page.TotalCount)
}

func TestExecutor_TotalAtCeilingExactly(t *testing.T) {
	index := &cappedCountIndex{inner: &fakeIndex{docs: appDocs(10)}, count: CountCeiling}
	exec, _ := newTestExecutor(index)

	page, err := exec.Search(context.Background(), &SearchFilters{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(CountCeiling), page.TotalCount)
}

type cappedCountIndex struct {
	inner *fakeIndex
	count int64
}

func (c *cappedCountIndex) Count(_ context.Context, _ *query.Bool) (int64, error) {
	return c.count, nil
}

func (c *cappedCountIndex) Search(ctx context.Context, q *query.Bool, from, size int) ([]domain.AppDocument, error) {
	return c.inner.Search(ctx, q, from, size)
}

func TestExecutor_EmptyResult(t *testing.T) {
	exec, _ := newTestExecutor(&fakeIndex{})

	page, err := exec.Search(context.Background(), &SearchFilters{Keyword: "nothing", Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.TotalCount)
	assert.NotNil(t, page.Hits)
	assert.Empty(t, page.Hits)
}

func TestExecutor_IndexFailureNotCached(t *testing.T) {
	index := &fakeIndex{countErr: errors.New("cluster unreachable")}
	exec, rc := newTestExecutor(index)

	f := &SearchFilters{Keyword: "maps", Page: 1, Limit: 20}
	_, err := exec.Search(context.Background(), f)
	require.Error(t, err)

	cached, err := rc.Get(context.Background(), CacheKey(f))
	require.NoError(t, err)
	assert.Nil(t, cached, "a failed execution must not leave a cache entry")
}

func TestExecutor_SuccessPopulatesCache(t *testing.T) {
	index := &fakeIndex{docs: appDocs(3)}
	exec, rc := newTestExecutor(index)

	f := &SearchFilters{Keyword: "maps", Page: 1, Limit: 20}
	page, err := exec.Search(context.Background(), f)
	require.NoError(t, err)

	cached, err := rc.Get(context.Background(), CacheKey(f))
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, page.TotalCount, cached.TotalCount)
	assert.Equal(t, page.Hits, cached.Hits)
}
