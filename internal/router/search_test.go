package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/apptrove/apptrove/internal/apperr"
	"github.com/apptrove/apptrove/internal/cache"
	"github.com/apptrove/apptrove/internal/domain"
	"github.com/apptrove/apptrove/internal/dto"
	"github.com/apptrove/apptrove/internal/query"
	"github.com/apptrove/apptrove/internal/search"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubIndex struct {
	docs  []domain.AppDocument
	calls int
}

func (s *stubIndex) Count(_ context.Context, _ *query.Bool) (int64, error) {
	return int64(len(s.docs)), nil
}

func (s *stubIndex) Search(_ context.Context, _ *query.Bool, from, size int) ([]domain.AppDocument, error) {
	s.calls++
	if from >= len(s.docs) {
		return nil, nil
	}
	end := from + size
	if end > len(s.docs) {
		end = len(s.docs)
	}
	return s.docs[from:end], nil
}

func newSearchTestServer(index search.Index) (*echo.Echo, *stubIndex) {
	e := echo.New()
	e.HTTPErrorHandler = apperr.GlobalErrorHandler()

	rc := search.NewResultCache(cache.NewMemory(), time.Minute)
	r := NewSearchRouter(e, search.NewExecutor(index, rc), rc)
	r.Bind()
	return e, index.(*stubIndex)
}

func doSearch(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSearchEndpoint(t *testing.T) {
	e, _ := newSearchTestServer(&stubIndex{docs: []domain.AppDocument{
		{AppID: 1, PackageName: "com.example.maps", Names: []domain.AppName{{Name: "Maps"}}},
		{AppID: 2, PackageName: "com.example.nav", Names: []domain.AppName{{Name: "Navigator"}}},
	}})

	rec := doSearch(e, "/api/search?keyword=maps")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get(HeaderTotalCount))

	var hits []dto.AppHit
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hits))
	require.Len(t, hits, 2)
	assert.Equal(t, 1, hits[0].ID)
	assert.Equal(t, "Maps", hits[0].Name)
	assert.Equal(t, "com.example.nav", hits[1].PackageName)
}

func TestSearchEndpoint_EmptyResult(t *testing.T) {
	e, _ := newSearchTestServer(&stubIndex{})

	rec := doSearch(e, "/api/search?keyword=nothing")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get(HeaderTotalCount))
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestSearchEndpoint_ValidationError(t *testing.T) {
	e, _ := newSearchTestServer(&stubIndex{})

	rec := doSearch(e, "/api/search?limit=5&page=0")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	fields, ok := body["fields"].([]any)
	require.True(t, ok)
	assert.Len(t, fields, 2)
}

func TestSearchEndpoint_SecondRequestServedFromCache(t *testing.T) {
	e, index := newSearchTestServer(&stubIndex{docs: []domain.AppDocument{
		{AppID: 1, PackageName: "com.example.maps", Names: []domain.AppName{{Name: "Maps"}}},
	}})

	first := doSearch(e, "/api/search?keyword=maps")
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, 1, index.calls)

	second := doSearch(e, "/api/search?keyword=maps")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, 1, index.calls, "repeat request must be served from the cache")
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, first.Header().Get(HeaderTotalCount), second.Header().Get(HeaderTotalCount))
}

func TestSearchEndpoint_ParameterOrderSharesCacheEntry(t *testing.T) {
	e, index := newSearchTestServer(&stubIndex{docs: []domain.AppDocument{
		{AppID: 1, PackageName: "com.example.maps", Names: []domain.AppName{{Name: "Maps"}}},
	}})

	rec := doSearch(e, "/api/search?categories=Navigation,Travel")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doSearch(e, "/api/search?categories=Travel,Navigation")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, index.calls)
}
