package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/apptrove/apptrove/internal/apperr"
	"github.com/apptrove/apptrove/internal/cache"
	"github.com/apptrove/apptrove/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func TestResultCache_RoundTrip(t *testing.T) {
	rc := NewResultCache(cache.NewMemory(), time.Minute)
	ctx := context.Background()

	page := &dto.SearchPage{
		TotalCount: 2,
		Hits: []dto.AppHit{
			{ID: 1, AppID: 10, Name: "App A", PackageName: "com.example.a"},
			{ID: 2, AppID: 11, Name: "App B", PackageName: "com.example.b"},
		},
	}
	require.NoError(t, rc.Put(ctx, "search:key", page))

	got, err := rc.Get(ctx, "search:key")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, page.TotalCount, got.TotalCount)
	assert.Equal(t, page.Hits, got.Hits)
}

func TestResultCache_MissIsNotAnError(t *testing.T) {
	rc := NewResultCache(cache.NewMemory(), time.Minute)

	got, err := rc.Get(context.Background(), "search:absent")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResultCache_HitSlidesTTL(t *testing.T) {
	c := &clock{now: time.Unix(1_700_000_000, 0)}
	store := cache.NewMemoryWithClock(c.Now)
	rc := NewResultCache(store, time.Minute)
	ctx := context.Background()

	require.NoError(t, rc.Put(ctx, "search:key", &dto.SearchPage{TotalCount: 1, Hits: []dto.AppHit{{ID: 1}}}))

	// Read just before expiry; the hit renews the full TTL.
	c.now = c.now.Add(59 * time.Second)
	got, err := rc.Get(ctx, "search:key")
	require.NoError(t, err)
	require.NotNil(t, got)

	c.now = c.now.Add(59 * time.Second)
	got, err = rc.Get(ctx, "search:key")
	require.NoError(t, err)
	assert.NotNil(t, got, "entry renewed on hit must survive past the original deadline")

	// Without further hits it finally expires.
	c.now = c.now.Add(61 * time.Second)
	got, err = rc.Get(ctx, "search:key")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResultCache_CorruptEntryIsAMiss(t *testing.T) {
	store := cache.NewMemory()
	rc := NewResultCache(store, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "search:key", []byte("{not json"), time.Minute))

	got, err := rc.Get(ctx, "search:key")
	require.NoError(t, err)
	assert.Nil(t, got)
}

type failingStore struct {
	cache.Cache
}

func (f *failingStore) Get(_ context.Context, _ string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func TestResultCache_TransportFailureSurfaces(t *testing.T) {
	rc := NewResultCache(&failingStore{Cache: cache.NewMemory()}, time.Minute)

	_, err := rc.Get(context.Background(), "search:key")
	require.Error(t, err)

	var uerr *apperr.UnavailableError
	assert.True(t, errors.As(err, &uerr))
}

func TestResultCache_DefaultTTL(t *testing.T) {
	rc := NewResultCache(cache.NewMemory(), 0)
	assert.Equal(t, DefaultResultTTL, rc.TTL())
}
