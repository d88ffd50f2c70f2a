package search

import (
	"errors"
	"testing"

	"github.com/apptrove/apptrove/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilters_Defaults(t *testing.T) {
	f, err := ParseFilters(RawParams{})
	require.NoError(t, err)

	assert.Equal(t, 1, f.Page)
	assert.Equal(t, DefaultLimit, f.Limit)
	assert.True(t, f.Downloadable)
	assert.Empty(t, f.Keyword)
	assert.Empty(t, f.Categories)
	assert.Equal(t, 0, f.Offset())
}

func TestParseFilters_Valid(t *testing.T) {
	f, err := ParseFilters(RawParams{
		Keyword:       "offline maps",
		PackageName:   "com.example.maps",
		DeveloperName: "Example Inc",
		Categories:    "Navigation, Travel",
		Maturity:      "Everyone",
		Permissions:   "ACCESS_FINE_LOCATION,INTERNET",
		Downloadable:  "false",
		Page:          "3",
		Limit:         "50",
	})
	require.NoError(t, err)

	assert.Equal(t, "offline maps", f.Keyword)
	assert.Equal(t, []string{"Navigation", "Travel"}, f.Categories)
	assert.Equal(t, []string{"Everyone"}, f.Maturity)
	assert.Equal(t, []string{"ACCESS_FINE_LOCATION", "INTERNET"}, f.Permissions)
	assert.False(t, f.Downloadable)
	assert.Equal(t, 100, f.Offset())
}

func TestParseFilters_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		raw   RawParams
		field string
	}{
		{"limit below minimum", RawParams{Limit: "5"}, "limit"},
		{"limit above maximum", RawParams{Limit: "101"}, "limit"},
		{"limit not a number", RawParams{Limit: "many"}, "limit"},
		{"page zero", RawParams{Page: "0"}, "page"},
		{"page negative", RawParams{Page: "-2"}, "page"},
		{"unknown maturity rating", RawParams{Maturity: "Adults Only"}, "maturity"},
		{"keyword with query syntax", RawParams{Keyword: `maps" OR 1`}, "keyword"},
		{"package with slash", RawParams{PackageName: "com/example"}, "package_name"},
		{"downloadable not boolean", RawParams{Downloadable: "maybe"}, "downloadable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFilters(tt.raw)
			require.Error(t, err)

			var verr *apperr.ValidationError
			require.True(t, errors.As(err, &verr))

			found := false
			for _, f := range verr.Fields {
				if f.Field == tt.field {
					found = true
				}
			}
			assert.True(t, found, "expected a violation on field %q, got %v", tt.field, verr.Fields)
		})
	}
}

func TestParseFilters_CollectsAllViolations(t *testing.T) {
	_, err := ParseFilters(RawParams{Page: "0", Limit: "5", Downloadable: "maybe"})
	require.Error(t, err)

	var verr *apperr.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 3)
}

func TestParseFilters_NoClamping(t *testing.T) {
	// Out-of-range values must fail loudly rather than silently shifting
	// the requested page window.
	_, err := ParseFilters(RawParams{Limit: "200"})
	assert.Error(t, err)

	_, err = ParseFilters(RawParams{Limit: "100"})
	assert.NoError(t, err)
}

func TestParseFilters_ListTrimming(t *testing.T) {
	f, err := ParseFilters(RawParams{Categories: " Navigation , , Travel "})
	require.NoError(t, err)
	assert.Equal(t, []string{"Navigation", "Travel"}, f.Categories)
}

func TestParseFilters_TooLong(t *testing.T) {
	long := make([]byte, maxTextLen+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err := ParseFilters(RawParams{Keyword: string(long)})
	assert.Error(t, err)
}
