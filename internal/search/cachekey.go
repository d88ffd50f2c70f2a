package search

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
)

const cacheKeyPrefix = "search:"

// CacheKey derives the canonical cache key for one (filters, offset, limit)
// request. Set-valued fields are sorted before serialization, so two
// logically identical filter sets always map to the same key regardless of
// parameter order or process restarts. Never key on an unordered
// collection's native representation: that varies per run and silently
// defeats the cache.
func CacheKey(f *SearchFilters) string {
	var sb strings.Builder

	writeText := func(name, v string) {
		sb.WriteString(name)
		sb.WriteByte('=')
		sb.WriteString(v)
		sb.WriteByte('\n')
	}
	writeSet := func(name string, vs []string) {
		sorted := make([]string, len(vs))
		copy(sorted, vs)
		sort.Strings(sorted)
		writeText(name, strings.Join(sorted, ","))
	}

	writeText("keyword", f.Keyword)
	writeText("query", f.Query)
	writeText("package_name", f.PackageName)
	writeText("developer_name", f.DeveloperName)
	writeSet("categories", f.Categories)
	writeSet("maturity", f.Maturity)
	writeSet("permissions", f.Permissions)
	writeText("downloadable", strconv.FormatBool(f.Downloadable))
	writeText("offset", strconv.Itoa(f.Offset()))
	writeText("limit", strconv.Itoa(f.Limit))

	sum := sha256.Sum256([]byte(sb.String()))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}
