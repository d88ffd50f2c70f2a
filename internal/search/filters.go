// Package search holds the query compilation and response-caching core:
// parameter validation, filter-to-query compilation, canonical cache keys
// and the count/search executor.
package search

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/apptrove/apptrove/internal/apperr"
	"github.com/apptrove/apptrove/internal/domain"
)

const (
	// LimitMin and LimitMax bound the page size. Values outside are
	// rejected, not clamped.
	LimitMin = 10
	LimitMax = 100

	// DefaultLimit applies when the limit parameter is absent.
	DefaultLimit = 20

	maxTextLen  = 100
	maxPkgLen   = 255
	maxTokenLen = 100
)

// Per-field safe character classes. Control characters and anything with
// query-syntax meaning to the index is rejected outright.
var (
	textPattern    = regexp.MustCompile(`^[a-zA-Z0-9 .,\-_'&+]+$`)
	packagePattern = regexp.MustCompile(`^[a-zA-Z0-9._\-]+$`)
	tokenPattern   = regexp.MustCompile(`^[a-zA-Z0-9 ._\-&]+$`)
	permPattern    = regexp.MustCompile(`^[a-zA-Z0-9._\- ]+$`)
)

// RawParams carries the untyped query-string input of a search request.
type RawParams struct {
	Keyword       string
	Query         string
	PackageName   string
	DeveloperName string
	Categories    string
	Maturity      string
	Permissions   string
	Downloadable  string
	Page          string
	Limit         string
}

// SearchFilters is the validated, typed filter set of one search request.
// It is fully determined by its input and immutable once built.
type SearchFilters struct {
	Keyword       string
	Query         string
	PackageName   string
	DeveloperName string
	Categories    []string
	Maturity      []string
	Permissions   []string
	Downloadable  bool
	Page          int
	Limit         int
}

// Offset is the 0-based index of the first hit of the requested page.
func (f *SearchFilters) Offset() int {
	return (f.Page - 1) * f.Limit
}

// ParseFilters validates raw query parameters into a SearchFilters. Pure:
// no network or cache access. On failure the returned ValidationError lists
// every violated constraint.
func ParseFilters(raw RawParams) (*SearchFilters, error) {
	var fields []apperr.FieldError
	invalid := func(name, reason string) {
		fields = append(fields, apperr.FieldError{Field: name, Reason: reason})
	}

	f := &SearchFilters{
		Downloadable: true,
		Page:         1,
		Limit:        DefaultLimit,
	}

	f.Keyword = validText(raw.Keyword, "keyword", textPattern, maxTextLen, invalid)
	f.Query = validText(raw.Query, "query", textPattern, maxTextLen, invalid)
	f.PackageName = validText(raw.PackageName, "package_name", packagePattern, maxPkgLen, invalid)
	f.DeveloperName = validText(raw.DeveloperName, "developer_name", textPattern, maxTextLen, invalid)

	f.Categories = validList(raw.Categories, "categories", tokenPattern, invalid)
	f.Maturity = validList(raw.Maturity, "maturity", tokenPattern, invalid)
	for _, m := range f.Maturity {
		if !domain.IsMaturity(m) {
			invalid("maturity", fmt.Sprintf("unknown rating %q", m))
		}
	}
	f.Permissions = validList(raw.Permissions, "permissions", permPattern, invalid)

	if raw.Downloadable != "" {
		b, err := strconv.ParseBool(raw.Downloadable)
		if err != nil {
			invalid("downloadable", "must be a boolean")
		} else {
			f.Downloadable = b
		}
	}

	if raw.Page != "" {
		p, err := strconv.Atoi(raw.Page)
		switch {
		case err != nil:
			invalid("page", "must be an integer")
		case p < 1:
			invalid("page", "must be >= 1")
		default:
			f.Page = p
		}
	}

	if raw.Limit != "" {
		l, err := strconv.Atoi(raw.Limit)
		switch {
		case err != nil:
			invalid("limit", "must be an integer")
		case l < LimitMin || l > LimitMax:
			invalid("limit", fmt.Sprintf("must be between %d and %d", LimitMin, LimitMax))
		default:
			f.Limit = l
		}
	}

	if len(fields) > 0 {
		return nil, apperr.NewValidationFields("invalid search parameters", fields)
	}
	return f, nil
}

func validText(v, name string, pattern *regexp.Regexp, maxLen int, invalid func(string, string)) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if len(v) > maxLen {
		invalid(name, fmt.Sprintf("longer than %d characters", maxLen))
		return ""
	}
	if !pattern.MatchString(v) {
		invalid(name, "contains forbidden characters")
		return ""
	}
	return v
}

// validList splits a comma-separated parameter into trimmed tokens,
// validating each token against the field's character class.
func validList(v, name string, pattern *regexp.Regexp, invalid func(string, string)) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	var out []string
	for _, tok := range strings.Split(v, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if len(tok) > maxTokenLen {
			invalid(name, fmt.Sprintf("token longer than %d characters", maxTokenLen))
			continue
		}
		if !pattern.MatchString(tok) {
			invalid(name, fmt.Sprintf("token %q contains forbidden characters", tok))
			continue
		}
		out = append(out, tok)
	}
	return out
}
