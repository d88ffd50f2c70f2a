package search

import (
	"github.com/apptrove/apptrove/internal/query"
)

// Index field paths of the denormalized app document.
const (
	fieldNames          = "names.name"
	fieldDescriptions   = "descriptions.description"
	fieldPackageRaw     = "package_name.raw"
	fieldDeveloper      = "developer_name"
	fieldCategories     = "categories"
	fieldPermissionsRaw = "versions.permissions.raw"

	pathNames        = "names"
	pathDescriptions = "descriptions"
	pathVersions     = "versions"
)

// clauseContributor inspects one filter field and appends its clauses to the
// bool query. New filters get a new contributor; existing ones stay closed.
type clauseContributor func(f *SearchFilters, b *query.Bool)

// contributors run in a fixed order so the compiled query is deterministic
// for a given filter set.
var contributors = []clauseContributor{
	contributeKeyword,
	contributeQuery,
	contributePackageName,
	contributeDeveloperName,
	contributeCategoryMaturity,
	contributePermissions,
	contributeDownloadable,
}

// Compile translates a validated filter set into the index's boolean query.
// A filter set with no constraints compiles to an empty bool query, which
// matches every document.
func Compile(f *SearchFilters) *query.Bool {
	b := &query.Bool{}
	for _, contribute := range contributors {
		contribute(f, b)
	}
	return b
}

// contributeKeyword spreads the free-text keyword across every searchable
// surface of the document; matching any one of them satisfies the keyword.
func contributeKeyword(f *SearchFilters, b *query.Bool) {
	if f.Keyword == "" {
		return
	}
	b.Should = append(b.Should,
		query.NewNested(pathNames, query.FuzzyAndMatch(fieldNames, f.Keyword)),
		query.NewNested(pathDescriptions, query.FuzzyAndMatch(fieldDescriptions, f.Keyword)),
		query.Substring(fieldPackageRaw, f.Keyword),
		query.FuzzyAndMatch(fieldDeveloper, f.Keyword),
		query.NewTerm(fieldCategories, f.Keyword),
		query.NewNested(pathVersions, query.Substring(fieldPermissionsRaw, f.Keyword)),
	)
	// The should group restricts the already must-filtered set: at least
	// one keyword surface has to match even when must clauses are present.
	b.MinimumShouldMatch = 1
}

// contributeQuery requires a name match. Stricter than keyword.
func contributeQuery(f *SearchFilters, b *query.Bool) {
	if f.Query == "" {
		return
	}
	b.Must = append(b.Must,
		query.NewNested(pathNames, query.FuzzyAndMatch(fieldNames, f.Query)))
}

func contributePackageName(f *SearchFilters, b *query.Bool) {
	if f.PackageName == "" {
		return
	}
	b.Must = append(b.Must, query.Substring(fieldPackageRaw, f.PackageName))
}

func contributeDeveloperName(f *SearchFilters, b *query.Bool) {
	if f.DeveloperName == "" {
		return
	}
	b.Must = append(b.Must, query.NewMatchPhrase(fieldDeveloper, f.DeveloperName))
}

// contributeCategoryMaturity unions categories and maturity ratings into one
// term set; the document's category set must contain every term of it.
func contributeCategoryMaturity(f *SearchFilters, b *query.Bool) {
	terms := make([]string, 0, len(f.Categories)+len(f.Maturity))
	terms = append(terms, f.Categories...)
	terms = append(terms, f.Maturity...)
	if len(terms) == 0 {
		return
	}
	b.Must = append(b.Must, query.ContainsAll(fieldCategories, terms))
}

// contributePermissions demands every requested permission independently:
// one substring match per token, AND across tokens.
func contributePermissions(f *SearchFilters, b *query.Bool) {
	if len(f.Permissions) == 0 {
		return
	}
	inner := &query.Bool{}
	for _, perm := range f.Permissions {
		inner.Must = append(inner.Must, query.Substring(fieldPermissionsRaw, perm))
	}
	b.Must = append(b.Must, query.NewNested(pathVersions, query.BoolClause{Bool: inner}))
}

// contributeDownloadable keeps only apps with at least one version entry.
// Unscored: a filter clause, not a must clause.
func contributeDownloadable(f *SearchFilters, b *query.Bool) {
	if !f.Downloadable {
		return
	}
	b.Filter = append(b.Filter,
		query.NewNested(pathVersions, query.NewExists(pathVersions)))
}
