// Package query models the boolean query DSL accepted by the search index.
// Clauses marshal directly to the index's JSON wire format.
package query

// Clause is any query clause that can appear in a bool group.
type Clause interface {
	isClause()
}

// Bool is the top-level boolean query. An empty Bool matches all documents.
type Bool struct {
	Must               []Clause `json:"must,omitempty"`
	Should             []Clause `json:"should,omitempty"`
	Filter             []Clause `json:"filter,omitempty"`
	MinimumShouldMatch int      `json:"minimum_should_match,omitempty"`
}

// BoolClause wraps a Bool so it can nest inside another clause group.
type BoolClause struct {
	Bool *Bool `json:"bool"`
}

func (BoolClause) isClause() {}

// Root is the envelope sent to the index's query endpoints.
type Root struct {
	Query BoolClause `json:"query"`
}

// NewRoot wraps a bool query into a request envelope.
func NewRoot(b *Bool) *Root {
	return &Root{Query: BoolClause{Bool: b}}
}

type MatchParams struct {
	Query     string `json:"query"`
	Operator  string `json:"operator,omitempty"`
	Fuzziness string `json:"fuzziness,omitempty"`
}

type Match struct {
	Match map[string]MatchParams `json:"match"`
}

func (Match) isClause() {}

// FuzzyAndMatch builds a tokenized match with AND operator and auto fuzziness.
func FuzzyAndMatch(field, text string) Match {
	return Match{Match: map[string]MatchParams{
		field: {Query: text, Operator: "AND", Fuzziness: "AUTO"},
	}}
}

type MatchPhrase struct {
	MatchPhrase map[string]string `json:"match_phrase"`
}

func (MatchPhrase) isClause() {}

func NewMatchPhrase(field, text string) MatchPhrase {
	return MatchPhrase{MatchPhrase: map[string]string{field: text}}
}

type WildcardParams struct {
	Value           string `json:"value"`
	CaseInsensitive bool   `json:"case_insensitive,omitempty"`
}

type Wildcard struct {
	Wildcard map[string]WildcardParams `json:"wildcard"`
}

func (Wildcard) isClause() {}

// Substring builds a case-insensitive *text* wildcard against field.
func Substring(field, text string) Wildcard {
	return Wildcard{Wildcard: map[string]WildcardParams{
		field: {Value: "*" + text + "*", CaseInsensitive: true},
	}}
}

type TermParams struct {
	Value string `json:"value"`
}

type Term struct {
	Term map[string]TermParams `json:"term"`
}

func (Term) isClause() {}

func NewTerm(field, value string) Term {
	return Term{Term: map[string]TermParams{field: {Value: value}}}
}

type Script struct {
	Source string `json:"source"`
}

type TermsSetParams struct {
	Terms                    []string `json:"terms"`
	MinimumShouldMatchScript *Script  `json:"minimum_should_match_script,omitempty"`
}

type TermsSet struct {
	TermsSet map[string]TermsSetParams `json:"terms_set"`
}

func (TermsSet) isClause() {}

// ContainsAll builds a terms_set clause matching documents whose field holds
// every one of the given terms.
func ContainsAll(field string, terms []string) TermsSet {
	return TermsSet{TermsSet: map[string]TermsSetParams{
		field: {
			Terms:                    terms,
			MinimumShouldMatchScript: &Script{Source: "params.num_terms"},
		},
	}}
}

type NestedParams struct {
	Path  string `json:"path"`
	Query Clause `json:"query"`
}

type Nested struct {
	Nested NestedParams `json:"nested"`
}

func (Nested) isClause() {}

func NewNested(path string, inner Clause) Nested {
	return Nested{Nested: NestedParams{Path: path, Query: inner}}
}

type ExistsParams struct {
	Field string `json:"field"`
}

type Exists struct {
	Exists ExistsParams `json:"exists"`
}

func (Exists) isClause() {}

func NewExists(field string) Exists {
	return Exists{Exists: ExistsParams{Field: field}}
}
