package adapter

// Operator combines the terms of a query string.
type Operator string

const (
	OperatorOr  Operator = "or"
	OperatorAnd Operator = "and"
)

// Query is the request shape handed to the find operations. QueryString
// uses "field:value" terms, "field:\"exact phrase\"" for exact matches and
// bare terms for any field; backends translate it to their own syntax.
type Query struct {
	QueryString string
	Offset      int
	// Order lists sort keys; a leading '-' sorts descending.
	Order []string
	// Limit caps the number of hits. Zero means the backend default.
	Limit int
	// Fields restricts which stored fields are returned or searched.
	Fields   []string
	Operator Operator
	// RawResult asks for the backend's own response object.
	RawResult bool
}

// Result is the outcome of FindByIndex.
type Result struct {
	// Total is the number of matching documents, beyond Limit.
	Total int
	// IDs are the matching record keys in rank order.
	IDs []string
	// Records are the hydrated matches, in rank order.
	Records []Record
	// Raw is the backend response when Query.RawResult was set.
	Raw any
	// Facets counts matches per value of each facet field, most frequent
	// first.
	Facets map[string][]FacetTerm
}

// FacetTerm is one facet value and the number of matches carrying it.
type FacetTerm struct {
	Term  string
	Count int
}

// Hit is one match with its stored field values.
type Hit struct {
	ID     string
	Score  float64
	Fields map[string]any
}
