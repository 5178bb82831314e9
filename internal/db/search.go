package db

// Condition is an equality clause on one indexed field.
// Type selects the encoding: TAG fields match {value}, NUMERIC fields match [value value].
type Condition struct {
	Field string
	Type  IndexFieldType
	Value string
}

// TagEq creates an equality condition on a TAG field.
func TagEq(field, value string) Condition {
	return Condition{Field: field, Type: IndexFieldTag, Value: value}
}

// NumericEq creates an equality condition on a NUMERIC field.
func NumericEq(field, value string) Condition {
	return Condition{Field: field, Type: IndexFieldNumeric, Value: value}
}

// ListQuery is the input for an equality-filtered paginated read.
// An empty Conditions slice matches every document in the index.
type ListQuery struct {
	IndexName    string
	Conditions   []Condition
	Offset       int
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}
