package store

import "strings"

// QueryKind is the search mode inferred from the shape of a query string.
type QueryKind int

const (
	// QueryHandle matches the stored handle, case-insensitive substring.
	QueryHandle QueryKind = iota
	// QueryNumeric matches user id or request id exactly.
	QueryNumeric
	// QueryBody matches the request body, case-insensitive substring.
	QueryBody
)

// ClassifyQuery infers the search mode: leading '@' searches handles,
// all-digits searches ids, anything else searches body text. The returned
// term has the '@' prefix stripped for handle queries.
func ClassifyQuery(query string) (QueryKind, string) {
	query = strings.TrimSpace(query)
	if strings.HasPrefix(query, "@") {
		return QueryHandle, strings.TrimPrefix(query, "@")
	}
	if query != "" && isAllDigits(query) {
		return QueryNumeric, query
	}
	return QueryBody, query
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
