package collection

import "strings"

// FilterAll is the selector value meaning "no filter" for the category and
// status dimensions.
const FilterAll = "all"

// FilterState is the user's current filter input. It holds no server data
// and is recomputed against the store's records on every change.
type FilterState struct {
	Search   string
	Category string
	Status   string
}

// FilterConfig declares which fields of T each filter dimension inspects.
// A nil selector disables that dimension for the entity.
type FilterConfig[T Record] struct {
	// SearchFields returns the text fields matched (case-insensitive,
	// substring) against the search term.
	SearchFields func(T) []string

	// Categories returns every value that satisfies the category selector:
	// tags for contracts/archive, the exact category for articles.
	Categories func(T) []string

	// Status returns the record's status for exact matching.
	Status func(T) string
}

// Derive computes the visible subset of records for the given filter state.
// It is pure: records is never mutated, the result is a subsequence of
// records, and relative order is preserved.
func Derive[T Record](records []T, fs FilterState, cfg FilterConfig[T]) []T {
	term := strings.ToLower(strings.TrimSpace(fs.Search))

	out := make([]T, 0, len(records))
	for _, r := range records {
		if !matchesSearch(r, term, cfg) {
			continue
		}
		if !matchesCategory(r, fs.Category, cfg) {
			continue
		}
		if !matchesStatus(r, fs.Status, cfg) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matchesSearch[T Record](r T, term string, cfg FilterConfig[T]) bool {
	if term == "" || cfg.SearchFields == nil {
		return true
	}
	for _, field := range cfg.SearchFields(r) {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func matchesCategory[T Record](r T, category string, cfg FilterConfig[T]) bool {
	if category == "" || category == FilterAll || cfg.Categories == nil {
		return true
	}
	for _, c := range cfg.Categories(r) {
		if c == category {
			return true
		}
	}
	return false
}

func matchesStatus[T Record](r T, status string, cfg FilterConfig[T]) bool {
	if status == "" || status == FilterAll || cfg.Status == nil {
		return true
	}
	return cfg.Status(r) == status
}
