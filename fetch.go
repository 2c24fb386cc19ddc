package docpager

import (
	"context"
	"fmt"
)

// Query is the caller-supplied base query. The pagination engine composes
// its own predicates with Filter (AND) and never replaces it.
type Query struct {
	// Filter is the preexisting filter. Nil matches every document.
	Filter Expr
	// Projection lists the returned fields. Empty returns whole documents.
	// Cursor paginators add the sort fields to a non-empty projection.
	Projection []string
}

// FindOptions describes a single bounded read.
type FindOptions struct {
	Filter     Expr
	Sort       SortFields
	Projection []string
	Skip       int64
	Limit      int64
}

// Store is the document store the paginators read from.
//
// Find must order the result by Sort, placing null values after non-null
// ones unless SortField.NullsFirst is set. Count must ignore sorting and
// limits.
type Store[T any] interface {
	Find(ctx context.Context, opts FindOptions) ([]T, error)
	Count(ctx context.Context, filter Expr) (int64, error)
}

// fetchPage reads one page with lookahead: it requests limit+1 documents to
// learn whether another page exists and trims the probe element.
func fetchPage[T any](ctx context.Context, store Store[T], opts FindOptions, limit int) ([]T, bool, error) {
	if limit <= 0 {
		return nil, false, &InvalidLimitError{Limit: limit}
	}

	opts.Limit = int64(limit) + 1
	items, err := store.Find(ctx, opts)
	if err != nil {
		return nil, false, fmt.Errorf("cannot fetch page: %w", err)
	}

	if IsLastPage(items, limit) {
		return items, false, nil
	}

	return TrimResultSet(items, limit), true, nil
}

// IsLastPage returns true if a lookahead read of limit+1 documents returned
// no more than limit of them.
func IsLastPage[T any](resultSet []T, limit int) bool {
	return len(resultSet) <= limit
}

// TrimResultSet trims a lookahead result set to what should be returned to
// the client. Suppose limit = 2 and resultSet = [a, b, c]; the result is
// [a, b].
//
// This enables building pagination based on a STRICT comparison with the
// last element of the result set.
func TrimResultSet[T any](resultSet []T, limit int) []T {
	if len(resultSet) > limit {
		resultSet = resultSet[:limit]
	}

	return resultSet
}
