package docpager

import "context"

// Page is a single page of a paginated dataset.
type Page[T any] struct {
	Items []T `json:"items"`
	// Next is the token of the following page. Nil on the terminal page.
	Next *string `json:"next"`
	// Index is the absolute 0-based position of the first item within the
	// whole ordered dataset. Nil when the page is empty.
	Index *int64 `json:"index"`
	// Total is the number of documents matching the base query.
	Total int64 `json:"total"`
	// Cursors holds one token per item. Filled by relay paginators only.
	Cursors []string `json:"cursors,omitempty"`
}

// HasNext reports whether another page follows this one.
func (p *Page[T]) HasNext() bool {
	return p != nil && p.Next != nil
}

// Paginator fetches pages of T.
type Paginator[T any] interface {
	// GetPage returns up to limit items placed after the position encoded in
	// next. An empty next requests the first page.
	GetPage(ctx context.Context, query Query, limit int, next string) (*Page[T], error)
}
