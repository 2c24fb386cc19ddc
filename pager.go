package docpager

import (
	"context"
	"fmt"
	"slices"

	"github.com/samber/lo"
)

// CursorPaginator implements keyset pagination over a Store.
//
// IMPORTANT:
// The ordering MUST contain a unique field, otherwise pages may skip or
// repeat documents. Schema.Sort takes care of that.
//
// A paginator is immutable; the With* methods return modified copies, so a
// single value may serve concurrent requests.
type CursorPaginator[T any] struct {
	store   Store[T]
	fields  SortFields
	getters Getters[T]
	reverse bool
	relay   bool
}

func NewCursorPaginator[T any](store Store[T], fields SortFields) *CursorPaginator[T] {
	return &CursorPaginator[T]{
		store:  store,
		fields: fields,
	}
}

// NewRelayPaginator returns a cursor paginator that also attaches a cursor to
// every item of the page (Page.Cursors).
func NewRelayPaginator[T any](store Store[T], fields SortFields) *CursorPaginator[T] {
	return NewCursorPaginator(store, fields).WithRelay()
}

// WithGetters sets the accessors used to read cursor values from entities.
// Fields without a getter are read from the entity's BSON form.
func (p *CursorPaginator[T]) WithGetters(getters Getters[T]) *CursorPaginator[T] {
	c := *p
	c.getters = getters

	return &c
}

// WithReverse makes the paginator traverse the dataset from its end. Items of
// every page are still returned in the natural order and Page.Index counts
// from the end of the dataset.
func (p *CursorPaginator[T]) WithReverse() *CursorPaginator[T] {
	c := *p
	c.reverse = true

	return &c
}

// WithRelay enables per-item cursors.
func (p *CursorPaginator[T]) WithRelay() *CursorPaginator[T] {
	c := *p
	c.relay = true

	return &c
}

// GetSort returns the ordering pages are built for.
func (p *CursorPaginator[T]) GetSort() SortFields {
	return p.fields
}

// GetPage - implements Paginator.
func (p *CursorPaginator[T]) GetPage(ctx context.Context, query Query, limit int, next string) (*Page[T], error) {
	if limit <= 0 {
		return nil, &InvalidLimitError{Limit: limit}
	}

	if err := p.fields.validate(); err != nil {
		return nil, fmt.Errorf("cannot paginate: %w", err)
	}

	cursor, err := DecodeCursor(next, p.fields)
	if err != nil {
		return nil, err
	}

	// Traversal order. Reverse mode walks the inverted ordering and restores
	// the natural order of each page afterwards.
	order := lo.Ternary(p.reverse, p.fields.Invert(), p.fields)

	seek, err := BuildFilter(order, cursor, false)
	if err != nil {
		return nil, err
	}

	// Cursors are built from the sort fields, so a projection must keep them.
	projection := query.Projection
	if len(projection) > 0 {
		projection = lo.Uniq(append(slices.Clone(projection), p.fields.Names()...))
	}

	items, hasNext, err := fetchPage(ctx, p.store, FindOptions{
		Filter:     AllOf(seek, query.Filter),
		Sort:       order,
		Projection: projection,
	}, limit)
	if err != nil {
		return nil, err
	}

	page := &Page[T]{Items: items}

	if hasNext {
		// The boundary is the last item in traversal order.
		nextCursor, err := EncodeCursor(items[len(items)-1], p.fields, p.getters)
		if err != nil {
			return nil, fmt.Errorf("cannot build next page cursor: %w", err)
		}

		page.Next = lo.ToPtr(nextCursor.String())
	}

	if p.reverse {
		slices.Reverse(page.Items)
	}

	if p.relay {
		page.Cursors, err = p.itemCursors(page.Items)
		if err != nil {
			return nil, err
		}
	}

	page.Index, page.Total, err = resolvePageInfo(ctx, p.store, query.Filter, order, cursor, page.Items, p.reverse)
	if err != nil {
		return nil, err
	}

	return page, nil
}

func (p *CursorPaginator[T]) itemCursors(items []T) ([]string, error) {
	cursors := make([]string, 0, len(items))
	for _, item := range items {
		c, err := EncodeCursor(item, p.fields, p.getters)
		if err != nil {
			return nil, fmt.Errorf("cannot build item cursor: %w", err)
		}

		cursors = append(cursors, c.String())
	}

	return cursors, nil
}

var _ Paginator[any] = (*CursorPaginator[any])(nil)
