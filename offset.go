package docpager

import (
	"context"
	"fmt"
	"strconv"

	"github.com/samber/lo"
)

// OffsetPaginator is used when an API requires cursor-based pagination but
// only SKIP/LIMIT reads are wanted, e.g. for orderings without a unique
// field.
//
// Its token is the base64 encoded offset of the next page within the
// dataset.
type OffsetPaginator[T any] struct {
	store  Store[T]
	fields SortFields
}

func NewOffsetPaginator[T any](store Store[T], fields SortFields) *OffsetPaginator[T] {
	return &OffsetPaginator[T]{
		store:  store,
		fields: fields,
	}
}

// DecodeOffset attempts to parse a base64 encoded offset token. An empty
// token is offset 0.
func DecodeOffset(token string) (int64, error) {
	if len(token) == 0 {
		return 0, nil
	}

	offsetBytes, err := _encoder.DecodeString(token)
	if err != nil {
		return 0, &MalformedCursorError{Reason: "failed to decode base64 encoded offset", Err: err}
	}

	offset, err := strconv.ParseInt(string(offsetBytes), 10, 64)
	if err != nil {
		return 0, &MalformedCursorError{Reason: "failed to decode offset value", Err: err}
	}

	if offset < 0 {
		return 0, &MalformedCursorError{Reason: fmt.Sprintf("negative offset %d", offset)}
	}

	return offset, nil
}

// EncodeOffset is the inverse of DecodeOffset. Offset 0 is the empty token.
func EncodeOffset(offset int64) string {
	if offset <= 0 {
		return ""
	}

	return _encoder.EncodeToString([]byte(strconv.FormatInt(offset, 10)))
}

// GetPage - implements Paginator.
func (p *OffsetPaginator[T]) GetPage(ctx context.Context, query Query, limit int, next string) (*Page[T], error) {
	if limit <= 0 {
		return nil, &InvalidLimitError{Limit: limit}
	}

	offset, err := DecodeOffset(next)
	if err != nil {
		return nil, err
	}

	if len(p.fields) > 0 {
		if err = p.fields.validate(); err != nil {
			return nil, fmt.Errorf("cannot paginate: %w", err)
		}
	}

	items, hasNext, err := fetchPage(ctx, p.store, FindOptions{
		Filter:     query.Filter,
		Sort:       p.fields,
		Projection: query.Projection,
		Skip:       offset,
	}, limit)
	if err != nil {
		return nil, err
	}

	total, err := p.store.Count(ctx, query.Filter)
	if err != nil {
		return nil, fmt.Errorf("cannot count total: %w", err)
	}

	page := &Page[T]{
		Items: items,
		Total: total,
	}

	if hasNext {
		page.Next = lo.ToPtr(EncodeOffset(offset + int64(len(items))))
	}

	if len(items) > 0 {
		page.Index = lo.ToPtr(offset)
	}

	return page, nil
}

var _ Paginator[any] = (*OffsetPaginator[any])(nil)
