package docpager

import (
	"context"
	"fmt"

	"github.com/samber/lo"
)

// resolvePageInfo computes the absolute index of the page's first item and
// the total number of documents matching base.
//
// The index is the number of documents placed strictly before the cursor
// plus one. They are counted with the index-query filter, which selects the
// documents after the cursor under the inverted ordering. In reverse mode the
// position is reported from the end of the dataset:
//
//	index = max(total - index - len(items), 0)
func resolvePageInfo[T any](
	ctx context.Context,
	store Store[T],
	base Expr,
	fields SortFields,
	cursor *Cursor,
	items []T,
	reversed bool,
) (*int64, int64, error) {
	total, err := store.Count(ctx, base)
	if err != nil {
		return nil, 0, fmt.Errorf("cannot count total: %w", err)
	}

	if len(items) == 0 {
		return nil, total, nil
	}

	if cursor.IsEmpty() {
		return lo.ToPtr(int64(0)), total, nil
	}

	before, err := BuildFilter(fields, cursor, true)
	if err != nil {
		return nil, 0, err
	}

	count, err := store.Count(ctx, AllOf(before, base))
	if err != nil {
		return nil, 0, fmt.Errorf("cannot count page index: %w", err)
	}

	index := count + 1
	if reversed {
		index = max(total-index-int64(len(items)), 0)
	}

	return &index, total, nil
}
