// Package docpager provides cursor-based pagination for document stores.
//
// Overview
//
// docpager implements keyset pagination: a page token (Cursor) records the
// sort key values of the page's boundary document, and the next page is
// selected by a seek predicate that matches documents ordered strictly after
// it. Pagination is stable on large datasets and requires an ordering with at
// least one unique field.
//
// Key concepts
//   - SortFields: a composite ordering with per-field direction, type tag
//     and null handling. Nulls are ordered after all other values.
//   - Cursor: an opaque token, EncodeCursor/DecodeCursor.
//   - BuildFilter: inflates a cursor into an Expr predicate tree that stores
//     translate into their own query language.
//   - Store: the collaborator serving sorted reads and counts. See the
//     mongostore and gormstore packages.
//   - CursorPaginator: orchestrates decoding, filtering, the lookahead read
//     and the page position (Page.Index, Page.Total). OffsetPaginator is a
//     SKIP/LIMIT compatibility layer with the same token interface.
//   - Schema: declares queryable fields and builds orderings and filters
//     from client input.
//   - Strategies: a lookup table of paginator implementations.
package docpager
