package gormstore

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Alp4ka/docpager"
)

// Table is a docpager.Store over a SQL table read through GORM. Rows are
// scanned into T; sort and filter field names are used as column names.
//
// IMPORTANT: Column names are written into the query as is. They must come
// from a trusted source such as docpager.Schema.
type Table[T any] struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewTable wraps a query scope, e.g. db.Table("users").Where("deleted_at IS NULL").
// The scope is reused by every read and is never modified.
func NewTable[T any](db *gorm.DB, log *zap.Logger) *Table[T] {
	if log == nil {
		log = zap.NewNop()
	}

	return &Table[T]{
		db:     db.Session(&gorm.Session{}),
		logger: log,
	}
}

// Find - implements docpager.Store.
func (t *Table[T]) Find(ctx context.Context, opts docpager.FindOptions) ([]T, error) {
	db, err := t.where(ctx, opts.Filter)
	if err != nil {
		return nil, err
	}

	if len(opts.Projection) > 0 {
		db = db.Select(opts.Projection)
	}
	if len(opts.Sort) > 0 {
		db = db.Order(OrderSQL(opts.Sort))
	}
	if opts.Limit > 0 {
		db = db.Limit(int(opts.Limit))
	}
	if opts.Skip > 0 {
		db = db.Offset(int(opts.Skip))
	}

	var ret []T
	if err = db.Find(&ret).Error; err != nil {
		return nil, err
	}

	t.logger.Debug("rows fetched",
		zap.Stringer("sort", opts.Sort),
		zap.Int64("limit", opts.Limit),
		zap.Int("rows", len(ret)),
	)

	return ret, nil
}

// Count - implements docpager.Store.
func (t *Table[T]) Count(ctx context.Context, filter docpager.Expr) (int64, error) {
	db, err := t.where(ctx, filter)
	if err != nil {
		return 0, err
	}

	var n int64
	if err = db.Model(new(T)).Count(&n).Error; err != nil {
		return 0, err
	}

	return n, nil
}

func (t *Table[T]) where(ctx context.Context, filter docpager.Expr) (*gorm.DB, error) {
	db := t.db.WithContext(ctx)

	exp, err := Expression(filter)
	if err != nil {
		return nil, fmt.Errorf("cannot render filter: %w", err)
	}
	if exp == nil {
		return db, nil
	}

	return db.Clauses(exp), nil
}

var _ docpager.Store[any] = (*Table[any])(nil)
