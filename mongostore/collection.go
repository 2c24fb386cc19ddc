package mongostore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/Alp4ka/docpager"
)

const _nullRankPrefix = "__docpager_null_rank_"

// Collection is a docpager.Store over a MongoDB collection of T.
type Collection[T any] struct {
	coll    *mongo.Collection
	logger  *zap.Logger
	timeout time.Duration
}

// Option configures a Collection.
type Option func(*collectionOptions)

type collectionOptions struct {
	logger  *zap.Logger
	timeout time.Duration
}

func WithLogger(log *zap.Logger) Option {
	return func(o *collectionOptions) { o.logger = log }
}

// WithOperationTimeout sets the deadline of operations whose context has none.
func WithOperationTimeout(timeout time.Duration) Option {
	return func(o *collectionOptions) { o.timeout = timeout }
}

func NewCollection[T any](coll *mongo.Collection, opts ...Option) *Collection[T] {
	o := collectionOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	return &Collection[T]{
		coll:    coll,
		logger:  o.logger,
		timeout: o.timeout,
	}
}

// Open returns the collection called name of the client's database.
func Open[T any](client *Client, name string) *Collection[T] {
	return NewCollection[T](
		client.Database().Collection(name),
		WithLogger(client.Logger()),
		WithOperationTimeout(client.OperationTimeout()),
	)
}

// Collection returns the underlying driver collection.
func (c *Collection[T]) Collection() *mongo.Collection {
	return c.coll
}

// Find - implements docpager.Store.
//
// MongoDB orders null and missing values before all others in ascending
// order. When the ordering has nullable fields the read runs as an
// aggregation that sorts on a null rank of each such field first, so nulls
// are placed as SortField.NullsFirst requires.
func (c *Collection[T]) Find(ctx context.Context, opts docpager.FindOptions) ([]T, error) {
	filter, err := ToBSON(opts.Filter)
	if err != nil {
		return nil, fmt.Errorf("cannot render filter: %w", err)
	}

	ctx, cancel := withOperationTimeout(ctx, c.timeout)
	defer cancel()

	var cursor *mongo.Cursor
	if opts.Sort.HasNullable() {
		pipeline := AggregatePipeline(filter, opts)
		c.logger.Debug("find by aggregation",
			zap.String("collection", c.coll.Name()),
			zap.Stringer("sort", opts.Sort),
			zap.Int64("limit", opts.Limit),
		)

		cursor, err = c.coll.Aggregate(ctx, pipeline)
	} else {
		findOpts := options.Find()
		if len(opts.Sort) > 0 {
			findOpts.SetSort(SortDocument(opts.Sort))
		}
		if opts.Skip > 0 {
			findOpts.SetSkip(opts.Skip)
		}
		if opts.Limit > 0 {
			findOpts.SetLimit(opts.Limit)
		}
		if len(opts.Projection) > 0 {
			findOpts.SetProjection(Projection(opts.Projection))
		}

		cursor, err = c.coll.Find(ctx, filter, findOpts)
	}
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	ret := make([]T, 0, max(opts.Limit, 0))
	if err = cursor.All(ctx, &ret); err != nil {
		return nil, err
	}

	return ret, nil
}

// Count - implements docpager.Store.
func (c *Collection[T]) Count(ctx context.Context, filter docpager.Expr) (int64, error) {
	doc, err := ToBSON(filter)
	if err != nil {
		return 0, fmt.Errorf("cannot render filter: %w", err)
	}

	ctx, cancel := withOperationTimeout(ctx, c.timeout)
	defer cancel()

	return c.coll.CountDocuments(ctx, doc)
}

// AggregatePipeline builds the aggregation used for orderings with nullable
// fields:
//
//	$match filter
//	$addFields {rank_i: null(f_i) ? 1 : 0} for every nullable f_i
//	$sort {rank_i: 1 (nulls last) or -1 (nulls first), f_i: dir, ...}
//	$skip, $limit
//	$project the requested fields, or everything but the ranks
func AggregatePipeline(filter bson.D, opts docpager.FindOptions) mongo.Pipeline {
	ranks := bson.D{}
	sort := bson.D{}
	for i, f := range opts.Sort {
		if f.Nullable {
			rank := _nullRankPrefix + strconv.Itoa(i)
			ranks = append(ranks, bson.E{Key: rank, Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$eq", Value: bson.A{bson.D{{Key: "$ifNull", Value: bson.A{"$" + f.Name, nil}}}, nil}}},
				1,
				0,
			}}}})
			sort = append(sort, bson.E{Key: rank, Value: lo.Ternary(f.NullsFirst, -1, 1)})
		}

		sort = append(sort, bson.E{Key: f.Name, Value: direction(f.Direction)})
	}

	pipeline := mongo.Pipeline{{{Key: "$match", Value: filter}}}
	if len(ranks) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$addFields", Value: ranks}})
	}
	if len(sort) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: sort}})
	}
	if opts.Skip > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: opts.Skip}})
	}
	if opts.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: opts.Limit}})
	}

	if len(opts.Projection) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$project", Value: Projection(opts.Projection)}})
	} else if len(ranks) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$project", Value: bson.D(lo.Map(ranks, func(r bson.E, _ int) bson.E {
			return bson.E{Key: r.Key, Value: 0}
		}))}})
	}

	return pipeline
}

var _ docpager.Store[any] = (*Collection[any])(nil)
