// Package repository implements a generic document repository over a MongoDB
// collection: CRUD, bulk writes and paginated listing.
package repository

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/Alp4ka/docpager"
	"github.com/Alp4ka/docpager/mongostore"
)

// Repository stores documents of type T in a single collection described by
// a docpager.Schema. It is safe for concurrent use.
type Repository[T any] struct {
	coll       *mongo.Collection
	store      *mongostore.Collection[T]
	schema     *docpager.Schema
	idField    string
	strategies docpager.Strategies[T]
	limits     docpager.Limits
	getters    docpager.Getters[T]
	indexes    []mongo.IndexModel
	logger     *zap.Logger
	timeout    time.Duration
}

// Option configures a Repository.
type Option[T any] func(*Repository[T])

// WithStrategies replaces the pagination strategies available to List.
func WithStrategies[T any](strategies docpager.Strategies[T]) Option[T] {
	return func(r *Repository[T]) { r.strategies = strategies }
}

func WithLimits[T any](limits docpager.Limits) Option[T] {
	return func(r *Repository[T]) { r.limits = limits }
}

// WithGetters sets the accessors cursor values are read with.
func WithGetters[T any](getters docpager.Getters[T]) Option[T] {
	return func(r *Repository[T]) { r.getters = getters }
}

// WithIndexes declares the indexes created by EnsureIndexes.
func WithIndexes[T any](indexes ...mongo.IndexModel) Option[T] {
	return func(r *Repository[T]) { r.indexes = append(r.indexes, indexes...) }
}

func WithLogger[T any](log *zap.Logger) Option[T] {
	return func(r *Repository[T]) { r.logger = log }
}

// WithOperationTimeout sets the deadline of operations whose context has none.
func WithOperationTimeout[T any](timeout time.Duration) Option[T] {
	return func(r *Repository[T]) { r.timeout = timeout }
}

// New returns a repository over coll. The identifier field of schema is the
// document key used by Get, Update, Delete and the bulk operations.
func New[T any](coll *mongo.Collection, schema *docpager.Schema, opts ...Option[T]) *Repository[T] {
	r := &Repository[T]{
		coll:       coll,
		schema:     schema,
		idField:    schema.ID().Name,
		strategies: docpager.DefaultStrategies[T](),
		limits:     docpager.DefaultLimits(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.logger = r.logger.With(zap.String("collection", coll.Name()))
	r.store = mongostore.NewCollection[T](coll,
		mongostore.WithLogger(r.logger),
		mongostore.WithOperationTimeout(r.timeout),
	)

	return r
}

// Open returns a repository over the collection called name of the client's
// database, inheriting the client's logger and operation timeout.
func Open[T any](client *mongostore.Client, name string, schema *docpager.Schema, opts ...Option[T]) *Repository[T] {
	base := []Option[T]{
		WithLogger[T](client.Logger()),
		WithOperationTimeout[T](client.OperationTimeout()),
	}

	return New[T](client.Database().Collection(name), schema, append(base, opts...)...)
}

// Store returns the docpager.Store the repository lists from.
func (r *Repository[T]) Store() *mongostore.Collection[T] {
	return r.store
}

func (r *Repository[T]) Schema() *docpager.Schema {
	return r.schema
}

// Exists reports whether a document with the identifier exists.
func (r *Repository[T]) Exists(ctx context.Context, id any) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, r.byID(id), options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("cannot count %s: %w", r.coll.Name(), err)
	}

	return n > 0, nil
}

// Get returns the document with the identifier. When projection is given
// only the listed fields are read. Fails with *EntityNotFoundError.
func (r *Repository[T]) Get(ctx context.Context, id any, projection ...string) (*T, error) {
	opts := options.FindOne()
	if len(projection) > 0 {
		fields, err := r.schema.Projection(projection...)
		if err != nil {
			return nil, err
		}

		opts.SetProjection(mongostore.Projection(fields))
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var ret T
	err := r.coll.FindOne(ctx, r.byID(id), opts).Decode(&ret)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &EntityNotFoundError{Collection: r.coll.Name(), ID: id}
	} else if err != nil {
		return nil, fmt.Errorf("cannot get %s: %w", r.coll.Name(), err)
	}

	return &ret, nil
}

// FindOne returns the first document matching filter, or nil if there is
// none.
func (r *Repository[T]) FindOne(ctx context.Context, filter docpager.Expr) (*T, error) {
	doc, err := mongostore.ToBSON(filter)
	if err != nil {
		return nil, fmt.Errorf("cannot render filter: %w", err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var ret T
	err = r.coll.FindOne(ctx, doc).Decode(&ret)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("cannot find %s: %w", r.coll.Name(), err)
	}

	return &ret, nil
}

// Add inserts entity and returns its identifier. Fails with
// *EntityAlreadyExistsError on a unique index violation.
func (r *Repository[T]) Add(ctx context.Context, entity T) (any, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, entity)
	if mongo.IsDuplicateKeyError(err) {
		id, _, _ := r.split(entity)
		return nil, &EntityAlreadyExistsError{Collection: r.coll.Name(), ID: id, Err: err}
	} else if err != nil {
		return nil, fmt.Errorf("cannot insert %s: %w", r.coll.Name(), err)
	}

	return res.InsertedID, nil
}

// Update sets the fields of changes on the document with the identifier and
// returns the updated document. Fails with *EntityNotFoundError.
func (r *Repository[T]) Update(ctx context.Context, id any, changes any) (*T, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var ret T
	err := r.coll.FindOneAndUpdate(ctx,
		r.byID(id),
		bson.D{{Key: "$set", Value: changes}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&ret)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &EntityNotFoundError{Collection: r.coll.Name(), ID: id}
	} else if err != nil {
		return nil, fmt.Errorf("cannot update %s: %w", r.coll.Name(), err)
	}

	return &ret, nil
}

// Delete removes the document with the identifier. Fails with
// *EntityNotFoundError.
func (r *Repository[T]) Delete(ctx context.Context, id any) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, r.byID(id))
	if err != nil {
		return fmt.Errorf("cannot delete %s: %w", r.coll.Name(), err)
	}

	if res.DeletedCount == 0 {
		return &EntityNotFoundError{Collection: r.coll.Name(), ID: id}
	}

	return nil
}

// ListRequest describes a List call.
type ListRequest struct {
	docpager.PageRequest
	// Projection lists the returned fields. Sort fields and the identifier
	// are always added to a non-empty projection.
	Projection []string `json:"projection"`
	// Filter holds equality constraints, see docpager.Schema.BindFilter.
	Filter url.Values `json:"-"`
}

// List returns a page of the documents matching the request.
func (r *Repository[T]) List(ctx context.Context, req ListRequest) (*docpager.Page[T], error) {
	decoded, err := req.Decode(r.schema, r.limits)
	if err != nil {
		return nil, err
	}

	filter, err := r.schema.BindFilter(req.Filter)
	if err != nil {
		return nil, err
	}

	var projection []string
	if len(req.Projection) > 0 {
		projection, err = r.schema.Projection(req.Projection...)
		if err != nil {
			return nil, err
		}

		projection = lo.Uniq(append(append(projection, decoded.Sort.Names()...), r.idField))
	}

	paginator, err := r.strategies.Paginator(decoded.Strategy, r.store, decoded.Sort, r.getters)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("list",
		zap.String("strategy", string(decoded.Strategy)),
		zap.Int("limit", decoded.Limit),
		zap.Stringer("sort", decoded.Sort),
		zap.Bool("continuation", decoded.Next != ""),
	)

	return paginator.GetPage(ctx, docpager.Query{Filter: filter, Projection: projection}, decoded.Limit, decoded.Next)
}

// EnsureIndexes creates the indexes declared with WithIndexes. With drop set
// every existing index but _id is dropped first.
func (r *Repository[T]) EnsureIndexes(ctx context.Context, drop bool) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if drop {
		if _, err := r.coll.Indexes().DropAll(ctx); err != nil {
			return fmt.Errorf("cannot drop indexes of %s: %w", r.coll.Name(), err)
		}
		r.logger.Info("indexes dropped")
	}

	if len(r.indexes) == 0 {
		return nil
	}

	names, err := r.coll.Indexes().CreateMany(ctx, r.indexes)
	if err != nil {
		return fmt.Errorf("cannot create indexes of %s: %w", r.coll.Name(), err)
	}

	r.logger.Info("indexes created", zap.Strings("indexes", names))

	return nil
}

func (r *Repository[T]) byID(id any) bson.D {
	return bson.D{{Key: r.idField, Value: id}}
}

func (r *Repository[T]) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, r.timeout)
}
