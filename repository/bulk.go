package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// BulkItem is the outcome of one document of a bulk operation. Exactly one of
// Success and Error is set.
type BulkItem struct {
	Success *BulkItemSuccess `json:"success,omitempty"`
	Error   *BulkItemError   `json:"error,omitempty"`
}

type BulkItemSuccess struct {
	ID any `json:"id"`
}

type BulkItemError struct {
	Index  int    `json:"index"`
	Code   int    `json:"code"`
	Detail string `json:"detail"`
}

// BulkResponse lists the outcome of every document in request order.
type BulkResponse struct {
	Items     []BulkItem `json:"items"`
	HasErrors bool       `json:"has_errors"`
}

// BulkCreate inserts entities without stopping at the first failure. Per
// document errors are reported in the response; only failures that affect
// the whole batch are returned as an error.
func (r *Repository[T]) BulkCreate(ctx context.Context, entities []T) (*BulkResponse, error) {
	if len(entities) == 0 {
		return &BulkResponse{Items: []BulkItem{}}, nil
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	docs := lo.Map(entities, func(e T, _ int) any { return e })
	res, err := r.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))

	var bwe mongo.BulkWriteException
	switch {
	case err == nil:
		return &BulkResponse{
			Items: lo.Map(res.InsertedIDs, func(id any, _ int) BulkItem {
				return BulkItem{Success: &BulkItemSuccess{ID: id}}
			}),
		}, nil
	case !errors.As(err, &bwe) || bwe.WriteConcernError != nil || res == nil:
		return nil, fmt.Errorf("cannot insert %s: %w", r.coll.Name(), err)
	}

	r.logger.Error("mongo bulk create error",
		zap.String("collection", r.coll.Name()),
		zap.Int("documents", len(entities)),
		zap.Int("failed", len(bwe.WriteErrors)),
		zap.Error(err),
	)

	failed := lo.SliceToMap(bwe.WriteErrors, func(we mongo.BulkWriteError) (int, mongo.BulkWriteError) {
		return we.Index, we
	})

	// InsertedIDs holds the identifiers of the stored documents only, in
	// input order.
	items := make([]BulkItem, 0, len(entities))
	inserted := 0
	for i := range entities {
		if we, ok := failed[i]; ok {
			items = append(items, BulkItem{Error: &BulkItemError{
				Index:  i,
				Code:   we.Code,
				Detail: "mongodb: " + we.Message,
			}})
			continue
		}

		var id any
		if inserted < len(res.InsertedIDs) {
			id = res.InsertedIDs[inserted]
			inserted++
		}

		items = append(items, BulkItem{Success: &BulkItemSuccess{ID: id}})
	}

	return &BulkResponse{Items: items, HasErrors: true}, nil
}

// BulkUpdate sets the fields of every entity on the document with the same
// identifier. With upsert missing documents are inserted.
func (r *Repository[T]) BulkUpdate(ctx context.Context, entities []T, upsert bool) (*mongo.BulkWriteResult, error) {
	models := make([]mongo.WriteModel, 0, len(entities))
	for _, entity := range entities {
		id, fields, err := r.split(entity)
		if err != nil {
			return nil, err
		}

		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(r.byID(id)).
			SetUpdate(bson.D{{Key: "$set", Value: fields}}).
			SetUpsert(upsert))
	}

	return r.bulkWrite(ctx, models)
}

// BulkDelete deletes the documents with the given identifiers.
func (r *Repository[T]) BulkDelete(ctx context.Context, ids []any) (*mongo.BulkWriteResult, error) {
	models := lo.Map(ids, func(id any, _ int) mongo.WriteModel {
		return mongo.NewDeleteOneModel().SetFilter(r.byID(id))
	})

	return r.bulkWrite(ctx, models)
}

// BulkUpsert replaces every document with the given entity, inserting the
// ones that do not exist yet.
func (r *Repository[T]) BulkUpsert(ctx context.Context, entities []T) (*mongo.BulkWriteResult, error) {
	models := make([]mongo.WriteModel, 0, len(entities))
	for _, entity := range entities {
		id, _, err := r.split(entity)
		if err != nil {
			return nil, err
		}

		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(r.byID(id)).
			SetReplacement(entity).
			SetUpsert(true))
	}

	return r.bulkWrite(ctx, models)
}

func (r *Repository[T]) bulkWrite(ctx context.Context, models []mongo.WriteModel) (*mongo.BulkWriteResult, error) {
	if len(models) == 0 {
		return &mongo.BulkWriteResult{}, nil
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))

	var bwe mongo.BulkWriteException
	switch {
	case err == nil:
		return res, nil
	case errors.As(err, &bwe) && bwe.WriteConcernError == nil:
		return res, &BulkError{
			Items: lo.Map(bwe.WriteErrors, func(we mongo.BulkWriteError, _ int) BulkItemError {
				return BulkItemError{Index: we.Index, Code: we.Code, Detail: "mongodb: " + we.Message}
			}),
			Err: err,
		}
	default:
		return nil, fmt.Errorf("cannot write %s: %w", r.coll.Name(), err)
	}
}

// split returns the identifier of entity and its remaining fields.
func (r *Repository[T]) split(entity T) (any, bson.D, error) {
	raw, err := bson.Marshal(entity)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot marshal %s: %w", r.coll.Name(), err)
	}

	elements, err := bson.Raw(raw).Elements()
	if err != nil {
		return nil, nil, err
	}

	var (
		id     any
		fields = make(bson.D, 0, len(elements))
	)
	for _, el := range elements {
		if el.Key() == r.idField {
			id = el.Value()
			continue
		}

		fields = append(fields, bson.E{Key: el.Key(), Value: el.Value()})
	}

	if id == nil {
		return nil, nil, fmt.Errorf("%s has no '%s' field", r.coll.Name(), r.idField)
	}

	return id, fields, nil
}
