package repository

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Alp4ka/docpager"
)

type article struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Views       int64              `bson:"views"`
	PublishedAt *time.Time         `bson:"published_at,omitempty"`
}

func articleSchema() *docpager.Schema {
	return docpager.NewSchema("_id", docpager.TypeObjectID).
		Field("title", docpager.TypeString).
		Field("views", docpager.TypeInteger).
		Field("published_at", docpager.TypeTimestamp, docpager.Nullable()).
		Field("secret", docpager.TypeString, docpager.Hidden())
}

func articleDoc(id primitive.ObjectID, title string, views int64) bson.D {
	return bson.D{{Key: "_id", Value: id}, {Key: "title", Value: title}, {Key: "views", Value: views}}
}

func namespace(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func cursorResponse(mt *mtest.T, docs ...bson.D) bson.D {
	return mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch, docs...)
}

func countResponse(mt *mtest.T, n int64) bson.D {
	return cursorResponse(mt, bson.D{{Key: "n", Value: n}})
}

func newRepository(mt *mtest.T, opts ...Option[article]) *Repository[article] {
	return New[article](mt.Coll, articleSchema(), opts...)
}

func newMockT(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func TestRepository_Exists(t *testing.T) {
	mt := newMockT(t)

	mt.Run("exists", func(mt *mtest.T) {
		mt.AddMockResponses(countResponse(mt, 1))

		ok, err := newRepository(mt).Exists(context.Background(), "a1")
		require.NoError(mt, err)
		assert.True(mt, ok)

		ev := mt.GetStartedEvent()
		assert.Equal(mt, "aggregate", ev.CommandName)
		assert.Equal(mt, "a1", ev.Command.Lookup("pipeline", "0", "$match", "_id").StringValue())
	})

	mt.Run("missing", func(mt *mtest.T) {
		mt.AddMockResponses(cursorResponse(mt))

		ok, err := newRepository(mt).Exists(context.Background(), "a1")
		require.NoError(mt, err)
		assert.False(mt, ok)
	})
}

func TestRepository_Get(t *testing.T) {
	mt := newMockT(t)
	id := primitive.NewObjectID()

	mt.Run("found with projection", func(mt *mtest.T) {
		mt.AddMockResponses(cursorResponse(mt, bson.D{{Key: "_id", Value: id}, {Key: "title", Value: "hello"}}))

		got, err := newRepository(mt).Get(context.Background(), id, "title")
		require.NoError(mt, err)
		assert.Equal(mt, &article{ID: id, Title: "hello"}, got)

		ev := mt.GetStartedEvent()
		assert.Equal(mt, "find", ev.CommandName)
		assert.Equal(mt, id, ev.Command.Lookup("filter", "_id").ObjectID())
		assert.Equal(mt, int64(1), ev.Command.Lookup("projection", "title").AsInt64())
	})

	mt.Run("not found", func(mt *mtest.T) {
		mt.AddMockResponses(cursorResponse(mt))

		_, err := newRepository(mt).Get(context.Background(), id)
		require.ErrorIs(mt, err, ErrEntityNotFound)

		var notFound *EntityNotFoundError
		require.True(mt, errors.As(err, &notFound))
		assert.Equal(mt, id, notFound.ID)
	})

	mt.Run("hidden projection field", func(mt *mtest.T) {
		_, err := newRepository(mt).Get(context.Background(), id, "secret")
		require.ErrorContains(mt, err, "unknown projection field 'secret'")
		assert.Empty(mt, mt.GetAllStartedEvents())
	})
}

func TestRepository_FindOne(t *testing.T) {
	mt := newMockT(t)

	mt.Run("no match", func(mt *mtest.T) {
		mt.AddMockResponses(cursorResponse(mt))

		got, err := newRepository(mt).FindOne(context.Background(), docpager.Eq("title", "nope"))
		require.NoError(mt, err)
		assert.Nil(mt, got)

		ev := mt.GetStartedEvent()
		assert.Equal(mt, "nope", ev.Command.Lookup("filter", "title", "$eq").StringValue())
	})

	mt.Run("match", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(cursorResponse(mt, articleDoc(id, "yes", 3)))

		got, err := newRepository(mt).FindOne(context.Background(), docpager.Gt("views", int64(1)))
		require.NoError(mt, err)
		assert.Equal(mt, &article{ID: id, Title: "yes", Views: 3}, got)
	})
}

func TestRepository_Add(t *testing.T) {
	mt := newMockT(t)

	mt.Run("generated identifier", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		id, err := newRepository(mt).Add(context.Background(), article{Title: "new"})
		require.NoError(mt, err)
		require.IsType(mt, primitive.ObjectID{}, id)
		assert.False(mt, id.(primitive.ObjectID).IsZero())
	})

	mt.Run("duplicate key", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		_, err := newRepository(mt).Add(context.Background(), article{ID: id, Title: "dup"})
		require.ErrorIs(mt, err, ErrEntityAlreadyExists)

		var exists *EntityAlreadyExistsError
		require.True(mt, errors.As(err, &exists))
		assert.Equal(mt, id, exists.ID.(bson.RawValue).ObjectID())
		assert.True(mt, mongo.IsDuplicateKeyError(err))
	})
}

func TestRepository_Update(t *testing.T) {
	mt := newMockT(t)
	id := primitive.NewObjectID()

	mt.Run("updated", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: articleDoc(id, "renamed", 7)}))

		got, err := newRepository(mt).Update(context.Background(), id, bson.D{{Key: "title", Value: "renamed"}})
		require.NoError(mt, err)
		assert.Equal(mt, "renamed", got.Title)

		ev := mt.GetStartedEvent()
		assert.Equal(mt, "findAndModify", ev.CommandName)
		assert.Equal(mt, "renamed", ev.Command.Lookup("update", "$set", "title").StringValue())
		assert.True(mt, ev.Command.Lookup("new").Boolean())
	})

	mt.Run("not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := newRepository(mt).Update(context.Background(), id, bson.D{{Key: "title", Value: "renamed"}})
		require.ErrorIs(mt, err, ErrEntityNotFound)
	})
}

func TestRepository_Delete(t *testing.T) {
	mt := newMockT(t)

	mt.Run("deleted", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		require.NoError(mt, newRepository(mt).Delete(context.Background(), "a1"))

		assert.Equal(mt, "delete", mt.GetStartedEvent().CommandName)
	})

	mt.Run("not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		require.ErrorIs(mt, newRepository(mt).Delete(context.Background(), "a1"), ErrEntityNotFound)
	})
}

func TestRepository_List(t *testing.T) {
	mt := newMockT(t)
	ids := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()}

	mt.Run("defaults", func(mt *mtest.T) {
		mt.AddMockResponses(
			cursorResponse(mt, articleDoc(ids[0], "a", 1), articleDoc(ids[1], "b", 2)),
			countResponse(mt, 2),
		)

		page, err := newRepository(mt).List(context.Background(), ListRequest{})
		require.NoError(mt, err)
		assert.Len(mt, page.Items, 2)
		assert.Nil(mt, page.Next)
		assert.Equal(mt, int64(2), page.Total)

		ev := mt.GetStartedEvent()
		assert.Equal(mt, "find", ev.CommandName)
		assert.Equal(mt, int64(docpager.DefaultLimit+1), ev.Command.Lookup("limit").AsInt64())
		assert.Equal(mt, int64(1), ev.Command.Lookup("sort", "_id").AsInt64())
	})

	mt.Run("sort, projection and filter", func(mt *mtest.T) {
		mt.AddMockResponses(
			cursorResponse(mt, articleDoc(ids[0], "a", 9), articleDoc(ids[1], "a", 5), articleDoc(ids[2], "a", 1)),
			countResponse(mt, 3),
		)

		page, err := newRepository(mt).List(context.Background(), ListRequest{
			PageRequest: docpager.PageRequest{Limit: 2, Sort: []string{"-views"}},
			Projection:  []string{"title"},
			Filter:      url.Values{"title": {"a"}},
		})
		require.NoError(mt, err)
		require.Len(mt, page.Items, 2)
		require.NotNil(mt, page.Next)

		ev := mt.GetStartedEvent()
		assert.Equal(mt, int64(3), ev.Command.Lookup("limit").AsInt64())
		assert.Equal(mt, int64(-1), ev.Command.Lookup("sort", "views").AsInt64())
		assert.Equal(mt, "a", ev.Command.Lookup("filter", "title", "$eq").StringValue())
		for _, field := range []string{"title", "views", "_id"} {
			assert.Equal(mt, int64(1), ev.Command.Lookup("projection", field).AsInt64(), field)
		}
	})

	mt.Run("offset strategy", func(mt *mtest.T) {
		mt.AddMockResponses(cursorResponse(mt, articleDoc(ids[2], "c", 3)), countResponse(mt, 5))

		page, err := newRepository(mt).List(context.Background(), ListRequest{
			PageRequest: docpager.PageRequest{Limit: 2, Strategy: "offset", Next: docpager.EncodeOffset(4)},
		})
		require.NoError(mt, err)
		assert.Len(mt, page.Items, 1)
		assert.Equal(mt, int64(4), *page.Index)

		assert.Equal(mt, int64(4), mt.GetStartedEvent().Command.Lookup("skip").AsInt64())
	})

	mt.Run("client errors", func(mt *mtest.T) {
		repo := newRepository(mt)

		tests := []struct {
			name string
			req  ListRequest
			err  error
		}{
			{"strategy", ListRequest{PageRequest: docpager.PageRequest{Strategy: "keyset"}}, docpager.ErrInvalidPaginationStrategy},
			{"sort", ListRequest{PageRequest: docpager.PageRequest{Sort: []string{"viewz"}}}, docpager.ErrUnknownSortField},
			{"cursor", ListRequest{PageRequest: docpager.PageRequest{Next: "%%%"}}, docpager.ErrMalformedCursor},
		}
		for _, tt := range tests {
			_, err := repo.List(context.Background(), tt.req)
			assert.ErrorIs(mt, err, tt.err, tt.name)
			assert.True(mt, docpager.IsClientError(err), tt.name)
		}

		_, err := repo.List(context.Background(), ListRequest{Filter: url.Values{"secret": {"x"}}})
		assert.ErrorContains(mt, err, "unknown filter field 'secret'")

		assert.Empty(mt, mt.GetAllStartedEvents())
	})

	mt.Run("strategies are injectable", func(mt *mtest.T) {
		strategies := docpager.Strategies[article]{
			docpager.StrategyCursor: docpager.DefaultStrategies[article]()[docpager.StrategyCursor],
		}

		_, err := newRepository(mt, WithStrategies(strategies)).List(context.Background(), ListRequest{
			PageRequest: docpager.PageRequest{Strategy: "relay"},
		})
		assert.ErrorIs(mt, err, docpager.ErrInvalidPaginationStrategy)
	})

	mt.Run("logs requests", func(mt *mtest.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		mt.AddMockResponses(cursorResponse(mt), countResponse(mt, 0))

		page, err := newRepository(mt, WithLogger[article](zap.New(core))).List(context.Background(), ListRequest{})
		require.NoError(mt, err)
		assert.Nil(mt, page.Index)

		entries := logs.FilterMessage("list").All()
		require.Len(mt, entries, 1)
		assert.Equal(mt, "cursor", entries[0].ContextMap()["strategy"])
		assert.Equal(mt, mt.Coll.Name(), entries[0].ContextMap()["collection"])
	})
}

func TestRepository_EnsureIndexes(t *testing.T) {
	mt := newMockT(t)

	mt.Run("drop and create", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
		)

		repo := newRepository(mt, WithIndexes[article](mongo.IndexModel{Keys: bson.D{{Key: "title", Value: 1}}}))
		require.NoError(mt, repo.EnsureIndexes(context.Background(), true))

		events := mt.GetAllStartedEvents()
		require.Len(mt, events, 2)
		assert.Equal(mt, "dropIndexes", events[0].CommandName)
		assert.Equal(mt, "createIndexes", events[1].CommandName)
	})

	mt.Run("nothing to do", func(mt *mtest.T) {
		require.NoError(mt, newRepository(mt).EnsureIndexes(context.Background(), false))
		assert.Empty(mt, mt.GetAllStartedEvents())
	})
}
