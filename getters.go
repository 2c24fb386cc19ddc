package docpager

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// Getters maps field names to value accessors of an entity. List the fields
// the pagination is based on.
// Example:
//
//	docpager.Getters[models.Article]{
//		"_id":          func(a models.Article) any { return a.ID },
//		"published_at": func(a models.Article) any { return a.PublishedAt },
//	}
//
// Fields without a getter are looked up in the entity's BSON form by their
// dotted path.
type Getters[T any] map[string]func(T) any

// Value returns the normalized value of field for entity.
func (g Getters[T]) Value(entity T, field SortField) (any, error) {
	if getter, ok := g[field.Name]; ok {
		return normalizeValue(getter(entity)), nil
	}

	v, found, err := lookupBSON(entity, field.Name)
	if err != nil {
		return nil, fmt.Errorf("cannot read field '%s': %w", field.Name, err)
	}

	if !found {
		if field.Nullable {
			return nil, nil
		}

		return nil, &UnknownSortFieldError{Field: field.Name}
	}

	return v, nil
}

func lookupBSON(entity any, path string) (any, bool, error) {
	raw, err := bson.Marshal(entity)
	if err != nil {
		return nil, false, err
	}

	rv, err := bson.Raw(raw).LookupErr(strings.Split(path, ".")...)
	if errors.Is(err, bsoncore.ErrElementNotFound) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}

	switch rv.Type {
	case bsontype.Null, bsontype.Undefined:
		return nil, true, nil
	case bsontype.Int32:
		return int64(rv.Int32()), true, nil
	case bsontype.Int64:
		return rv.Int64(), true, nil
	case bsontype.Double:
		return rv.Double(), true, nil
	case bsontype.Boolean:
		return rv.Boolean(), true, nil
	case bsontype.DateTime:
		return time.UnixMilli(rv.DateTime()).UTC(), true, nil
	case bsontype.ObjectID:
		return rv.ObjectID(), true, nil
	case bsontype.String:
		return rv.StringValue(), true, nil
	default:
		return nil, false, fmt.Errorf("unsupported bson type %s", rv.Type)
	}
}
