package docpager

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FieldType tags a sortable field with the type its cursor values are
// serialized and parsed as.
type FieldType int

const (
	TypeUnknown FieldType = iota
	TypeInteger
	TypeFloat
	TypeBoolean
	TypeTimestamp
	TypeObjectID
	TypeString
)

var _fieldTypeNames = map[FieldType]string{
	TypeUnknown:   "unknown",
	TypeInteger:   "integer",
	TypeFloat:     "float",
	TypeBoolean:   "boolean",
	TypeTimestamp: "timestamp",
	TypeObjectID:  "objectid",
	TypeString:    "string",
}

func (t FieldType) String() string {
	if name, ok := _fieldTypeNames[t]; ok {
		return name
	}

	return fmt.Sprintf("FieldType(%d)", int(t))
}

// ParseFieldType resolves a type name as produced by FieldType.String.
func ParseFieldType(name string) (FieldType, error) {
	for t, n := range _fieldTypeNames {
		if n == name && t != TypeUnknown {
			return t, nil
		}
	}

	return TypeUnknown, fmt.Errorf("unknown field type '%s'", name)
}

// formatValue serializes a normalized value under the given type tag.
// A nil value is returned as a nil string.
func (t FieldType) formatValue(v any) (*string, error) {
	v = normalizeValue(v)
	if v == nil {
		return nil, nil
	}

	var s string
	switch t {
	case TypeInteger:
		i, ok := v.(int64)
		if !ok {
			switch v.(type) {
			case uint, uint64:
				return nil, fmt.Errorf("value %v of type %T overflows int64", v, v)
			}
			return nil, fmt.Errorf("value %v of type %T is not an integer", v, v)
		}
		s = strconv.FormatInt(i, 10)
	case TypeFloat:
		switch fv := v.(type) {
		case float64:
			s = strconv.FormatFloat(fv, 'g', -1, 64)
		case int64:
			s = strconv.FormatFloat(float64(fv), 'g', -1, 64)
		default:
			return nil, fmt.Errorf("value %v of type %T is not a float", v, v)
		}
	case TypeBoolean:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("value %v of type %T is not a boolean", v, v)
		}
		s = strconv.FormatBool(b)
	case TypeTimestamp:
		ts, ok := v.(time.Time)
		if !ok {
			return nil, fmt.Errorf("value %v of type %T is not a timestamp", v, v)
		}
		s = ts.UTC().Format(time.RFC3339Nano)
	case TypeObjectID:
		oid, ok := v.(primitive.ObjectID)
		if !ok {
			return nil, fmt.Errorf("value %v of type %T is not an object id", v, v)
		}
		s = oid.Hex()
	case TypeString:
		str, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("value %v of type %T is not a string", v, v)
		}
		s = str
	default:
		return nil, fmt.Errorf("cannot format value of %s field", t)
	}

	return &s, nil
}

// parseValue is the inverse of formatValue.
func (t FieldType) parseValue(s *string) (any, error) {
	if s == nil {
		return nil, nil
	}

	switch t {
	case TypeInteger:
		return strconv.ParseInt(*s, 10, 64)
	case TypeFloat:
		return strconv.ParseFloat(*s, 64)
	case TypeBoolean:
		return strconv.ParseBool(*s)
	case TypeTimestamp:
		ts, err := time.Parse(time.RFC3339Nano, *s)
		if err != nil {
			return nil, err
		}

		return ts.UTC(), nil
	case TypeObjectID:
		return primitive.ObjectIDFromHex(*s)
	case TypeString:
		return *s, nil
	default:
		return nil, fmt.Errorf("cannot parse value of %s field", t)
	}
}

// normalizeValue maps the Go types an entity may expose to the canonical set
// used by the codec and the stores: int64, float64, bool, time.Time,
// primitive.ObjectID, string or nil. Pointers are dereferenced.
func normalizeValue(v any) any {
	switch vt := v.(type) {
	case nil:
		return nil
	case int:
		return int64(vt)
	case int8:
		return int64(vt)
	case int16:
		return int64(vt)
	case int32:
		return int64(vt)
	case int64:
		return vt
	case uint:
		return unsignedValue(uint64(vt), v)
	case uint8:
		return int64(vt)
	case uint16:
		return int64(vt)
	case uint32:
		return int64(vt)
	case uint64:
		return unsignedValue(vt, v)
	case float32:
		return float64(vt)
	case float64, bool, string, time.Time, primitive.ObjectID:
		return vt
	case primitive.DateTime:
		return vt.Time().UTC()
	case *int:
		return derefOrNil(vt)
	case *int32:
		return derefOrNil(vt)
	case *int64:
		return derefOrNil(vt)
	case *uint:
		return derefOrNil(vt)
	case *float64:
		return derefOrNil(vt)
	case *bool:
		return derefOrNil(vt)
	case *string:
		return derefOrNil(vt)
	case *time.Time:
		return derefOrNil(vt)
	case *primitive.ObjectID:
		return derefOrNil(vt)
	default:
		return v
	}
}

// unsignedValue converts u to int64 when it fits. Larger values are returned
// unchanged so formatting rejects them.
func unsignedValue(u uint64, orig any) any {
	if u > math.MaxInt64 {
		return orig
	}

	return int64(u)
}

func derefOrNil[T any](p *T) any {
	if p == nil {
		return nil
	}

	return normalizeValue(*p)
}
