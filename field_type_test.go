package docpager

import (
	"math"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func Test_FieldType_Format_Parse(t *testing.T) {
	oid := primitive.NewObjectID()
	ts := time.Date(2023, 12, 31, 23, 59, 59, 1, time.FixedZone("X", 3600))

	tests := []struct {
		name  string
		typ   FieldType
		in    any
		raw   string
		value any
	}{
		{"int", TypeInteger, 42, "42", int64(42)},
		{"uint32", TypeInteger, uint32(7), "7", int64(7)},
		{"uint64 max int64", TypeInteger, uint64(math.MaxInt64), "9223372036854775807", int64(math.MaxInt64)},
		{"int pointer", TypeInteger, lo.ToPtr(-3), "-3", int64(-3)},
		{"float", TypeFloat, 1.5, "1.5", 1.5},
		{"float from int", TypeFloat, int64(2), "2", 2.0},
		{"float32", TypeFloat, float32(0.25), "0.25", 0.25},
		{"bool", TypeBoolean, true, "true", true},
		{"timestamp in utc", TypeTimestamp, ts, "2023-12-31T22:59:59.000000001Z", ts.UTC()},
		{"bson datetime", TypeTimestamp, primitive.NewDateTimeFromTime(ts), "2023-12-31T22:59:59Z", ts.UTC().Truncate(time.Millisecond)},
		{"object id", TypeObjectID, oid, oid.Hex(), oid},
		{"string", TypeString, "x y", "x y", "x y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := tt.typ.formatValue(tt.in)
			require.NoError(t, err)
			require.NotNil(t, raw)
			assert.Equal(t, tt.raw, *raw)

			value, err := tt.typ.parseValue(raw)
			require.NoError(t, err)
			assert.Equal(t, tt.value, value)
		})
	}
}

func Test_FieldType_UnsignedOverflow(t *testing.T) {
	for _, in := range []any{uint64(1<<63 + 5), uint64(math.MaxUint64)} {
		raw, err := TypeInteger.formatValue(in)
		assert.ErrorContains(t, err, "overflows int64")
		assert.Nil(t, raw)
	}
}

func Test_FieldType_Null(t *testing.T) {
	for _, typ := range []FieldType{TypeInteger, TypeFloat, TypeBoolean, TypeTimestamp, TypeObjectID, TypeString} {
		raw, err := typ.formatValue((*int)(nil))
		require.NoError(t, err)
		assert.Nil(t, raw)

		value, err := typ.parseValue(nil)
		require.NoError(t, err)
		assert.Nil(t, value)
	}
}

func Test_ParseFieldType(t *testing.T) {
	for _, typ := range []FieldType{TypeInteger, TypeFloat, TypeBoolean, TypeTimestamp, TypeObjectID, TypeString} {
		got, err := ParseFieldType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, got)
	}

	_, err := ParseFieldType("unknown")
	require.Error(t, err)
	assert.Equal(t, "FieldType(42)", FieldType(42).String())
}
