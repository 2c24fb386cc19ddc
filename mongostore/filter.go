package mongostore

import (
	"fmt"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Alp4ka/docpager"
)

var _operators = map[docpager.Operator]string{
	docpager.OperatorEQ: "$eq",
	docpager.OperatorNE: "$ne",
	docpager.OperatorGT: "$gt",
	docpager.OperatorLT: "$lt",
}

// ToBSON renders a predicate as a MongoDB query document. A nil predicate
// matches every document.
//
// Null literals follow the query language: {f: {$eq: null}} matches missing
// and null values, {f: {$ne: null}} the rest, and {$gt: null}/{$lt: null}
// match nothing.
func ToBSON(e docpager.Expr) (bson.D, error) {
	switch et := e.(type) {
	case nil:
		return bson.D{}, nil
	case docpager.Condition:
		op, ok := _operators[et.Operator]
		if !ok {
			return nil, fmt.Errorf("unsupported operator '%s'", et.Operator)
		}

		return bson.D{{Key: et.Column, Value: bson.D{{Key: op, Value: et.Value}}}}, nil
	case docpager.And:
		return logical("$and", et)
	case docpager.Or:
		return logical("$or", et)
	default:
		return nil, fmt.Errorf("unsupported expression %T", e)
	}
}

func logical(op string, operands []docpager.Expr) (bson.D, error) {
	arr := make(bson.A, 0, len(operands))
	for _, operand := range operands {
		doc, err := ToBSON(operand)
		if err != nil {
			return nil, err
		}

		arr = append(arr, doc)
	}

	return bson.D{{Key: op, Value: arr}}, nil
}

// SortDocument renders an ordering as a $sort document.
func SortDocument(fields docpager.SortFields) bson.D {
	return lo.Map(fields, func(f docpager.SortField, _ int) bson.E {
		return bson.E{Key: f.Name, Value: direction(f.Direction)}
	})
}

// Projection renders field paths as an inclusion projection.
func Projection(fields []string) bson.D {
	return lo.Map(fields, func(f string, _ int) bson.E {
		return bson.E{Key: f, Value: 1}
	})
}

func direction(d docpager.Direction) int {
	return lo.Ternary(d == docpager.DirectionDESC, -1, 1)
}
