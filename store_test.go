package docpager

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore is an in-memory Store used to exercise the paginators. It follows
// the null semantics of MongoDB: (f = null) matches missing and null values,
// (f != null) matches the rest and strict comparisons never match nulls.
type memStore[T any] struct {
	docs []T

	findCalls  int
	countCalls int
	lastFind   FindOptions
	findErr    error
	countErr   error
}

func newMemStore[T any](docs ...T) *memStore[T] {
	return &memStore[T]{docs: docs}
}

func (s *memStore[T]) Find(_ context.Context, opts FindOptions) ([]T, error) {
	s.findCalls++
	s.lastFind = opts
	if s.findErr != nil {
		return nil, s.findErr
	}

	return s.find(opts)
}

func (s *memStore[T]) find(opts FindOptions) ([]T, error) {
	ret := make([]T, 0, len(s.docs))
	for _, d := range s.docs {
		ok, err := evalExpr(d, opts.Filter)
		if err != nil {
			return nil, err
		}
		if ok {
			ret = append(ret, d)
		}
	}

	var sortErr error
	slices.SortStableFunc(ret, func(a, b T) int {
		res, err := compareDocs(a, b, opts.Sort)
		if err != nil {
			sortErr = err
		}

		return res
	})
	if sortErr != nil {
		return nil, sortErr
	}

	if opts.Skip > 0 {
		ret = ret[min(int(opts.Skip), len(ret)):]
	}

	if opts.Limit > 0 && int(opts.Limit) < len(ret) {
		ret = ret[:opts.Limit]
	}

	return ret, nil
}

func (s *memStore[T]) Count(_ context.Context, filter Expr) (int64, error) {
	s.countCalls++
	if s.countErr != nil {
		return 0, s.countErr
	}

	var n int64
	for _, d := range s.docs {
		ok, err := evalExpr(d, filter)
		if err != nil {
			return 0, err
		}
		if ok {
			n++
		}
	}

	return n, nil
}

// sorted returns all the documents in the given order.
func (s *memStore[T]) sorted(fields SortFields) []T {
	ret, err := s.find(FindOptions{Sort: fields})
	if err != nil {
		panic(err)
	}

	return ret
}

func docValue(doc any, path string) (any, error) {
	v, _, err := lookupBSON(doc, path)
	return v, err
}

func evalExpr(doc any, e Expr) (bool, error) {
	switch et := e.(type) {
	case nil:
		return true, nil
	case Condition:
		v, err := docValue(doc, et.Column)
		if err != nil {
			return false, err
		}

		return evalCondition(v, et.Operator, normalizeValue(et.Value))
	case And:
		for _, op := range et {
			ok, err := evalExpr(doc, op)
			if err != nil || !ok {
				return false, err
			}
		}

		return true, nil
	case Or:
		for _, op := range et {
			ok, err := evalExpr(doc, op)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}

		return false, nil
	default:
		return false, fmt.Errorf("unsupported expression %T", e)
	}
}

func evalCondition(v any, op Operator, want any) (bool, error) {
	if v == nil || want == nil {
		switch op {
		case OperatorEQ:
			return v == nil && want == nil, nil
		case OperatorNE:
			return !(v == nil && want == nil), nil
		default:
			return false, nil
		}
	}

	res, err := compareValues(v, want)
	if err != nil {
		return false, err
	}

	switch op {
	case OperatorEQ:
		return res == 0, nil
	case OperatorNE:
		return res != 0, nil
	case OperatorGT:
		return res > 0, nil
	case OperatorLT:
		return res < 0, nil
	default:
		return false, fmt.Errorf("unsupported operator '%s'", op)
	}
}

func compareDocs(a, b any, fields SortFields) (int, error) {
	for _, f := range fields {
		va, err := docValue(a, f.Name)
		if err != nil {
			return 0, err
		}

		vb, err := docValue(b, f.Name)
		if err != nil {
			return 0, err
		}

		var res int
		switch {
		case va == nil && vb == nil:
			res = 0
		case va == nil:
			res = 1
			if f.NullsFirst {
				res = -1
			}
		case vb == nil:
			res = -1
			if f.NullsFirst {
				res = 1
			}
		default:
			res, err = compareValues(va, vb)
			if err != nil {
				return 0, err
			}
			if f.Direction == DirectionDESC {
				res = -res
			}
		}

		if res != 0 {
			return res, nil
		}
	}

	return 0, nil
}

func compareValues(a, b any) (int, error) {
	switch at := a.(type) {
	case int64:
		if bt, ok := b.(int64); ok {
			return cmp.Compare(at, bt), nil
		}
		if bt, ok := b.(float64); ok {
			return cmp.Compare(float64(at), bt), nil
		}
	case float64:
		if bt, ok := b.(float64); ok {
			return cmp.Compare(at, bt), nil
		}
		if bt, ok := b.(int64); ok {
			return cmp.Compare(at, float64(bt)), nil
		}
	case string:
		if bt, ok := b.(string); ok {
			return cmp.Compare(at, bt), nil
		}
	case bool:
		if bt, ok := b.(bool); ok {
			switch {
			case at == bt:
				return 0, nil
			case at:
				return 1, nil
			default:
				return -1, nil
			}
		}
	case time.Time:
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt), nil
		}
	case primitive.ObjectID:
		if bt, ok := b.(primitive.ObjectID); ok {
			return bytes.Compare(at[:], bt[:]), nil
		}
	}

	return 0, fmt.Errorf("cannot compare %T with %T", a, b)
}

var _ Store[any] = (*memStore[any])(nil)
