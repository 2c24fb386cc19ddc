package gormstore

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm/clause"

	"github.com/Alp4ka/docpager"
)

// Expression converts a predicate into a GORM expression. A nil predicate
// yields a nil expression.
//
// IMPORTANT: Conditions use the SQL placeholder "?".
//
// Null literals are rendered with IS [NOT] NULL. Strict comparisons against
// null never hold and are rendered as FALSE.
//
// Example:
//
//	Or{Gt("id", 10), And{Eq("id", 10), IsNull("name")}}
//
// Result:
//
//	"(id > ? OR (id = ? AND name IS NULL))", [10, 10]
func Expression(e docpager.Expr) (clause.Expression, error) {
	switch et := e.(type) {
	case nil:
		return nil, nil
	case docpager.Condition:
		return condition(et)
	case docpager.And:
		exprs, err := expressions(et)
		if err != nil {
			return nil, err
		}

		return clause.And(exprs...), nil
	case docpager.Or:
		exprs, err := expressions(et)
		if err != nil {
			return nil, err
		}

		return clause.Or(exprs...), nil
	default:
		return nil, fmt.Errorf("unsupported expression %T", e)
	}
}

func expressions(operands []docpager.Expr) ([]clause.Expression, error) {
	ret := make([]clause.Expression, 0, len(operands))
	for _, operand := range operands {
		expr, err := Expression(operand)
		if err != nil {
			return nil, err
		}

		ret = append(ret, expr)
	}

	return ret, nil
}

func condition(c docpager.Condition) (clause.Expression, error) {
	if !c.Operator.Valid() {
		return nil, fmt.Errorf("unsupported operator '%s'", c.Operator)
	}

	if c.Value == nil {
		switch c.Operator {
		case docpager.OperatorEQ:
			return clause.Expr{SQL: c.Column + " IS NULL"}, nil
		case docpager.OperatorNE:
			return clause.Expr{SQL: c.Column + " IS NOT NULL"}, nil
		default:
			return clause.Expr{SQL: "FALSE"}, nil
		}
	}

	return clause.Expr{
		SQL:  fmt.Sprintf("%s %s ?", c.Column, c.Operator),
		Vars: []any{sqlValue(c.Value)},
	}, nil
}

func sqlValue(v any) any {
	if oid, ok := v.(primitive.ObjectID); ok {
		return oid.Hex()
	}

	return v
}

// OrderSQL renders an ordering as an ORDER BY list. Nullable fields are
// preceded by a null test so nulls follow SortField.NullsFirst on every
// dialect.
//
// Example:
//
//	"score IS NULL ASC, score DESC, id ASC"
func OrderSQL(fields docpager.SortFields) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.Nullable {
			parts = append(parts, fmt.Sprintf("%s IS NULL %s", f.Name, lo.Ternary(f.NullsFirst, docpager.DirectionDESC, docpager.DirectionASC)))
		}

		parts = append(parts, fmt.Sprintf("%s %s", f.Name, f.Direction))
	}

	return strings.Join(parts, ", ")
}
