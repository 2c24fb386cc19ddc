package docpager

import (
	"fmt"
	"strings"
)

type (
	// Expr is a boolean query expression over named document fields. Stores
	// translate it into their native filter language.
	//
	// Expressions are built once per request and never mutated afterwards.
	Expr interface {
		fmt.Stringer
		expr()
	}

	// Condition is the value of Operator(Column, Value). A nil Value is the
	// null literal: (c = null) holds for null fields, (c != null) for non-null
	// fields and strict comparisons against null never hold.
	Condition struct {
		Column   string
		Operator Operator
		Value    any
	}

	// And holds when every operand holds.
	And []Expr

	// Or holds when at least one operand holds.
	Or []Expr
)

func (Condition) expr() {}
func (And) expr()       {}
func (Or) expr()        {}

func Eq(column string, value any) Condition {
	return Condition{Column: column, Operator: OperatorEQ, Value: value}
}

func Ne(column string, value any) Condition {
	return Condition{Column: column, Operator: OperatorNE, Value: value}
}

func Gt(column string, value any) Condition {
	return Condition{Column: column, Operator: OperatorGT, Value: value}
}

func Lt(column string, value any) Condition {
	return Condition{Column: column, Operator: OperatorLT, Value: value}
}

// IsNull is shorthand for Eq(column, nil).
func IsNull(column string) Condition {
	return Eq(column, nil)
}

// AllOf joins the non-nil operands with AND. A single operand is returned as
// is and no operands yield nil, which stores treat as "match everything".
func AllOf(exprs ...Expr) Expr {
	ops := compact(exprs)
	switch len(ops) {
	case 0:
		return nil
	case 1:
		return ops[0]
	default:
		return And(ops)
	}
}

// AnyOf joins the non-nil operands with OR, collapsing like AllOf.
func AnyOf(exprs ...Expr) Expr {
	ops := compact(exprs)
	switch len(ops) {
	case 0:
		return nil
	case 1:
		return ops[0]
	default:
		return Or(ops)
	}
}

func compact(exprs []Expr) []Expr {
	ret := make([]Expr, 0, len(exprs))
	for _, e := range exprs {
		if e != nil {
			ret = append(ret, e)
		}
	}

	return ret
}

// String renders the condition as "Column Operator Value".
//
// Example:
//
//	Condition{Column: "id", Operator: ">", Value: 123}
//
// Result:
//
//	"id > 123"
func (c Condition) String() string {
	if c.Value == nil {
		return fmt.Sprintf("%s %s null", c.Column, c.Operator)
	}

	return fmt.Sprintf("%s %s %v", c.Column, c.Operator, c.Value)
}

// String renders "(K1 AND K2 AND K3)".
func (a And) String() string {
	return joinExprs(a, " AND ")
}

// String renders "(K1 OR K2 OR K3)".
func (o Or) String() string {
	return joinExprs(o, " OR ")
}

func joinExprs(exprs []Expr, sep string) string {
	parts := make([]string, 0, len(exprs))
	for _, e := range exprs {
		parts = append(parts, e.String())
	}

	return fmt.Sprintf("(%s)", strings.Join(parts, sep))
}
