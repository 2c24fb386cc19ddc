package docpager

// BuildFilter inflates a cursor into the seek predicate selecting the
// documents placed strictly after it under fields.
//
// IMPORTANT:
// The ordering MUST contain a unique field!
//
// For a cursor [(F1, V1), (F2, V2)... (Fn, Vn)] the predicate is
//
//	A(F1, V1) OR (F1 = V1 AND A(F2, V2)) OR ... OR (F1 = V1 AND ... AND A(Fn, Vn))
//
// where A(Fi, Vi) selects values of Fi placed after Vi (see afterClause).
// This is the composite key seek condition generalized to any number of
// fields.
//
// With indexQuery set the ordering is inverted first, so the predicate
// selects the documents placed strictly before the cursor. It is used to
// count the position of a page.
func BuildFilter(fields SortFields, cursor *Cursor, indexQuery bool) (Expr, error) {
	if cursor.IsEmpty() {
		return nil, nil
	}

	if err := fields.validate(); err != nil {
		return nil, err
	}

	if err := cursor.bind(fields); err != nil {
		return nil, err
	}

	if indexQuery {
		fields = fields.Invert()
	}

	elements := cursor.GetElements()
	disjuncts := make([]Expr, 0, len(elements))
	for i := range elements {
		conjuncts := make([]Expr, 0, i+1)
		for j := 0; j < i; j++ {
			conjuncts = append(conjuncts, Eq(fields[j].Name, elements[j].Value))
		}
		conjuncts = append(conjuncts, afterClause(fields[i], elements[i].Value))

		disjuncts = append(disjuncts, AllOf(conjuncts...))
	}

	return AnyOf(disjuncts...), nil
}

// afterClause selects the values of field placed strictly after value.
//
// Nulls form a block placed after all non-null values, or before them when
// NullsFirst is set:
//
//	nulls last,  value != null: F op V, or (F = null OR F op V) for nullable fields
//	nulls last,  value == null: F op null, which never holds
//	nulls first, value != null: F op V
//	nulls first, value == null: F != null OR F op null
//
// where op is ">" for ascending and "<" for descending fields.
func afterClause(field SortField, value any) Expr {
	cmp := Condition{Column: field.Name, Operator: field.Direction.ForOperator(), Value: value}

	if field.NullsFirst {
		if value == nil {
			return Or{Ne(field.Name, nil), cmp}
		}

		return cmp
	}

	if value != nil && field.Nullable {
		return Or{IsNull(field.Name), cmp}
	}

	return cmp
}
