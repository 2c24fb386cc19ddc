package docpager

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Direction defines the sort direction for the requested dataset.
type Direction string

const (
	DirectionASC  Direction = "ASC"
	DirectionDESC Direction = "DESC"
)

func (o Direction) Valid() bool {
	return o == DirectionASC || o == DirectionDESC
}

// Invert returns the opposite direction.
func (o Direction) Invert() Direction {
	if o == DirectionDESC {
		return DirectionASC
	}

	return DirectionDESC
}

// ForOperator returns the strict comparison that selects values placed after
// a boundary value in this direction.
func (o Direction) ForOperator() Operator {
	switch o {
	case DirectionASC:
		return OperatorGT
	case DirectionDESC:
		return OperatorLT
	default:
		panic(fmt.Errorf("cannot map direction '%s' to operator", o))
	}
}

// SortField is one key of a composite ordering.
//
// Nulls are placed after every non-null value unless NullsFirst is set.
// NullsFirst is only ever set on inverted orderings: inverting a field flips
// both its direction and its null placement so that the inverted ordering is
// the exact reverse of the original one.
type SortField struct {
	Name       string
	Direction  Direction
	Type       FieldType
	Nullable   bool
	Unique     bool
	NullsFirst bool
}

// Invert returns the field sorted in the opposite order.
func (f SortField) Invert() SortField {
	f.Direction = f.Direction.Invert()
	f.NullsFirst = !f.NullsFirst

	return f
}

var _availableFieldNameSymbols = append([]rune("_."), lo.AlphanumericCharset...)

func (f SortField) validate() error {
	if f.Name == "" || f.Type == TypeUnknown {
		return &UnknownSortFieldError{Field: f.Name}
	}

	if !f.Direction.Valid() {
		return fmt.Errorf("invalid ordering direction '%s'", f.Direction)
	}

	// Field names end up in raw ORDER BY clauses and in BSON keys.
	if !lo.Every(_availableFieldNameSymbols, []rune(f.Name)) {
		return fmt.Errorf("ordering field name contains forbidden symbols '%s'", f.Name)
	}

	return nil
}

// SortFields is an ordered list of sort keys; the first field is the primary
// key.
type SortFields []SortField

// Invert returns the reverse ordering.
func (s SortFields) Invert() SortFields {
	return lo.Map(s, func(f SortField, _ int) SortField { return f.Invert() })
}

// Names returns the field names in order.
func (s SortFields) Names() []string {
	return lo.Map(s, func(f SortField, _ int) string { return f.Name })
}

// HasNullable reports whether any field may hold null values.
func (s SortFields) HasNullable() bool {
	return lo.SomeBy(s, func(f SortField) bool { return f.Nullable })
}

// With appends fields without duplicating names. A field that is already
// present is moved to the end with its new direction, as if calling:
//
//	OrderBy(f1).ThenBy(f2).ThenBy(f3)...
func (s SortFields) With(fields ...SortField) SortFields {
	ret := slices.Clone(s)
	for _, f := range fields {
		idx := slices.IndexFunc(ret, func(processed SortField) bool {
			return processed.Name == f.Name
		})

		if idx != -1 {
			ret = slices.Delete(ret, idx, idx+1)
		}

		ret = append(ret, f)
	}

	return ret
}

// String renders the ordering in the "field DIR, field DIR" form.
func (s SortFields) String() string {
	return strings.Join(lo.Map(s, func(f SortField, _ int) string {
		return fmt.Sprintf("%s %s", f.Name, f.Direction)
	}), ", ")
}

func (s SortFields) validate() error {
	if len(s) == 0 {
		return fmt.Errorf("empty ordering list")
	}

	for _, f := range s {
		if err := f.validate(); err != nil {
			return err
		}
	}

	return nil
}

// ParseSort splits a single sort token into a field name and direction.
// Accepted forms: "field", "+field", "-field", "field asc", "field desc".
func ParseSort(spec string) (string, Direction, error) {
	spec = strings.TrimSpace(spec)
	parts := strings.Fields(spec)

	switch len(parts) {
	case 1:
		name := parts[0]
		switch {
		case strings.HasPrefix(name, "-"):
			return strings.TrimPrefix(name, "-"), DirectionDESC, nil
		case strings.HasPrefix(name, "+"):
			return strings.TrimPrefix(name, "+"), DirectionASC, nil
		default:
			return name, DirectionASC, nil
		}
	case 2:
		direction := Direction(strings.ToUpper(parts[1]))
		if !direction.Valid() {
			return "", "", fmt.Errorf("invalid ordering direction '%s'", parts[1])
		}

		return parts[0], direction, nil
	default:
		return "", "", fmt.Errorf("invalid ordering string format '%s'", spec)
	}
}
