package docpager

import (
	"fmt"
	"math"
	"net/url"
	"slices"
	"strings"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/samber/lo"
)

// FieldSpec describes a document field that can be sorted or filtered on.
// Name is the dotted path of the field in the stored document.
type FieldSpec struct {
	Name       string
	Type       FieldType
	Nullable   bool
	Unique     bool
	Unsortable bool
	Hidden     bool
}

// FieldOption modifies a FieldSpec.
type FieldOption func(*FieldSpec)

// Nullable marks a field that may be missing or hold null.
func Nullable() FieldOption {
	return func(f *FieldSpec) { f.Nullable = true }
}

// Unique marks a field whose values are unique per document.
func Unique() FieldOption {
	return func(f *FieldSpec) { f.Unique = true }
}

// Unsortable excludes a field from sorting.
func Unsortable() FieldOption {
	return func(f *FieldSpec) { f.Unsortable = true }
}

// Hidden excludes a field from both sorting and filtering.
func Hidden() FieldOption {
	return func(f *FieldSpec) { f.Hidden = true }
}

// Schema describes the queryable fields of a document type. It is built once
// and is read-only afterwards.
// Example:
//
//	schema := docpager.NewSchema("_id", docpager.TypeObjectID).
//		Field("title", docpager.TypeString).
//		Field("published_at", docpager.TypeTimestamp, docpager.Nullable()).
//		Field("author.name", docpager.TypeString)
type Schema struct {
	id     string
	fields []FieldSpec
}

// NewSchema starts a schema with its identifier field. The identifier is
// unique and is the final tie-breaker of every ordering built by Sort.
func NewSchema(idName string, idType FieldType) *Schema {
	return &Schema{
		id:     idName,
		fields: []FieldSpec{{Name: idName, Type: idType, Unique: true}},
	}
}

// Field adds or replaces a field.
func (s *Schema) Field(name string, typ FieldType, opts ...FieldOption) *Schema {
	spec := FieldSpec{Name: name, Type: typ}
	for _, opt := range opts {
		opt(&spec)
	}

	idx := slices.IndexFunc(s.fields, func(f FieldSpec) bool { return f.Name == name })
	if idx != -1 {
		s.fields[idx] = spec
	} else {
		s.fields = append(s.fields, spec)
	}

	return s
}

// ID returns the identifier field.
func (s *Schema) ID() FieldSpec {
	f, _ := s.Lookup(s.id)
	return f
}

// Lookup returns the field called name.
func (s *Schema) Lookup(name string) (FieldSpec, bool) {
	return lo.Find(s.fields, func(f FieldSpec) bool { return f.Name == name })
}

// Fields returns all the fields in declaration order.
func (s *Schema) Fields() []FieldSpec {
	return slices.Clone(s.fields)
}

// SortField returns the sort key for a field.
func (s *Schema) SortField(name string, direction Direction) (SortField, error) {
	f, ok := s.Lookup(name)
	if !ok || f.Unsortable || f.Hidden {
		return SortField{}, &UnknownSortFieldError{Field: name, Closest: closestField(name, s.sortable())}
	}

	return SortField{
		Name:      f.Name,
		Direction: direction,
		Type:      f.Type,
		Nullable:  f.Nullable,
		Unique:    f.Unique,
	}, nil
}

// Sort builds an ordering from sort tokens (see ParseSort). When the
// requested fields contain no unique field the identifier is appended in
// ascending order, so the result always defines a total order. No tokens
// yield the identifier ordering alone.
func (s *Schema) Sort(specs ...string) (SortFields, error) {
	var ret SortFields

	for _, spec := range specs {
		if strings.TrimSpace(spec) == "" {
			continue
		}

		name, direction, err := ParseSort(spec)
		if err != nil {
			return nil, err
		}

		field, err := s.SortField(name, direction)
		if err != nil {
			return nil, err
		}

		ret = ret.With(field)
	}

	if !lo.SomeBy(ret, func(f SortField) bool { return f.Unique }) {
		id, err := s.SortField(s.id, DirectionASC)
		if err != nil {
			return nil, err
		}

		ret = ret.With(id)
	}

	return ret, nil
}

// Projection checks the requested field paths against the schema. Nested
// paths of a known field are accepted.
func (s *Schema) Projection(names ...string) ([]string, error) {
	known := s.visible()
	for _, name := range names {
		if !lo.SomeBy(known, func(k string) bool { return k == name || strings.HasPrefix(name, k+".") }) {
			return nil, fmt.Errorf("unknown projection field '%s'. closest: '%s'", name, closestField(name, known))
		}
	}

	return lo.Uniq(names), nil
}

// BindFilter builds an equality filter from query parameters. Every schema
// field is optional; parameters that are absent or empty are skipped.
// Nested fields use "__" as the path separator ("author__name" binds
// "author.name"). Repeated parameters match any of their values, and "null"
// matches missing values of nullable fields.
func (s *Schema) BindFilter(values url.Values) (Expr, error) {
	keys := lo.Keys(values)
	slices.Sort(keys)

	conjuncts := make([]Expr, 0, len(keys))
	for _, key := range keys {
		name := strings.ReplaceAll(key, "__", ".")

		f, ok := s.Lookup(name)
		if !ok || f.Hidden {
			return nil, fmt.Errorf("unknown filter field '%s'. closest: '%s'", name, closestField(name, s.visible()))
		}

		disjuncts := make([]Expr, 0, len(values[key]))
		for _, raw := range values[key] {
			if raw == "" {
				continue
			}

			if raw == "null" && f.Nullable {
				disjuncts = append(disjuncts, IsNull(f.Name))
				continue
			}

			value, err := f.Type.parseValue(&raw)
			if err != nil {
				return nil, fmt.Errorf("invalid value of filter field '%s': %w", f.Name, err)
			}

			disjuncts = append(disjuncts, Eq(f.Name, value))
		}

		conjuncts = append(conjuncts, AnyOf(disjuncts...))
	}

	return AllOf(conjuncts...), nil
}

func (s *Schema) sortable() []string {
	return lo.FilterMap(s.fields, func(f FieldSpec, _ int) (string, bool) {
		return f.Name, !f.Unsortable && !f.Hidden
	})
}

func (s *Schema) visible() []string {
	return lo.FilterMap(s.fields, func(f FieldSpec, _ int) (string, bool) {
		return f.Name, !f.Hidden
	})
}

// closestField returns the candidate with the smallest edit distance to input.
func closestField(input string, candidates []string) string {
	minDist := math.MaxInt
	closest := ""

	for _, candidate := range candidates {
		dist := levenshtein.Distance(candidate, input)
		if dist < minDist {
			minDist = dist
			closest = candidate
		}
	}

	return closest
}
