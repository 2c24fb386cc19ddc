package docpager

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

var _encoder = base64.RawURLEncoding

// Cursor is a pagination token that marks the boundary document of a page.
// An empty cursor means the beginning of the dataset.
//
// IMPORTANT:
// The ordering a cursor is built for MUST contain a unique field, otherwise
// pages may skip or repeat documents.
//
// A cursor holds one element per sort field, in ordering order:
//
//	[(F1, V1), (F2, V2)... (Fn, Vn)]
//
// where Vi is the boundary document's value of field Fi.
type Cursor struct {
	elements []CursorElement
}

// CursorElement is a (field, value) pair. Raw holds the value serialized
// under the field's type tag; nil stands for null. Value holds the typed
// value and is not serialized.
type CursorElement struct {
	Column string  `json:"c"`
	Raw    *string `json:"v"`
	Value  any     `json:"-"`
}

// EncodeCursor builds the cursor pointing at entity under the given ordering.
func EncodeCursor[T any](entity T, fields SortFields, getters Getters[T]) (*Cursor, error) {
	elements := make([]CursorElement, 0, len(fields))
	for _, field := range fields {
		value, err := getters.Value(entity, field)
		if err != nil {
			return nil, err
		}

		raw, err := field.Type.formatValue(value)
		if err != nil {
			return nil, fmt.Errorf("cannot encode cursor field '%s': %w", field.Name, err)
		}

		elements = append(elements, CursorElement{
			Column: field.Name,
			Raw:    raw,
			Value:  normalizeValue(value),
		})
	}

	return &Cursor{elements: elements}, nil
}

// DecodeCursor parses a base64 encoded token produced by Cursor.String and
// checks it against the active ordering. An empty token yields a nil cursor.
func DecodeCursor(token string, fields SortFields) (*Cursor, error) {
	if len(token) == 0 {
		return nil, nil
	}

	jsonData, err := _encoder.DecodeString(token)
	if err != nil {
		return nil, &MalformedCursorError{Reason: "failed to decode base64 encoded cursor", Err: err}
	}

	var elems []CursorElement
	if err = json.Unmarshal(jsonData, &elems); err != nil {
		return nil, &MalformedCursorError{Reason: "failed to unmarshal json encoded cursor", Err: err}
	}

	c := &Cursor{elements: elems}
	if err = c.bind(fields); err != nil {
		return nil, err
	}

	return c, nil
}

// bind checks the cursor against the ordering and parses raw values into
// typed ones.
func (c *Cursor) bind(fields SortFields) error {
	// A cursor made for a different ordering must not be reused.
	if len(c.elements) != len(fields) {
		return &MalformedCursorError{
			Reason: fmt.Sprintf("cursor field number mismatch: got %d, want %d", len(c.elements), len(fields)),
		}
	}

	for i := range c.elements {
		elem := &c.elements[i]
		field := fields[i]

		if elem.Column != field.Name {
			return &MalformedCursorError{Reason: fmt.Sprintf("unexpected cursor field '%s'", elem.Column)}
		}

		value, err := field.Type.parseValue(elem.Raw)
		if err != nil {
			return &MalformedCursorError{Reason: fmt.Sprintf("invalid value of field '%s'", elem.Column), Err: err}
		}

		elem.Value = value
	}

	return nil
}

// String - implements fmt.Stringer.
func (c *Cursor) String() string {
	if c.IsEmpty() {
		return ""
	}

	jTok, err := json.Marshal(c.elements)
	if err != nil {
		panic(fmt.Errorf("cannot marshal cursor value: %w", err))
	}

	var buf bytes.Buffer
	if err = json.Compact(&buf, jTok); err != nil {
		panic(fmt.Errorf("cannot compact cursor value: %w", err))
	}

	return _encoder.EncodeToString(buf.Bytes())
}

func (c *Cursor) IsEmpty() bool {
	return c == nil || len(c.elements) == 0
}

// GetElements returns the cursor elements. They are a compressed form of the
// seek filter and cannot be applied to a query directly; BuildFilter inflates
// them into the full condition set.
func (c *Cursor) GetElements() []CursorElement {
	if c == nil {
		return nil
	}

	return c.elements
}

var _ fmt.Stringer = (*Cursor)(nil)
