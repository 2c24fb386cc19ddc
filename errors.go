package docpager

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedCursor           = errors.New("malformed cursor")
	ErrUnknownSortField          = errors.New("unknown sort field")
	ErrInvalidLimit              = errors.New("invalid limit")
	ErrInvalidPaginationStrategy = errors.New("invalid pagination strategy")
)

// MalformedCursorError is returned when a cursor token cannot be parsed or
// does not match the active sort specification.
type MalformedCursorError struct {
	Reason string
	Err    error
}

func (e *MalformedCursorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed cursor: %s: %v", e.Reason, e.Err)
	}

	return fmt.Sprintf("malformed cursor: %s", e.Reason)
}

func (e *MalformedCursorError) Unwrap() error { return e.Err }

func (e *MalformedCursorError) Is(target error) bool { return target == ErrMalformedCursor }

// UnknownSortFieldError is returned when a sort field does not resolve to an
// entity attribute. Closest holds the nearest known field name, if any.
type UnknownSortFieldError struct {
	Field   string
	Closest string
}

func (e *UnknownSortFieldError) Error() string {
	if e.Closest != "" {
		return fmt.Sprintf("unknown sort field '%s'. closest: '%s'", e.Field, e.Closest)
	}

	return fmt.Sprintf("unknown sort field '%s'", e.Field)
}

func (e *UnknownSortFieldError) Is(target error) bool { return target == ErrUnknownSortField }

type InvalidLimitError struct {
	Limit int
}

func (e *InvalidLimitError) Error() string {
	return fmt.Sprintf("invalid limit %d: must be a positive integer", e.Limit)
}

func (e *InvalidLimitError) Is(target error) bool { return target == ErrInvalidLimit }

type InvalidPaginationStrategyError struct {
	Strategy Strategy
}

func (e *InvalidPaginationStrategyError) Error() string {
	return fmt.Sprintf("pagination strategy '%s' not found", e.Strategy)
}

func (e *InvalidPaginationStrategyError) Is(target error) bool {
	return target == ErrInvalidPaginationStrategy
}

// IsClientError reports whether err was caused by caller input (cursor, sort,
// limit or strategy) rather than by the underlying store.
func IsClientError(err error) bool {
	return errors.Is(err, ErrMalformedCursor) ||
		errors.Is(err, ErrUnknownSortField) ||
		errors.Is(err, ErrInvalidLimit) ||
		errors.Is(err, ErrInvalidPaginationStrategy)
}
