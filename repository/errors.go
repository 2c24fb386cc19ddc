package repository

import (
	"errors"
	"fmt"
)

var (
	ErrEntityNotFound      = errors.New("entity not found")
	ErrEntityAlreadyExists = errors.New("entity already exists")
	ErrBulk                = errors.New("bulk write failed")
)

// EntityNotFoundError is returned when no document has the requested
// identifier.
type EntityNotFoundError struct {
	Collection string
	ID         any
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("%s '%v' not found", e.Collection, e.ID)
}

func (e *EntityNotFoundError) Is(target error) bool { return target == ErrEntityNotFound }

// EntityAlreadyExistsError is returned when an insert violates a unique index.
type EntityAlreadyExistsError struct {
	Collection string
	ID         any
	Err        error
}

func (e *EntityAlreadyExistsError) Error() string {
	return fmt.Sprintf("%s '%v' already exists", e.Collection, e.ID)
}

func (e *EntityAlreadyExistsError) Unwrap() error { return e.Err }

func (e *EntityAlreadyExistsError) Is(target error) bool { return target == ErrEntityAlreadyExists }

// BulkError is returned when some operations of a bulk write failed. Items
// holds the failed operations; the rest were applied.
type BulkError struct {
	Items []BulkItemError
	Err   error
}

func (e *BulkError) Error() string {
	return fmt.Sprintf("bulk write failed for %d item(s): %v", len(e.Items), e.Err)
}

func (e *BulkError) Unwrap() error { return e.Err }

func (e *BulkError) Is(target error) bool { return target == ErrBulk }
