package entities

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDataType is returned for a data type outside the recognized kinds
	ErrInvalidDataType = errors.New("invalid data type")

	// ErrInvalidValue is returned when a value cannot be represented in its attribute's data type
	ErrInvalidValue = errors.New("invalid attribute value")

	// ErrEntityNotFound is the explicit absent result of entity reads
	ErrEntityNotFound = errors.New("entity not found")

	ErrAttributeNotFound     = errors.New("attribute not found")
	ErrAttributeNameRequired = errors.New("attribute name is required")
	ErrEntityNameRequired    = errors.New("entity name is required")

	// ErrInvalidFilter is returned when a filter expression does not compile to a boolean
	ErrInvalidFilter = errors.New("invalid filter expression")
)

// DuplicateAttributeError reports that a concurrent writer created the same
// attribute name first. The operation can be retried; the lookup will then
// find the existing attribute.
type DuplicateAttributeError struct {
	Name string
	Err  error
}

func (e *DuplicateAttributeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("attribute %q was created concurrently: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("attribute %q was created concurrently", e.Name)
}

func (e *DuplicateAttributeError) Unwrap() error {
	return e.Err
}

// IsRetryable always returns true
func (e *DuplicateAttributeError) IsRetryable() bool {
	return true
}
