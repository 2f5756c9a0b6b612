package postgres

import (
	"errors"
	"fmt"

	"github.com/asakaida/unicatalog/internal/entities"
	"github.com/lib/pq"
)

// PostgreSQL error codes handled by the repositories
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

const (
	constraintAttributeName = "eav_attributes_name_key"
	constraintValueEntity   = "eav_values_entity_id_fkey"
)

// TransientError wraps a storage failure that is expected to succeed when
// the whole operation is retried.
type TransientError struct {
	Code string
	Err  error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient storage error (%s): %v", e.Code, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// IsRetryable always returns true
func (e *TransientError) IsRetryable() bool {
	return true
}

// classify maps well-known PostgreSQL failures onto typed errors.
// Anything else is returned unchanged.
func classify(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case codeSerializationFailure, codeDeadlockDetected:
		return &TransientError{Code: string(pqErr.Code), Err: err}
	case codeUniqueViolation:
		if pqErr.Constraint == constraintAttributeName {
			return &entities.DuplicateAttributeError{Err: err}
		}
	case codeForeignKeyViolation:
		if pqErr.Constraint == constraintValueEntity {
			return fmt.Errorf("%w: %v", entities.ErrEntityNotFound, err)
		}
	}
	return err
}
