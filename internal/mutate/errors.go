package mutate

import (
	"errors"
	"fmt"
)

// Input errors. Mutations never fail because a target id is missing; that case
// leaves the document unchanged.
var (
	ErrInvalidInput = errors.New("invalid input")

	ErrEmptyTitle      = fmt.Errorf("%w: title is empty", ErrInvalidInput)
	ErrEmptyID         = fmt.Errorf("%w: id is empty", ErrInvalidInput)
	ErrInvalidDate     = fmt.Errorf("%w: invalid date (expected YYYY-MM-DD)", ErrInvalidInput)
	ErrInvalidStatus   = fmt.Errorf("%w: invalid status", ErrInvalidInput)
	ErrInvalidPriority = fmt.Errorf("%w: invalid priority", ErrInvalidInput)
	ErrInvalidType     = fmt.Errorf("%w: invalid type", ErrInvalidInput)
)

type DuplicateIDError struct {
	Kind string
	ID   string
}

func (e DuplicateIDError) Error() string {
	return fmt.Sprintf("%s id already exists: %s", e.Kind, e.ID)
}

func (e DuplicateIDError) Unwrap() error {
	return ErrInvalidInput
}
