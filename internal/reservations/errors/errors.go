package errors

import "errors"

var (
	ErrNotFound = errors.New("reservation not found")

	ErrInvalidID = errors.New("invalid reservation ID format")

	ErrDuplicateReference = errors.New("reservation reference already exists")

	ErrReferenceExhausted = errors.New("could not generate a unique reservation reference")
)
