package errors

import "errors"

var (
	ErrNotFound = errors.New("car not found")

	ErrInvalidID = errors.New("invalid car ID format")

	ErrDuplicateRegistration = errors.New("registration number already exists")
)
