package errors

import "errors"

var (
	ErrNotFound = errors.New("client not found")

	ErrInvalidID = errors.New("invalid client ID format")

	ErrDuplicatePhone = errors.New("client with this phone already exists")
)
