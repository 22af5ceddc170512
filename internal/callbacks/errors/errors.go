package errors

import "errors"

var (
	ErrNotFound = errors.New("callback request not found")

	ErrInvalidID = errors.New("invalid callback request ID format")

	// ErrStatusChanged means the stored status no longer matches the one a
	// transition was checked against.
	ErrStatusChanged = errors.New("callback request status changed concurrently")
)
