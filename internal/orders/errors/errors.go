package errors

import "errors"

var (
	ErrNotFound = errors.New("order not found")

	ErrInvalidID = errors.New("invalid order ID format")

	ErrDuplicateNumber = errors.New("order number already exists")

	ErrStatusChanged = errors.New("order status changed concurrently")
)
