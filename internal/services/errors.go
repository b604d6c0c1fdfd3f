package services

import "errors"

// Sentinel errors the handlers layer maps to HTTP statuses.
var (
	// ErrNotFound marks lookups for rows that do not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation marks input rejected before any database work is done.
	ErrValidation = errors.New("invalid input")
)
