package models

import "errors"

// Core error taxonomy. Services wrap these with context via fmt.Errorf
// and callers branch with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidStatus     = errors.New("invalid invoice status")
	ErrValidation        = errors.New("validation failed")
)
