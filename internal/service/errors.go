package service

import "errors"

// Callers branch on these with errors.Is; the wrapped message is safe to show
// to clients.
var (
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("invalid username or password")
	ErrNotFound     = errors.New("not found")
)
