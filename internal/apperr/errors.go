package apperr

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrNoSpecs        = errors.New("no OpenAPI spec files found")
	ErrNavTabNotFound = errors.New("navigation tab not found")
	ErrInvalidSpec    = errors.New("invalid OpenAPI spec")
)
