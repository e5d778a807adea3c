package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrUnsupported   = errors.New("unsupported language")
	ErrAlreadyExists = errors.New("already exists")
)
