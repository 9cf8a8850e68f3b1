package project

import "errors"

var (
	// ErrValidation indicates a required field is missing.
	ErrValidation = errors.New("project name is required")
	// ErrNotFound indicates the project doesn't exist.
	ErrNotFound = errors.New("project not found")
	// ErrDuplicateID indicates two records share an identifier.
	ErrDuplicateID = errors.New("duplicate project id")
)
