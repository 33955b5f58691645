package model

import "errors"

var (
	// ErrInvalidSchema wraps structural schema problems.
	ErrInvalidSchema = errors.New("model: invalid schema")
	// ErrDuplicateField signals two descriptors sharing a key or payload name.
	ErrDuplicateField = errors.New("model: duplicate field")
	// ErrUnknownField signals a reference to a key the schema does not declare.
	ErrUnknownField = errors.New("model: unknown field")
	// ErrKindMismatch signals a value whose shape does not fit its field kind.
	ErrKindMismatch = errors.New("model: value does not fit field kind")
)
