package ir

import "errors"

var (
	// ErrNotFound reports a key path that resolves to no node.
	ErrNotFound = errors.New("key not found")
	// ErrTypeMismatch reports a node of the wrong kind for the
	// requested operation.
	ErrTypeMismatch = errors.New("wrong element type")
	// ErrCastFailed reports a value that does not parse as the
	// requested scalar type.
	ErrCastFailed = errors.New("cast failed")
)
