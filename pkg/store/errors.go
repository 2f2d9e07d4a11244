package store

import "errors"

var (
	// ErrEmptyPath reports a blank field path.
	ErrEmptyPath = errors.New("store: field path is empty")
	// ErrUnknownField reports a path that names no field of the schema.
	ErrUnknownField = errors.New("store: unknown field")
	// ErrNotSequence reports a non-sequence value for an array field.
	ErrNotSequence = errors.New("store: array field expects a sequence")
	// ErrNotObject reports a non-mapping value for an embedded field.
	ErrNotObject = errors.New("store: embedded field expects a mapping")
	// ErrNotArray reports an element operation on a non-array field.
	ErrNotArray = errors.New("store: field is not an array")
	// ErrIndexOutOfRange reports an element index past the end of a sequence.
	ErrIndexOutOfRange = errors.New("store: index out of range")
	// ErrClosed reports an edit after Close.
	ErrClosed = errors.New("store: session closed")
)
